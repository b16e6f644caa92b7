package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/orator/internal/errors"
)

// Store provides persistence for AudioFile records.
//
// Mutators other than Create and Delete are guarded: they return ok=false
// without error when the record no longer exists or the stage rules forbid
// the write. Callers treat ok=false as "discard this result".
type Store struct {
	db *gorm.DB
}

// New creates a Store over an open GORM handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new record.
func (s *Store) Create(ctx context.Context, file *AudioFile) error {
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now().UTC()
	}
	if file.ProcessingStage == "" {
		file.ProcessingStage = StageUploading
	}
	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// List returns all records, most recently uploaded first.
func (s *Store) List(ctx context.Context) ([]AudioFile, error) {
	var files []AudioFile
	if err := s.db.WithContext(ctx).Order("uploaded_at DESC, id DESC").Find(&files).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return files, nil
}

// Get returns one record by id.
func (s *Store) Get(ctx context.Context, id string) (*AudioFile, error) {
	var file AudioFile
	err := s.db.WithContext(ctx).First(&file, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("audio file", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &file, nil
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&AudioFile{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("audio file", id)
	}
	return nil
}

// SetStage moves a record to the given stage with the given progress. Within
// the current stage only the progress advances, and never backwards. Illegal
// transitions and missing records report ok=false.
func (s *Store) SetStage(ctx context.Context, id string, stage Stage, progress int) (bool, error) {
	ok := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file AudioFile
		if err := tx.First(&file, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		updates := map[string]any{}
		switch {
		case file.ProcessingStage == stage:
			if progress <= file.ProgressPercentage {
				ok = true
				return nil
			}
			updates["progress_percentage"] = progress
		case file.ProcessingStage.CanTransition(stage):
			updates["processing_stage"] = stage
			updates["progress_percentage"] = progress
		default:
			return nil
		}

		if err := tx.Model(&AudioFile{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return ok, nil
}

// SetTranscription stores the transcript and derived word count. The
// transcript is written exactly once; later calls report ok=false.
func (s *Store) SetTranscription(ctx context.Context, id, text string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&AudioFile{}).
		Where("id = ? AND (transcription IS NULL OR transcription = '')", id).
		Updates(map[string]any{
			"transcription": text,
			"word_count":    len(strings.Fields(text)),
		})
	if res.Error != nil {
		return false, apperrors.Internal(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetAnalysis stores the generated summary and question set.
func (s *Store) SetAnalysis(ctx context.Context, id, summary, questions string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&AudioFile{}).Where("id = ?", id).
		Updates(map[string]any{"summary": summary, "questions": questions})
	if res.Error != nil {
		return false, apperrors.Internal(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AppendQuestions adds newly generated questions below the existing block
// without discarding prior content.
func (s *Store) AppendQuestions(ctx context.Context, id, questions string) (bool, error) {
	ok := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file AudioFile
		if err := tx.First(&file, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		combined := questions
		if file.Questions != "" {
			combined = file.Questions + "\n" + questions
		}
		if err := tx.Model(&AudioFile{}).Where("id = ?", id).
			Update("questions", combined).Error; err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return ok, nil
}

// SetError marks a record failed. Terminal records are left untouched.
func (s *Store) SetError(ctx context.Context, id, message string) (bool, error) {
	ok := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file AudioFile
		if err := tx.First(&file, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if !file.ProcessingStage.CanTransition(StageError) {
			return nil
		}
		if err := tx.Model(&AudioFile{}).Where("id = ?", id).Updates(map[string]any{
			"processing_stage": StageError,
			"error_message":    message,
		}).Error; err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return ok, nil
}

// SetDuration stores the audio duration in seconds.
func (s *Store) SetDuration(ctx context.Context, id string, seconds float64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&AudioFile{}).Where("id = ?", id).
		Update("audio_duration", seconds)
	if res.Error != nil {
		return false, apperrors.Internal(res.Error)
	}
	return res.RowsAffected > 0, nil
}
