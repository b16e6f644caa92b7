// Package store persists AudioFile records and enforces the mutation rules
// the processing pipeline relies on: guarded writes that report whether the
// record still exists, so results arriving after a delete are discarded.
package store

import "time"

// Stage is a discrete phase of the per-file processing pipeline.
type Stage string

// Pipeline stages, in order. Error is reachable from any non-terminal stage.
const (
	StageUploading        Stage = "uploading"
	StageDownloadingModel Stage = "downloading_model"
	StageTranscribing     Stage = "transcribing"
	StageAnalyzing        Stage = "analyzing"
	StageComplete         Stage = "complete"
	StageError            Stage = "error"
)

var stageOrder = map[Stage]int{
	StageUploading:        0,
	StageDownloadingModel: 1,
	StageTranscribing:     2,
	StageAnalyzing:        3,
	StageComplete:         4,
}

// Terminal reports whether the stage ends the pipeline for a file.
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageError
}

// CanTransition reports whether moving from s to next is legal: stages only
// advance, except that any non-terminal stage may move to error.
func (s Stage) CanTransition(next Stage) bool {
	if s.Terminal() {
		return false
	}
	if next == StageError {
		return true
	}
	from, okFrom := stageOrder[s]
	to, okTo := stageOrder[next]
	return okFrom && okTo && to > from
}

// AudioFile is the central record, one per uploaded file.
type AudioFile struct {
	ID                 string    `gorm:"primaryKey" json:"id"`
	Filename           string    `gorm:"not null" json:"filename"`
	FileSize           int64     `json:"file_size"`
	UploadedAt         time.Time `gorm:"index" json:"uploaded_at"`
	AudioDuration      float64   `json:"audio_duration,omitempty"`
	SelectedModel      string    `json:"selected_model,omitempty"`
	ProcessingStage    Stage     `gorm:"not null" json:"processing_stage"`
	ProgressPercentage int       `json:"progress_percentage"`
	Transcription      string    `json:"transcription,omitempty"`
	WordCount          int       `json:"word_count"`
	Summary            string    `json:"summary,omitempty"`
	Questions          string    `json:"questions,omitempty"`
	ErrorMessage       string    `json:"error_message,omitempty"`
}

// TableName sets the table name used by GORM.
func (AudioFile) TableName() string { return "audio_files" }
