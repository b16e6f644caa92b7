// Package sse pushes per-file processing progress to subscribed clients as
// server-sent events. Polling GET /api/files/:id remains the primary
// interface; this stream is a convenience for UIs.
package sse

import (
	"encoding/json"
	"sync"

	"github.com/kbukum/orator/internal/logger"
	"github.com/kbukum/orator/internal/store"
)

// ProgressEvent is one stage/progress update for a file.
type ProgressEvent struct {
	FileID   string      `json:"file_id"`
	Stage    store.Stage `json:"stage"`
	Progress int         `json:"progress"`
	Error    string      `json:"error,omitempty"`
}

// Terminal reports whether no further events will follow.
func (e ProgressEvent) Terminal() bool {
	return e.Stage.Terminal()
}

// subscriber is one connected client interested in a single file id.
type subscriber struct {
	fileID string
	events chan []byte
}

// Hub fans progress events out to per-file subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
	log  *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		subs: make(map[*subscriber]struct{}),
		log:  log.WithComponent("sse"),
	}
}

// Subscribe registers interest in one file's progress. The returned channel
// receives JSON-encoded ProgressEvents; call the cancel func when done.
func (h *Hub) Subscribe(fileID string) (<-chan []byte, func()) {
	sub := &subscriber{
		fileID: fileID,
		events: make(chan []byte, 16),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub.events)
		}
		h.mu.Unlock()
	}
	return sub.events, cancel
}

// Publish sends an event to every subscriber of the event's file. Slow
// subscribers lose events rather than block the pipeline.
func (h *Hub) Publish(event ProgressEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("Failed to encode progress event", logger.ErrorFields("publish", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.fileID != event.FileID {
			continue
		}
		select {
		case sub.events <- data:
		default:
			h.log.Warn("Subscriber channel full, dropping event",
				logger.Fields(logger.FieldFileID, event.FileID))
		}
	}
}
