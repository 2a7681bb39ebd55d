package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

// Handler reacts to one type of assignment lifecycle event.
type Handler interface {
	Handle(ctx context.Context, ev *domain.Event) error
	EventType() domain.EventType
}

// Registry maps event types to their handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.EventType]Handler
}

// NewRegistry creates a Registry holding hs.
func NewRegistry(hs ...Handler) *Registry {
	r := &Registry{handlers: make(map[domain.EventType]Handler)}
	for _, h := range hs {
		r.Register(h)
	}
	return r
}

// Register adds h, replacing any handler for the same event type.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.EventType()] = h
}

// Get returns the handler for typ. Event types without a handler are only audited.
func (r *Registry) Get(typ domain.EventType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[typ]
	return h, ok
}

// PermanentError marks a failure that will not succeed on retry.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err as a PermanentError.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err, or an error it wraps, is a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
