package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chris/snug/internal/llm"
)

var (
	// ErrNotFound is returned when a session does not exist in the store.
	ErrNotFound = errors.New("session not found")

	// ErrMalformedTranscript is returned when a stored transcript cannot be
	// decoded.
	ErrMalformedTranscript = errors.New("malformed transcript")
)

// Store persists session transcripts.
type Store interface {
	Load(ctx context.Context, id string) ([]llm.Turn, error)
	Append(ctx context.Context, id string, turn llm.Turn) error
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, id string) error
}

// Info holds metadata about a saved session.
type Info struct {
	ID      string
	ModTime time.Time
	Turns   int
	Size    int64 // bytes on disk, when the store knows it
}

// NewID returns a fresh random session ID.
func NewID() string {
	return uuid.NewString()
}

// Session is one conversation: its full history in memory and, optionally,
// the store it is persisted to. The history is only ever appended to.
type Session struct {
	ID    string
	store Store
	turns []llm.Turn
	// base is the index of the first turn visible to callers; Clear moves it
	// forward without discarding persisted turns.
	base int
}

// New starts an empty session. store may be nil for an unsaved session.
func New(id string, store Store) *Session {
	if id == "" {
		id = NewID()
	}
	return &Session{ID: id, store: store}
}

// Open loads an existing session from store, or starts an empty one with
// that ID if it has never been saved.
func Open(ctx context.Context, store Store, id string) (*Session, error) {
	s := New(id, store)
	turns, err := store.Load(ctx, s.ID)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", s.ID, err)
	}
	s.turns = turns
	return s, nil
}

// Turns returns a copy of the visible history, oldest first.
func (s *Session) Turns() []llm.Turn {
	visible := s.turns[s.base:]
	out := make([]llm.Turn, len(visible))
	copy(out, visible)
	return out
}

// Len returns the number of visible turns.
func (s *Session) Len() int {
	return len(s.turns) - s.base
}

// Persistent reports whether turns are written to a store.
func (s *Session) Persistent() bool {
	return s.store != nil
}

// Append records a completed turn and persists it. The turn is kept in
// memory even when persisting fails.
func (s *Session) Append(ctx context.Context, turn llm.Turn) error {
	s.turns = append(s.turns, turn)
	if s.store == nil {
		return nil
	}
	if err := s.store.Append(ctx, s.ID, turn); err != nil {
		return fmt.Errorf("saving turn to session %s: %w", s.ID, err)
	}
	return nil
}

// Clear hides all current turns from future context. Stored turns are kept.
func (s *Session) Clear() {
	s.base = len(s.turns)
}
