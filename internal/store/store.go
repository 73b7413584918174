package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultDebounce is the quiet window that collapses rapid saves into a
// single disk write.
const DefaultDebounce = 100 * time.Millisecond

// ErrMalformedImport indicates an import document that failed to parse or
// had the wrong shape. Nothing is imported in that case.
var ErrMalformedImport = errors.New("malformed import document")

// Options configures a Store.
type Options struct {
	// Debounce is the save quiet window. Zero means every Save writes
	// synchronously, which is what tests want.
	Debounce time.Duration
	Logger   *slog.Logger
}

// Store owns the on-disk JSON document. It is the only component that reads
// or writes the file; repositories mutate the in-memory document and call
// Save. Callers must serialize access to the document themselves (the app
// layer holds one mutex over every operation); the Store's own lock only
// guards the pending write buffer, which the debounce timer touches from its
// own goroutine.
type Store struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	doc *Document

	mu      sync.Mutex
	pending []byte
	timer   *time.Timer
}

// Open loads the document at path, creating the parent directory if needed.
// A missing or unparseable file yields the empty default document; the
// parse-failure case is logged so the recovery is observable.
func Open(path string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	s := &Store{
		path:     path,
		debounce: opts.Debounce,
		logger:   logger,
	}
	s.doc = s.load()
	return s, nil
}

func (s *Store) load() *Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("data file unreadable, starting empty", "path", s.path, "error", err)
		}
		return NewDocument()
	}
	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Warn("data file corrupt, starting empty", "path", s.path, "error", err)
		return NewDocument()
	}
	normalize(doc)
	return doc
}

// normalize replaces nil collections from hand-edited or legacy files so
// the document always marshals arrays, not null.
func normalize(doc *Document) {
	if doc.Persons == nil {
		doc.Persons = []Person{}
	}
	if doc.Meetings == nil {
		doc.Meetings = []Meeting{}
	}
	if doc.ActionItems == nil {
		doc.ActionItems = []ActionItem{}
	}
	if doc.Templates == nil {
		doc.Templates = []Template{}
	}
}

// Doc returns the in-memory document. The caller owns serialization.
func (s *Store) Doc() *Document {
	return s.doc
}

// Path returns the data file location.
func (s *Store) Path() string {
	return s.path
}

// NextID increments and returns the id counter for an entity type. Ids are
// monotonic per type and never reused.
func (s *Store) NextID(entity EntityType) int {
	last := &s.doc.Meta.LastID
	switch entity {
	case EntityPersons:
		last.Persons++
		return last.Persons
	case EntityMeetings:
		last.Meetings++
		return last.Meetings
	case EntityActionItems:
		last.ActionItems++
		return last.ActionItems
	case EntityTemplates:
		last.Templates++
		return last.Templates
	}
	panic(fmt.Sprintf("store: unknown entity type %q", entity))
}

// Save schedules a write of the current document. Saves within the debounce
// window collapse into one trailing-edge disk write of the latest state.
// With a zero debounce the write happens synchronously and its error is
// returned; otherwise a deferred write failure is logged and surfaced by the
// next SaveImmediate or Close.
func (s *Store) Save() error {
	data, err := s.marshal()
	if err != nil {
		return err
	}
	if s.debounce <= 0 {
		return s.write(data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = data
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flushPending)
	return nil
}

func (s *Store) flushPending() {
	s.mu.Lock()
	data := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if data == nil {
		return
	}
	if err := s.write(data); err != nil {
		// In-memory state stays ahead of disk; the next save retries the
		// full document, so nothing is lost unless the process dies first.
		s.logger.Error("deferred save failed", "path", s.path, "error", err)
	}
}

// SaveImmediate writes the current document synchronously, cancelling any
// pending debounced write. Used where the debounce window is unacceptable:
// import, reset, shutdown.
func (s *Store) SaveImmediate() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.mu.Unlock()

	data, err := s.marshal()
	if err != nil {
		return err
	}
	return s.write(data)
}

// Close flushes any pending write.
func (s *Store) Close() error {
	return s.SaveImmediate()
}

func (s *Store) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding data document: %w", err)
	}
	return data, nil
}

func (s *Store) write(data []byte) error {
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	return nil
}
