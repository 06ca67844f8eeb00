// Package ledger holds the olive-mill ledger: intake receipts, extraction
// batches, tanks, sales, invoices and settlements, together with the only
// operations allowed to change them.
//
// Every mutating method is one atomic transition. It runs against a private
// copy of the state and the copy replaces the live state only when the method
// returns without error, so a rejected call leaves every collection and log
// exactly as it was.
package ledger

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Recorder observes the outcome of every mutating operation.
type Recorder interface {
	RecordOperation(op string, err error)
}

// Store owns the ledger state.
type Store struct {
	mu       sync.RWMutex
	doc      Document
	version  int64
	now      func() time.Time
	newID    func() string
	validate *validator.Validate
	recorder Recorder
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithIDGenerator overrides entity id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithRecorder attaches an operation recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// WithSettings seeds the initial settings.
func WithSettings(settings Settings) Option {
	return func(s *Store) { s.doc.Settings = settings }
}

// NewStore builds an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		doc:      Document{Counters: make(map[string]int)},
		now:      time.Now,
		newID:    uuid.NewString,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// txn is the working copy handed to an operation.
type txn struct {
	doc   *Document
	now   time.Time
	newID func() string

	// minVersion lets an import carry the version of the document it restores.
	minVersion int64
}

// apply runs fn on a copy of the state and commits the copy when fn succeeds.
func (s *Store) apply(op string, fn func(tx *txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.doc.clone()
	tx := &txn{doc: &working, now: s.now().UTC(), newID: s.newID}
	err := fn(tx)
	if s.recorder != nil {
		s.recorder.RecordOperation(op, err)
	}
	if err != nil {
		return err
	}
	s.doc = working
	s.version++
	if tx.minVersion > s.version {
		s.version = tx.minVersion
	}
	return nil
}

// view runs fn under the read lock against the live state. fn must copy
// anything it returns.
func (s *Store) view(fn func(d *Document)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.doc)
}

// Version increases by one on every committed transition.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Document returns a deep copy of the whole ledger state.
func (s *Store) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.doc.clone()
	out.Version = s.version
	out.ExportedAt = s.now().UTC()
	return out
}

// Import replaces the whole state with doc after validating it. Counters are
// raised to the highest number found so numbering stays monotonic, and the
// store version never moves below the imported document's version.
func (s *Store) Import(doc Document) error {
	if err := doc.Validate(); err != nil {
		if s.recorder != nil {
			s.recorder.RecordOperation("import", err)
		}
		return err
	}
	return s.apply("import", func(tx *txn) error {
		next := doc.clone()
		next.reconcileCounters()
		tx.minVersion = doc.Version
		next.Version = 0
		next.ExportedAt = time.Time{}
		*tx.doc = next
		return nil
	})
}

// dateOr returns d, or the transaction time when d is zero.
func (tx *txn) dateOr(d time.Time) time.Time {
	if d.IsZero() {
		return tx.now
	}
	return d.UTC()
}
