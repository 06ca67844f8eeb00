// Package snapshot persists the ledger document outside the process: the
// PostgreSQL table is the source of truth, Redis mirrors the latest document
// for readers, and S3 keeps dated archives.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/maasra-erp/maasra/internal/ledger"
	"github.com/maasra-erp/maasra/internal/shared"
)

var (
	// ErrNoSnapshot is returned when nothing has been stored yet.
	ErrNoSnapshot = fmt.Errorf("snapshot: %w", shared.ErrNotFound)
	// ErrVersionExists is returned when a version was already stored.
	ErrVersionExists = fmt.Errorf("snapshot: version already stored: %w", shared.ErrConflict)
)

// Snapshot is one serialized ledger document.
type Snapshot struct {
	Version   int64           `json:"version"`
	Document  json.RawMessage `json:"document"`
	CreatedAt time.Time       `json:"created_at"`
}

// Encode serializes a ledger document.
func Encode(doc ledger.Document, now time.Time) (Snapshot, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: encode: %w", err)
	}
	return Snapshot{Version: doc.Version, Document: raw, CreatedAt: now.UTC()}, nil
}

// Decode parses the stored document.
func (s Snapshot) Decode() (ledger.Document, error) {
	var doc ledger.Document
	if err := json.Unmarshal(s.Document, &doc); err != nil {
		return ledger.Document{}, fmt.Errorf("snapshot: decode version %d: %w", s.Version, err)
	}
	if doc.Version < s.Version {
		doc.Version = s.Version
	}
	return doc, nil
}

// Repository stores snapshots durably.
type Repository interface {
	Save(ctx context.Context, snap Snapshot) error
	Latest(ctx context.Context) (Snapshot, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// Publisher receives every saved snapshot.
type Publisher interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// IsMissing reports whether err means no snapshot exists.
func IsMissing(err error) bool {
	return errors.Is(err, ErrNoSnapshot)
}

// Fanout publishes to every publisher in order and joins their errors.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, snap Snapshot) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
