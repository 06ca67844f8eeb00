package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maasra-erp/maasra/internal/ledger"
)

// Source is the ledger state the syncer reads and restores.
type Source interface {
	Version() int64
	Document() ledger.Document
	Import(doc ledger.Document) error
}

// Syncer periodically saves the ledger document when its version moves.
type Syncer struct {
	source   Source
	repo     Repository
	mirror   Publisher
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	saved    int64
}

// NewSyncer constructs a syncer. mirror may be nil.
func NewSyncer(source Source, repo Repository, mirror Publisher, logger *slog.Logger, interval time.Duration) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Syncer{
		source:   source,
		repo:     repo,
		mirror:   mirror,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Restore loads the latest stored snapshot into the source. An empty
// repository leaves the source untouched.
func (s *Syncer) Restore(ctx context.Context) error {
	snap, err := s.repo.Latest(ctx)
	if IsMissing(err) {
		s.logger.Info("no ledger snapshot stored, starting empty")
		return nil
	}
	if err != nil {
		return err
	}
	doc, err := snap.Decode()
	if err != nil {
		return err
	}
	if err := s.source.Import(doc); err != nil {
		return fmt.Errorf("snapshot: restore version %d: %w", snap.Version, err)
	}
	s.saved = s.source.Version()
	s.logger.Info("ledger snapshot restored", slog.Int64("version", snap.Version))
	return nil
}

// SyncOnce saves the document when it changed since the last save. It
// reports whether a snapshot was written.
func (s *Syncer) SyncOnce(ctx context.Context) (bool, error) {
	if s.source.Version() <= s.saved {
		return false, nil
	}
	snap, err := Encode(s.source.Document(), s.now())
	if err != nil {
		return false, err
	}
	if err := s.repo.Save(ctx, snap); err != nil {
		if !errors.Is(err, ErrVersionExists) {
			return false, err
		}
		s.logger.Warn("ledger snapshot version already stored", slog.Int64("version", snap.Version))
	}
	s.saved = snap.Version
	if s.mirror != nil {
		if err := s.mirror.Publish(ctx, snap); err != nil {
			s.logger.Warn("ledger snapshot mirror failed", slog.Int64("version", snap.Version), slog.Any("error", err))
		}
	}
	s.logger.Debug("ledger snapshot saved", slog.Int64("version", snap.Version))
	return true, nil
}

// Run syncs on every tick until ctx ends, then flushes once more.
func (s *Syncer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if _, err := s.SyncOnce(flushCtx); err != nil {
				s.logger.Error("final ledger snapshot failed", slog.Any("error", err))
				return err
			}
			return nil
		case <-ticker.C:
			if _, err := s.SyncOnce(ctx); err != nil {
				s.logger.Error("ledger snapshot failed", slog.Any("error", err))
			}
		}
	}
}
