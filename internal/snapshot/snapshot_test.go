package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maasra-erp/maasra/internal/ledger"
)

type funcPublisher func(ctx context.Context, snap Snapshot) error

func (f funcPublisher) Publish(ctx context.Context, snap Snapshot) error { return f(ctx, snap) }

func TestEncodeDecodeKeepsVersion(t *testing.T) {
	doc := ledger.NewStore().Document()
	doc.Version = 9

	snap, err := Encode(doc, time.Date(2025, 11, 3, 9, 30, 0, 0, time.FixedZone("CET", 3600)))
	require.NoError(t, err)
	require.EqualValues(t, 9, snap.Version)
	require.Equal(t, time.UTC, snap.CreatedAt.Location())

	back, err := snap.Decode()
	require.NoError(t, err)
	require.EqualValues(t, 9, back.Version)

	_, err = Snapshot{Version: 1, Document: []byte("{")}.Decode()
	require.Error(t, err)
}

func TestFanoutPublishesToAll(t *testing.T) {
	var seen []int64
	record := funcPublisher(func(_ context.Context, snap Snapshot) error {
		seen = append(seen, snap.Version)
		return nil
	})
	boom := errors.New("boom")
	failing := funcPublisher(func(context.Context, Snapshot) error { return boom })

	err := Fanout{record, nil, failing, record}.Publish(context.Background(), Snapshot{Version: 4})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []int64{4, 4}, seen)

	require.NoError(t, Fanout{}.Publish(context.Background(), Snapshot{Version: 1}))
}

func TestIsMissing(t *testing.T) {
	require.True(t, IsMissing(ErrNoSnapshot))
	require.False(t, IsMissing(ErrVersionExists))
}
