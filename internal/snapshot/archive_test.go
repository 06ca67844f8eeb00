package snapshot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestArchiveKeyLayout(t *testing.T) {
	snap := Snapshot{Version: 42, CreatedAt: time.Date(2025, 3, 7, 8, 9, 10, 0, time.UTC)}
	require.Equal(t, "ledger/2025/03/snapshot-42-20250307T080910Z.json", ArchiveKey(snap))
}

func TestArchiverUploadsDocument(t *testing.T) {
	putter := &recordingPutter{}
	archiver := NewArchiver(putter, "backups")
	snap := Snapshot{Version: 7, Document: json.RawMessage(`{"version":7}`), CreatedAt: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)}

	key, err := archiver.Archive(context.Background(), snap)
	require.NoError(t, err)
	require.Equal(t, "ledger/2025/12/snapshot-7-20251201T000000Z.json", key)
	require.Equal(t, []string{key}, putter.keys)
	require.JSONEq(t, `{"version":7}`, string(putter.bodies[0]))
}
