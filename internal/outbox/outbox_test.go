package outbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(doc, item, note string) domain.CorrectionEntry {
	return domain.CorrectionEntry{DocumentNumber: doc, ItemCode: item, Note: note}
}

func TestStoreReplayAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.log")

	s, err := OpenStore(path, 0)
	require.NoError(t, err)

	seqA, err := s.Append(entry("D-1", "PUMP", "first"))
	require.NoError(t, err)
	_, err = s.Append(entry("D-2", "SEAL", "second"))
	require.NoError(t, err)
	require.NoError(t, s.MarkDelivered(seqA))
	require.NoError(t, s.Close())

	// The delivered entry is gone after replay, the pending one is not.
	s, err = OpenStore(path, 0)
	require.NoError(t, err)
	defer s.Close()

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "D-2", pending[0].DocumentNumber)
	assert.Equal(t, "second", pending[0].Note)

	// New appends continue the sequence.
	seqC, err := s.Append(entry("D-3", "BOLT", "third"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Depth())
	assert.Greater(t, seqC, seqA)
}

func TestStoreIgnoresTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.log")

	s, err := OpenStore(path, 0)
	require.NoError(t, err)
	_, err = s.Append(entry("D-1", "PUMP", "note"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Simulate a crash mid-append.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"op":"queue","seq":`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s, err = OpenStore(path, 0)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 1, s.Depth())
}

func TestStoreMarkDeliveredEnforcesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.log")

	s, err := OpenStore(path, 0)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Append(entry("D-1", "PUMP", "a"))
	require.NoError(t, err)
	seqB, err := s.Append(entry("D-2", "SEAL", "b"))
	require.NoError(t, err)

	assert.Error(t, s.MarkDelivered(seqB))
	assert.Equal(t, 2, s.Depth())
}

func TestStoreCompaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.log")

	s, err := OpenStore(path, 1)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		seq, err := s.Append(entry("D-1", "PUMP", "n"))
		require.NoError(t, err)
		require.NoError(t, s.MarkDelivered(seq))
	}
	_, err = s.Append(entry("D-9", "KEEP", "kept"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// After compaction only the pending entry remains in the log.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "delivered")
	assert.Contains(t, string(data), "D-9")

	s, err = OpenStore(path, 1)
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, 1, s.Depth())
	assert.Equal(t, "D-9", s.Pending()[0].DocumentNumber)
}

// scriptedSubmitter fails specific documents and records delivery order.
type scriptedSubmitter struct {
	fail      map[string]bool
	delivered []string
}

func (f *scriptedSubmitter) Submit(ctx context.Context, e domain.CorrectionEntry) error {
	if f.fail[e.DocumentNumber] {
		return errors.New("endpoint unavailable")
	}
	f.delivered = append(f.delivered, e.DocumentNumber)
	return nil
}

func TestDrainStopsAtFirstFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.log")
	s, err := OpenStore(path, 0)
	require.NoError(t, err)
	defer s.Close()

	sub := &scriptedSubmitter{fail: map[string]bool{"D-1": true}}
	box := New(s, sub, Options{})

	require.NoError(t, box.Enqueue(entry("D-1", "PUMP", "a")))
	require.NoError(t, box.Enqueue(entry("D-2", "SEAL", "b")))

	box.Drain(context.Background())

	// D-2 never overtakes the stuck head.
	assert.Empty(t, sub.delivered)
	assert.Equal(t, 2, box.Depth())

	// Once the head succeeds, the queue drains in order.
	sub.fail = nil
	box.Drain(context.Background())
	assert.Equal(t, []string{"D-1", "D-2"}, sub.delivered)
	assert.Equal(t, 0, box.Depth())
}

func TestDrainIsIdempotentWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.log")
	s, err := OpenStore(path, 0)
	require.NoError(t, err)
	defer s.Close()

	sub := &scriptedSubmitter{}
	box := New(s, sub, Options{})

	box.Drain(context.Background())
	box.Drain(context.Background())
	assert.Empty(t, sub.delivered)
	assert.False(t, box.Delivering())
}

func TestDrainRespectsCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.log")
	s, err := OpenStore(path, 0)
	require.NoError(t, err)
	defer s.Close()

	sub := &scriptedSubmitter{}
	box := New(s, sub, Options{})
	require.NoError(t, box.Enqueue(entry("D-1", "PUMP", "a")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	box.Drain(ctx)

	assert.Empty(t, sub.delivered)
	assert.Equal(t, 1, box.Depth())
}
