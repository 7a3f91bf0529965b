// internal/outbox/store.go
package outbox

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/abc-shortship/backend-go/internal/domain"
)

const (
	opQueue     = "queue"
	opDelivered = "delivered"
)

// logEntry is one line of the outbox log. A "queue" line carries a pending
// correction; a matching "delivered" line for the same sequence retires it.
type logEntry struct {
	Op    string                  `json:"op"`
	Seq   uint64                  `json:"seq"`
	Entry *domain.CorrectionEntry `json:"entry,omitempty"`
}

// pendingItem is an enqueued correction awaiting delivery.
type pendingItem struct {
	Seq   uint64
	Entry domain.CorrectionEntry
}

// Store is the durable backing log of the outbox: an append-only JSON-lines
// file replayed on open to rebuild the pending queue. Every append is
// flushed and synced before returning, so a correction acknowledged to the
// caller survives a restart.
type Store struct {
	mu               sync.Mutex
	path             string
	file             *os.File
	nextSeq          uint64
	pending          []pendingItem
	deliveredSince   int
	compactThreshold int
}

// OpenStore opens (or creates) the log at path and replays it. Queue lines
// without a matching delivered line become the pending queue, in append
// order. compactThreshold bounds how many retired lines accumulate before
// the log is rewritten; <=0 disables compaction.
func OpenStore(path string, compactThreshold int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create outbox dir: %w", err)
		}
	}

	s := &Store{path: path, nextSeq: 1, compactThreshold: compactThreshold}
	if err := s.replay(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open outbox log: %w", err)
	}
	s.file = f
	return s, nil
}

func (s *Store) replay() error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open outbox log: %w", err)
	}
	defer f.Close()

	delivered := make(map[uint64]bool)
	var queued []pendingItem

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec logEntry
		if err := json.Unmarshal(line, &rec); err != nil {
			// A torn final line from a crash mid-append is dropped.
			continue
		}
		if rec.Seq >= s.nextSeq {
			s.nextSeq = rec.Seq + 1
		}
		switch rec.Op {
		case opQueue:
			if rec.Entry != nil {
				queued = append(queued, pendingItem{Seq: rec.Seq, Entry: *rec.Entry})
			}
		case opDelivered:
			delivered[rec.Seq] = true
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("replay outbox log: %w", err)
	}

	for _, it := range queued {
		if delivered[it.Seq] {
			s.deliveredSince++
			continue
		}
		s.pending = append(s.pending, it)
	}
	return nil
}

func (s *Store) appendLine(rec logEntry) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode outbox record: %w", err)
	}
	b = append(b, '\n')
	if _, err := s.file.Write(b); err != nil {
		return fmt.Errorf("append outbox record: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync outbox log: %w", err)
	}
	return nil
}

// Append durably records a correction and returns its sequence number.
func (s *Store) Append(entry domain.CorrectionEntry) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeq
	if err := s.appendLine(logEntry{Op: opQueue, Seq: seq, Entry: &entry}); err != nil {
		return 0, err
	}
	s.nextSeq++
	s.pending = append(s.pending, pendingItem{Seq: seq, Entry: entry})
	return seq, nil
}

// MarkDelivered retires the head entry identified by seq. The seq must be
// the current head; delivery is strictly in order.
func (s *Store) MarkDelivered(seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 || s.pending[0].Seq != seq {
		return fmt.Errorf("outbox: seq %d is not at the head", seq)
	}
	if err := s.appendLine(logEntry{Op: opDelivered, Seq: seq}); err != nil {
		return err
	}
	s.pending = s.pending[1:]
	s.deliveredSince++

	if s.compactThreshold > 0 && s.deliveredSince >= s.compactThreshold {
		if err := s.compact(); err != nil {
			return err
		}
	}
	return nil
}

// compact rewrites the log with only the still-pending entries. Called with
// the lock held.
func (s *Store) compact() error {
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("compact outbox: %w", err)
	}
	w := bufio.NewWriter(f)
	for i := range s.pending {
		b, err := json.Marshal(logEntry{Op: opQueue, Seq: s.pending[i].Seq, Entry: &s.pending[i].Entry})
		if err != nil {
			f.Close()
			return fmt.Errorf("compact outbox: %w", err)
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			f.Close()
			return fmt.Errorf("compact outbox: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("compact outbox: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("compact outbox: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("compact outbox: %w", err)
	}

	if err := s.file.Close(); err != nil {
		return fmt.Errorf("compact outbox: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("compact outbox: %w", err)
	}
	nf, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reopen outbox log: %w", err)
	}
	s.file = nf
	s.deliveredSince = 0
	return nil
}

// Head returns the oldest pending entry, if any.
func (s *Store) Head() (pendingItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return pendingItem{}, false
	}
	return s.pending[0], true
}

// Depth returns the number of pending entries.
func (s *Store) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Pending returns a copy of every queued correction, oldest first.
func (s *Store) Pending() []domain.CorrectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CorrectionEntry, len(s.pending))
	for i := range s.pending {
		out[i] = s.pending[i].Entry
	}
	return out
}

// Close closes the underlying log file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
