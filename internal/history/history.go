package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"minecraft-codegen/internal/storage"
)

// DefaultDisplayLimit is how many exchanges the history list shows.
const DefaultDisplayLimit = 20

// Exchange is re-exported so callers need not import storage.
type Exchange = storage.Exchange

// RecoveredError reports a history file that could not be read and was set
// aside. The log it accompanies is usable and starts empty.
type RecoveredError struct {
	Path        string
	Quarantined string
	Err         error
}

func (e *RecoveredError) Error() string {
	if e.Quarantined != "" {
		return fmt.Sprintf("history %s unreadable, moved to %s: %v", e.Path, e.Quarantined, e.Err)
	}
	return fmt.Sprintf("history %s unreadable, starting empty: %v", e.Path, e.Err)
}

func (e *RecoveredError) Unwrap() error { return e.Err }

// Log is the in-memory exchange sequence of a running process. The backing
// store is read once by Open and rewritten in full by every Append.
type Log struct {
	mu        sync.RWMutex
	store     storage.Store
	exchanges []Exchange
}

type quarantiner interface {
	Path() string
	Quarantine(now time.Time) (string, error)
}

// Open loads the stored sequence. A malformed store yields an empty log and a
// *RecoveredError; any other load failure is returned with a nil log.
func Open(store storage.Store) (*Log, error) {
	exchanges, err := store.Load()
	if err == nil {
		return &Log{store: store, exchanges: exchanges}, nil
	}
	if !errors.Is(err, storage.ErrMalformed) {
		return nil, fmt.Errorf("load history: %w", err)
	}

	l := &Log{store: store, exchanges: []Exchange{}}
	rec := &RecoveredError{Err: err}
	if q, ok := store.(quarantiner); ok {
		rec.Path = q.Path()
		dst, qerr := q.Quarantine(time.Now())
		if qerr != nil {
			rec.Err = errors.Join(err, qerr)
		}
		rec.Quarantined = dst
	}
	return l, rec
}

// Append adds one exchange to the in-memory sequence and persists the whole
// sequence. When persisting fails the exchange stays in memory.
func (l *Log) Append(ex Exchange) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.exchanges = append(l.exchanges, ex)
	snapshot := make([]Exchange, len(l.exchanges))
	copy(snapshot, l.exchanges)
	if err := l.store.Save(snapshot); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

func (l *Log) All() []Exchange {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Exchange, len(l.exchanges))
	copy(out, l.exchanges)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.exchanges)
}

func (l *Log) Recent(limit int) []Exchange {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Recent(l.exchanges, limit)
}

// Recent returns the last limit exchanges of seq, most recent first.
// The result never aliases seq.
func Recent(seq []Exchange, limit int) []Exchange {
	if limit <= 0 || len(seq) == 0 {
		return []Exchange{}
	}
	start := len(seq) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Exchange, 0, len(seq)-start)
	for i := len(seq) - 1; i >= start; i-- {
		out = append(out, seq[i])
	}
	return out
}
