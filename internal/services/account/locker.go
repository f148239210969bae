package account

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Locker hands out per-account exclusive locks. Several accounts are always
// taken in ascending id order so two callers can never wait on each other
// in a cycle. A slot lives only while someone holds or waits on it, so the
// map stays bounded by the number of in-flight acquisitions.
type Locker struct {
	mu      sync.Mutex
	slots   map[uint]*slot
	timeout time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocker creates a locker whose acquisitions give up after timeout.
func NewLocker(timeout time.Duration) *Locker {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &Locker{
		slots:   make(map[uint]*slot),
		timeout: timeout,
	}
}

func (l *Locker) ref(id uint) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[id] = s
	}
	s.refs++
	return s.ch
}

func (l *Locker) unref(id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[id]
	if !ok {
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(l.slots, id)
	}
}

// Acquire locks every id, or none. It fails with ErrBusy when the locks are
// not all held within the timeout, or with the context error when ctx ends
// first. The returned release func is idempotent.
func (l *Locker) Acquire(ctx context.Context, ids ...uint) (func(), error) {
	ordered := uniqueSorted(ids)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	held := make([]uint, 0, len(ordered))
	chans := make([]chan struct{}, 0, len(ordered))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-chans[i]
			l.unref(held[i])
		}
	}

	for _, id := range ordered {
		ch := l.ref(id)
		select {
		case ch <- struct{}{}:
			held = append(held, id)
			chans = append(chans, ch)
		case <-timer.C:
			l.unref(id)
			releaseHeld()
			return nil, ErrBusy
		case <-ctx.Done():
			l.unref(id)
			releaseHeld()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}

func uniqueSorted(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
