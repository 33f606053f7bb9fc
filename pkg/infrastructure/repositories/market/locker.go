package market

import (
	"context"
	"sort"
	"sync"
)

// keyedLocker hands out one mutex per entity id.
// Locks for a call are taken in sorted order so overlapping callers cannot deadlock.
type keyedLocker struct {
	mutex sync.Mutex
	locks map[string]*entityLock
}

type entityLock struct {
	ch   chan struct{}
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*entityLock)}
}

// lock acquires every id and returns the matching release function.
// It gives up with ctx.Err() if ctx ends while waiting.
func (l *keyedLocker) lock(ctx context.Context, ids []string) (func(), error) {
	keys := uniqueSorted(ids)
	held := make([]string, 0, len(keys))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.unlockOne(held[i])
		}
	}

	for _, key := range keys {
		entry := l.acquireRef(key)
		select {
		case entry.ch <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			l.dropRef(key)
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

func (l *keyedLocker) acquireRef(key string) *entityLock {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	entry, ok := l.locks[key]
	if !ok {
		entry = &entityLock{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (l *keyedLocker) dropRef(key string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	entry := l.locks[key]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *keyedLocker) unlockOne(key string) {
	l.mutex.Lock()
	entry := l.locks[key]
	l.mutex.Unlock()

	<-entry.ch
	l.dropRef(key)
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}
