package interpreter

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// Guard allows one outstanding AI request per feature
type Guard struct {
	mu       sync.Mutex
	features map[string]*semaphore.Weighted
}

// NewGuard creates an empty guard
func NewGuard() *Guard {
	return &Guard{features: make(map[string]*semaphore.Weighted)}
}

// Enter claims feature, failing with ErrRequestInFlight if it is already claimed.
// The returned release must be called when the request finishes.
func (g *Guard) Enter(feature string) (func(), error) {
	g.mu.Lock()
	sem, ok := g.features[feature]
	if !ok {
		sem = semaphore.NewWeighted(1)
		g.features[feature] = sem
	}
	g.mu.Unlock()

	if !sem.TryAcquire(1) {
		return nil, ErrRequestInFlight
	}
	return func() { sem.Release(1) }, nil
}
