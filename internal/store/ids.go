package store

import "time"

// idAllocator hands out unique record identifiers. Ids are wall-clock
// milliseconds bumped past the last value handed out, and the allocator is
// seeded above the largest persisted id, so uniqueness survives both fast
// writers and restarts. Callers hold their store's lock.
type idAllocator struct {
	last int64
}

func newIDAllocator(seed int64) *idAllocator {
	return &idAllocator{last: seed}
}

func (a *idAllocator) next() int64 {
	now := time.Now().UnixMilli()
	if now <= a.last {
		a.last++
	} else {
		a.last = now
	}

	return a.last
}
