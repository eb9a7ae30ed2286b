package infra_lock_local

import (
	"context"
	"sync"
)

type entry struct {
	// capacity 1: holding the token means holding the lock
	sem  chan struct{}
	refs int
}

// Driver is an in-process keyed mutex. Entries live only while someone holds
// or waits for them.
type Driver struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Driver {
	return &Driver{
		entries: make(map[string]*entry),
	}
}

func (d *Driver) Lock(ctx context.Context, key string) (func(), error) {
	e := d.acquire(key)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		d.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			d.release(key, e)
		})
	}, nil
}

func (d *Driver) acquire(key string) *entry {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		d.entries[key] = e
	}
	e.refs++
	return e
}

func (d *Driver) release(key string, e *entry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(d.entries, key)
	}
}

func (d *Driver) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
