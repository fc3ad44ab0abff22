// Package dedupe tracks roster submissions so that a resubmitted roster is
// acknowledged instead of being scored twice.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Deduper maps submission ids to the job that first carried them.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen. If it was, the
	// original job id is returned with seen=true. Otherwise jobID is recorded.
	SeenAndRecord(ctx context.Context, id, jobID string) (original string, seen bool)

	// Unrecord forgets id so that the submission can be retried, e.g. after
	// the queue rejected it.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type entry struct {
	id    string
	jobID string
}

// inMemoryDeduper is a bounded FIFO: when full, the oldest submission is
// forgotten first. maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		return el.Value.(entry).jobID, true
	}
	if d.maxSize > 0 {
		for d.order.Len() >= d.maxSize {
			d.evictOldest()
		}
	}
	d.seen[id] = d.order.PushBack(entry{id: id, jobID: jobID})
	d.size.Add(1)
	return jobID, false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.seen[id]
	if !ok {
		return
	}
	d.order.Remove(el)
	delete(d.seen, id)
	d.size.Add(-1)
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(entry).id)
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
