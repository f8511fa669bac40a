package stream

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-org-boundaries/internal/metrics"
	"github.com/mr1hm/go-org-boundaries/internal/navigation"
)

// Update is the navigation state a viewer should switch to.
type Update struct {
	Level int     `json:"level"`
	Path  []int64 `json:"path"`
	Query string  `json:"query"`
}

// NewUpdate flattens st to ids; query is st in its shareable form.
func NewUpdate(st navigation.State, query string) Update {
	path := make([]int64, len(st.Path))
	for i, o := range st.Path {
		path[i] = o.ID
	}
	return Update{Level: st.Level, Path: path, Query: query}
}

// Broadcaster fans navigation updates out to every open viewer stream.
// A viewer whose buffer is full misses intermediate states; the latest one
// is always replayed to new viewers so they start in sync.
type Broadcaster struct {
	viewers map[uint64]chan Update
	last    *Update
	nextID  atomic.Uint64
	mu      sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		viewers: make(map[uint64]chan Update),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan Update) {
	id := b.nextID.Add(1)
	ch := make(chan Update, 16)

	b.mu.Lock()
	if b.last != nil {
		ch <- *b.last
	}
	b.viewers[id] = ch
	metrics.StreamSubscribers.Set(float64(len(b.viewers)))
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.viewers[id]; ok {
		close(ch)
		delete(b.viewers, id)
		metrics.StreamSubscribers.Set(float64(len(b.viewers)))
	}
	b.mu.Unlock()
}

// Broadcast records u as the latest state and offers it to every viewer
// without blocking.
func (b *Broadcaster) Broadcast(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = &u
	for _, ch := range b.viewers {
		select {
		case ch <- u:
		default:
			metrics.StreamDroppedTotal.Inc()
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.viewers)
}

// Close ends every viewer stream.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.viewers {
		close(ch)
		delete(b.viewers, id)
	}
	metrics.StreamSubscribers.Set(0)
}
