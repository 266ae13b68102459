package crawler

import (
	"sync"

	"github.com/siteclone/siteclone/internal/urlutil"
)

// Target is one pending fetch: the URL as first discovered, its canonical
// deduplication key, and its hop distance from the seed (the seed is depth 1).
type Target struct {
	URL   string
	Key   string
	Depth int
}

// queueKey identifies a queue entry. Depth is part of the identity so a URL
// re-discovered at a different depth is not silently dropped before the
// visited check settles which attempt wins.
type queueKey struct {
	key   string
	depth int
}

// Frontier is the crawl's FIFO work queue plus its deduplication state.
// All methods are safe for concurrent use.
//
// Visiting is write-once: a key enters the visited set when its fetch is
// attempted and never leaves, whether the fetch succeeds or fails. Failed
// pages are not retried within a run.
type Frontier struct {
	mu      sync.Mutex
	queue   []Target
	visited map[string]bool
	queued  map[queueKey]bool
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		visited: make(map[string]bool),
		queued:  make(map[queueKey]bool),
	}
}

// Enqueue adds rawURL at depth to the tail of the queue. It reports false
// when the URL cannot be canonicalized, has already been visited, or is
// already queued at this depth. The check and the insert run under one lock
// so two discoveries of the same link cannot both enqueue it.
func (f *Frontier) Enqueue(rawURL string, depth int) bool {
	key, err := urlutil.Canonicalize(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[key] {
		return false
	}
	qk := queueKey{key: key, depth: depth}
	if f.queued[qk] {
		return false
	}

	f.queued[qk] = true
	f.queue = append(f.queue, Target{URL: rawURL, Key: key, Depth: depth})
	return true
}

// Dequeue removes and returns the head of the queue. The second return is
// false when the queue is empty.
func (f *Frontier) Dequeue() (Target, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return Target{}, false
	}
	t := f.queue[0]
	f.queue = f.queue[1:]
	return t, true
}

// MarkVisited claims key for fetching. It reports false when the key was
// already claimed, so exactly one dequeued target per key proceeds to fetch.
func (f *Frontier) MarkVisited(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[key] {
		return false
	}
	f.visited[key] = true
	return true
}

// VisitedCount returns the number of keys claimed so far, successes and
// failures alike.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// Len returns the number of pending targets.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
