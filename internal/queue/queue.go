// Package queue holds the ready queue shared by the schedulers: a set of
// runnable task IDs that always yields the smallest identifier first.
package queue

import "container/heap"

// Ready is a min-heap of task IDs. The zero value is an empty queue.
type Ready struct {
	h idHeap
}

// New returns a queue seeded with ids.
func New(ids ...string) *Ready {
	q := &Ready{h: append(idHeap(nil), ids...)}
	heap.Init(&q.h)
	return q
}

// Push adds a task to the queue.
func (q *Ready) Push(id string) {
	heap.Push(&q.h, id)
}

// Pop removes and returns the smallest task ID. ok is false when empty.
func (q *Ready) Pop() (id string, ok bool) {
	if q.h.Len() == 0 {
		return "", false
	}
	return heap.Pop(&q.h).(string), true
}

// Len returns the number of queued tasks.
func (q *Ready) Len() int { return q.h.Len() }

type idHeap []string

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *idHeap) Push(x any) {
	*h = append(*h, x.(string))
}

func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
