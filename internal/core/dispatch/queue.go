// Package dispatch orders pending SOS requests for rescue teams.
package dispatch

import (
	"container/heap"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// Queue is a max-heap of SOS requests keyed on urgency rank. Requests of
// equal urgency come out oldest first, then by id.
//
// A Queue is built per listing and is not safe for concurrent use.
type Queue struct {
	items queueItems
}

// Build returns a Queue holding reqs.
func Build(reqs []domain.SOSRequest) *Queue {
	q := &Queue{items: make(queueItems, 0, len(reqs))}
	for i := range reqs {
		q.items = append(q.items, &reqs[i])
	}
	heap.Init(&q.items)
	return q
}

// Push adds a request.
func (q *Queue) Push(r *domain.SOSRequest) {
	heap.Push(&q.items, r)
}

// Pop removes and returns the most urgent request, or nil when empty.
func (q *Queue) Pop() *domain.SOSRequest {
	if q.items.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.items).(*domain.SOSRequest)
}

// Len returns the number of queued requests.
func (q *Queue) Len() int { return q.items.Len() }

// Drain empties the queue in priority order.
func (q *Queue) Drain() []domain.SOSRequest {
	out := make([]domain.SOSRequest, 0, q.items.Len())
	for q.items.Len() > 0 {
		out = append(out, *q.Pop())
	}
	return out
}

// Order sorts reqs into dispatch order.
func Order(reqs []domain.SOSRequest) []domain.SOSRequest {
	return Build(reqs).Drain()
}

type queueItems []*domain.SOSRequest

func (q queueItems) Len() int { return len(q) }

func (q queueItems) Less(i, j int) bool {
	ri, rj := q[i].Priority.Rank(), q[j].Priority.Rank()
	if ri != rj {
		return ri > rj
	}
	if ti, tj := q[i].CreatedAt, q[j].CreatedAt; !ti.Equal(tj) {
		return ti.Before(tj)
	}
	return q[i].ID < q[j].ID
}

func (q queueItems) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queueItems) Push(x interface{}) {
	*q = append(*q, x.(*domain.SOSRequest))
}

func (q *queueItems) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
