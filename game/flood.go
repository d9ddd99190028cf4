package game

import (
	"github.com/gammazero/deque"
	"github.com/they4kman/sweepengine/util/collections"
)

// NeighborGetter appends the neighbors of idx to out and returns the result.
type NeighborGetter func(out []int, idx int) []int

// Visitor is called once per reached cell and reports whether the flood
// should continue into that cell's neighbors.
type Visitor func(idx int) (expand bool)

// flood walks outward from origin breadth-first on an explicit queue. Each
// cell is enqueued at most once, so the walk is bounded by the cell count.
func flood(origin int, visit Visitor, getNeighbors NeighborGetter) {
	visited := make(collections.Set[int])
	visitQueue := deque.New[int]()

	visited.Add(origin)
	visitQueue.PushBack(origin)

	var neighbors []int
	for visitQueue.Len() > 0 {
		idx := visitQueue.PopFront()
		if !visit(idx) {
			continue
		}

		neighbors = getNeighbors(neighbors[:0], idx)
		for _, neighbor := range neighbors {
			// Don't visit, if already visited
			if visited.Contains(neighbor) {
				continue
			}
			visited.Add(neighbor)
			visitQueue.PushBack(neighbor)
		}
	}
}
