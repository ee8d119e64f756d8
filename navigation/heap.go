package navigation

import "math"

// --- Min-heap shared by every search ---

// heapEntry orders by (k1, k2, seq); seq keeps equal keys FIFO so searches are deterministic
// stamp is only used by D* Lite to recognise superseded entries
type heapEntry struct {
	idx    int // Flat grid index (y*width + x)
	k1, k2 float64
	seq    uint64
	stamp  uint32
}

func (a heapEntry) less(b heapEntry, tol float64) bool {
	if keyLess(a.k1, a.k2, b.k1, b.k2, tol) {
		return true
	}
	if keyLess(b.k1, b.k2, a.k1, a.k2, tol) {
		return false
	}
	return a.seq < b.seq
}

type minHeap []heapEntry

func (h *minHeap) push(e heapEntry, tol float64) {
	*h = append(*h, e)
	// Sift up
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !(*h)[i].less((*h)[parent], tol) {
			break
		}
		(*h)[parent], (*h)[i] = (*h)[i], (*h)[parent]
		i = parent
	}
}

func (h *minHeap) pop(tol float64) heapEntry {
	old := *h
	n := len(old)
	e := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]
	h.down(0, tol)
	return e
}

// down sifts entry i toward the leaves
func (h *minHeap) down(i int, tol float64) {
	for {
		left := 2*i + 1
		if left >= len(*h) {
			return
		}
		smallest := left
		if right := left + 1; right < len(*h) && (*h)[right].less((*h)[left], tol) {
			smallest = right
		}
		if !(*h)[smallest].less((*h)[i], tol) {
			return
		}
		(*h)[i], (*h)[smallest] = (*h)[smallest], (*h)[i]
		i = smallest
	}
}

// priorityQueue stamps insertion order onto entries
// Key components closer than tol compare equal; zero means exact ordering
type priorityQueue struct {
	heap minHeap
	seq  uint64
	tol  float64
}

func (q *priorityQueue) push(idx int, k1, k2 float64, stamp uint32) {
	q.seq++
	q.heap.push(heapEntry{idx: idx, k1: k1, k2: k2, seq: q.seq, stamp: stamp}, q.tol)
}

func (q *priorityQueue) pop() heapEntry { return q.heap.pop(q.tol) }

func (q *priorityQueue) top() heapEntry { return q.heap[0] }

func (q *priorityQueue) len() int { return len(q.heap) }

func (q *priorityQueue) reset() {
	q.heap = q.heap[:0]
	q.seq = 0
}

// retain keeps the entries accepted by keep and restores heap order in place
func (q *priorityQueue) retain(keep func(heapEntry) bool) {
	live := q.heap[:0]
	for _, e := range q.heap {
		if keep(e) {
			live = append(live, e)
		}
	}
	q.heap = live
	for i := len(live)/2 - 1; i >= 0; i-- {
		q.heap.down(i, q.tol)
	}
}

// keyLess compares two-part keys lexicographically
// Components within tol of each other tie and defer to the next component
func keyLess(a1, a2, b1, b2, tol float64) bool {
	if !nearlyEqual(a1, b1, tol) {
		return a1 < b1
	}
	return !nearlyEqual(a2, b2, tol) && a2 < b2
}

func nearlyEqual(a, b, tol float64) bool {
	return a == b || math.Abs(a-b) <= tol
}
