package util

// Queue is a FIFO queue backed by a slice.
// The zero value is an empty queue ready to use
type Queue[A any] struct {
	items []A
	head  int
}

func (q *Queue[A]) Push(v ...A) {
	q.items = append(q.items, v...)
}

func (q *Queue[A]) Pop() (ret A, ok bool) {
	if q.head >= len(q.items) {
		return ret, false
	}
	ret = q.items[q.head]
	var zero A
	q.items[q.head] = zero
	q.head++
	// reclaim the consumed prefix once it dominates the backing array
	if q.head > 32 && q.head*2 >= len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return ret, true
}

func (q *Queue[A]) Len() int {
	return len(q.items) - q.head
}
