// Package ringlog is a fixed-capacity, insertion-ordered sample log.
// When full, the oldest sample is evicted before the newest is appended.
//
// A Log is not safe for concurrent use; it is owned by a single loop.
package ringlog

import "golang.org/x/exp/constraints"

// Number is the element constraint for a Log.
type Number interface {
	constraints.Integer | constraints.Float
}

// Log holds the most recent Cap() samples, oldest first.
type Log[T Number] struct {
	buf  []T
	head int // index of the oldest sample
	n    int
}

// New returns an empty log. capacity <= 0 is coerced to 1.
func New[T Number](capacity int) *Log[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Log[T]{buf: make([]T, capacity)}
}

func (l *Log[T]) Len() int { return l.n }
func (l *Log[T]) Cap() int { return len(l.buf) }

// Push appends v, evicting the oldest sample if the log is full.
// It reports whether a sample was evicted.
func (l *Log[T]) Push(v T) (evicted bool) {
	size := len(l.buf)
	if l.n == size {
		l.buf[l.head] = v
		l.head = (l.head + 1) % size
		return true
	}
	l.buf[(l.head+l.n)%size] = v
	l.n++
	return false
}

// Record pushes v only when ok is true. Absent values are dropped
// without touching the log.
func (l *Log[T]) Record(v T, ok bool) {
	if ok {
		l.Push(v)
	}
}

// Last returns the newest sample.
func (l *Log[T]) Last() (T, bool) {
	var zero T
	if l.n == 0 {
		return zero, false
	}
	return l.buf[(l.head+l.n-1)%len(l.buf)], true
}

// Snapshot copies the contents in chronological order. The result is
// never nil so it encodes as an empty JSON array.
func (l *Log[T]) Snapshot() []T {
	out := make([]T, l.n)
	size := len(l.buf)
	first := size - l.head
	if first > l.n {
		first = l.n
	}
	copy(out, l.buf[l.head:l.head+first])
	copy(out[first:], l.buf[:l.n-first])
	return out
}

// Reset empties the log, keeping its capacity.
func (l *Log[T]) Reset() {
	l.head = 0
	l.n = 0
}
