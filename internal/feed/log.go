// Package feed provides the bounded, append-only sequences that rooms keep
// for round history and chat.
package feed

// Log is a fixed-capacity ring. Once full, each Append evicts the oldest
// entry. Log is not safe for concurrent use; rooms guard it with their own
// lock.
type Log[T any] struct {
	entries []T
	start   int
	size    int
	total   uint64
}

// New returns a log holding at most limit entries. A non-positive limit
// falls back to one entry so the log always keeps the latest value.
func New[T any](limit int) *Log[T] {
	if limit <= 0 {
		limit = 1
	}
	return &Log[T]{entries: make([]T, limit)}
}

// Append adds v as the newest entry.
func (l *Log[T]) Append(v T) {
	l.total++
	if l.size < len(l.entries) {
		l.entries[(l.start+l.size)%len(l.entries)] = v
		l.size++
		return
	}
	l.entries[l.start] = v
	l.start = (l.start + 1) % len(l.entries)
}

// Snapshot copies the retained entries, oldest first.
func (l *Log[T]) Snapshot() []T {
	out := make([]T, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.entries[(l.start+i)%len(l.entries)]
	}
	return out
}

// Last returns the newest entry.
func (l *Log[T]) Last() (T, bool) {
	var zero T
	if l.size == 0 {
		return zero, false
	}
	return l.entries[(l.start+l.size-1)%len(l.entries)], true
}

// Len reports how many entries are retained.
func (l *Log[T]) Len() int { return l.size }

// Cap reports the retention limit.
func (l *Log[T]) Cap() int { return len(l.entries) }

// Total counts every Append, including evicted entries.
func (l *Log[T]) Total() uint64 { return l.total }
