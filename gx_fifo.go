package gx3d

// ringFIFO is a fixed capacity first-in first-out ring. It does no locking;
// the command queue serialises access.
type ringFIFO[T any] struct {
	entries []T
	head    int
	count   int
}

func newRingFIFO[T any](capacity int) ringFIFO[T] {
	return ringFIFO[T]{entries: make([]T, capacity)}
}

func (f *ringFIFO[T]) Clear() {
	f.head = 0
	f.count = 0
}

func (f *ringFIFO[T]) Write(v T) bool {
	if f.count == len(f.entries) {
		return false
	}
	f.entries[(f.head+f.count)%len(f.entries)] = v
	f.count++
	return true
}

func (f *ringFIFO[T]) Read() (T, bool) {
	var zero T
	if f.count == 0 {
		return zero, false
	}
	v := f.entries[f.head]
	f.entries[f.head] = zero
	f.head = (f.head + 1) % len(f.entries)
	f.count--
	return v, true
}

func (f *ringFIFO[T]) Peek() (T, bool) {
	if f.count == 0 {
		var zero T
		return zero, false
	}
	return f.entries[f.head], true
}

func (f *ringFIFO[T]) Level() int     { return f.count }
func (f *ringFIFO[T]) Capacity() int  { return len(f.entries) }
func (f *ringFIFO[T]) IsEmpty() bool  { return f.count == 0 }
func (f *ringFIFO[T]) IsFull() bool   { return f.count == len(f.entries) }
func (f *ringFIFO[T]) FreeSlots() int { return len(f.entries) - f.count }
