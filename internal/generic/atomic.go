package generic

import (
	"sync/atomic"
)

// Atomic is the same as atomic.Value with additional type safety. Unlike
// atomic.Value, loading a value that was never stored returns the zero value.
type Atomic[T any] struct {
	value atomic.Pointer[T]
}

func (v *Atomic[T]) Load() T {
	if p := v.value.Load(); p != nil {
		return *p
	}

	var zero T

	return zero
}

func (v *Atomic[T]) Store(value T) {
	v.value.Store(&value)
}

// Swap stores the new value and returns the previous one.
func (v *Atomic[T]) Swap(value T) T {
	if p := v.value.Swap(&value); p != nil {
		return *p
	}

	var zero T

	return zero
}
