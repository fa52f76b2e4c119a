package set

// Set is an unordered collection of unique values.
type Set[T comparable] map[T]struct{}

func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, val := range vals {
		s.Add(val)
	}

	return s
}

func (s Set[T]) Add(vals ...T) {
	for _, val := range vals {
		s[val] = struct{}{}
	}
}

func (s Set[T]) Remove(val T) {
	delete(s, val)
}

func (s Set[T]) Has(val T) bool {
	_, ok := s[val]
	return ok
}

func (s Set[T]) Len() int {
	return len(s)
}

// Values returns the values in no particular order.
func (s Set[T]) Values() []T {
	vals := make([]T, 0, len(s))
	for val := range s {
		vals = append(vals, val)
	}

	return vals
}

// Union returns a new set with the values of both sets.
func (s Set[T]) Union(other Set[T]) Set[T] {
	res := make(Set[T], len(s)+len(other))

	for val := range s {
		res.Add(val)
	}

	for val := range other {
		res.Add(val)
	}

	return res
}

// Intersect returns a new set with the values present in both sets.
func (s Set[T]) Intersect(other Set[T]) Set[T] {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}

	res := make(Set[T], len(small))

	for val := range small {
		if large.Has(val) {
			res.Add(val)
		}
	}

	return res
}

// Filter returns the values of vals that are not in the set, preserving
// their order.
func (s Set[T]) Filter(vals []T) []T {
	res := make([]T, 0)

	for _, val := range vals {
		if !s.Has(val) {
			res = append(res, val)
		}
	}

	return res
}

func (s Set[T]) Equals(other Set[T]) bool {
	if len(s) != len(other) {
		return false
	}

	for val := range s {
		if !other.Has(val) {
			return false
		}
	}

	return true
}
