package generic

func MapValues[K comparable, V any](maps ...map[K]V) []V {
	var cap int
	for _, m := range maps {
		cap += len(m)
	}

	values := make([]V, 0, cap)

	for _, m := range maps {
		for _, v := range m {
			values = append(values, v)
		}
	}

	return values
}

func MapCopy[K comparable, V any](src, dst map[K]V) {
	for k, v := range src {
		dst[k] = v
	}
}
