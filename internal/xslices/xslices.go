package xslices

func Filter[T any, S ~[]T](s S, f func(T) bool) (r S) {
	r = make(S, 0, len(s))
	for _, v := range s {
		if f(v) {
			r = append(r, v)
		}
	}
	return r
}

// Indices returns the indices of every element of s for which f
// returns true.
func Indices[T any, S ~[]T](s S, f func(T) bool) (r []int) {
	for i, v := range s {
		if f(v) {
			r = append(r, i)
		}
	}
	return r
}
