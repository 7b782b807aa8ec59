// Package mapper converts slices between record models, domain entities
// and DTOs.
package mapper

import "fmt"

// MapSlice converts every element. A nil input stays nil.
func MapSlice[T, R any](in []T, convert func(T) R) []R {
	if in == nil {
		return nil
	}
	out := make([]R, len(in))
	for i := range in {
		out[i] = convert(in[i])
	}
	return out
}

// MapSliceWithError converts every element and stops at the first failure,
// reporting the element's position.
func MapSliceWithError[T, R any](in []T, convert func(T) (R, error)) ([]R, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]R, len(in))
	for i := range in {
		v, err := convert(in[i])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Filter returns the elements keep accepts, in order.
func Filter[T any](in []T, keep func(T) bool) []T {
	var out []T
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
