package wad

import "golang.org/x/exp/constraints"

// fits reports whether [start, start+length) lies inside [0, size). The sum is
// computed in int64 so 32-bit directory fields cannot overflow.
func fits[T constraints.Integer](start, length T, size int64) bool {
	s, l := int64(start), int64(length)
	if s < 0 || l < 0 {
		return false
	}
	return s+l <= size
}
