// Package mathx holds small generic numeric helpers shared by drivers
// and config.
package mathx

import "golang.org/x/exp/constraints"

// Horner evaluates c[0] + c[1]x + c[2]x² + ... at x.
func Horner[T constraints.Float](x T, c ...T) T {
	var y T
	for i := len(c) - 1; i >= 0; i-- {
		y = y*x + c[i]
	}
	return y
}

// Between reports lo <= v && v <= hi.
func Between[T constraints.Ordered](v, lo, hi T) bool {
	return v >= lo && v <= hi
}
