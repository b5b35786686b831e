package math

import "golang.org/x/exp/constraints"

// Clamp returns f limited to [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Saturate clamps a floating point value to [0, 1].
func Saturate[T constraints.Float](f T) T {
	return Clamp(f, 0, 1)
}

// AlignUp rounds n up to the next multiple of align, which must be a power of two.
func AlignUp[T constraints.Unsigned](n, align T) T {
	if align == 0 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}
