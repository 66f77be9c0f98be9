package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// MoveToward steps current toward target by at most maxDelta and lands
// exactly on target once within range, so ramps terminate instead of
// oscillating around the goal.
func MoveToward(current, target, maxDelta float64) float64 {
	if math.Abs(target-current) <= maxDelta {
		return target
	}
	if target > current {
		return current + maxDelta
	}
	return current - maxDelta
}

func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Approx reports whether a and b are within epsilon of each other.
func Approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}
