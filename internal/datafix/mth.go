package datafix

import "math"

// RoundToward rounds value up to a multiple of divisor.
func RoundToward(value, divisor int32) int32 {
	return PositiveCeilDiv(value, divisor) * divisor
}

// PositiveCeilDiv divides rounding toward positive infinity.
func PositiveCeilDiv(a, b int32) int32 {
	return -floorDiv(-a, b)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func Clamp(value, lo, hi int32) int32 {
	return min(max(value, lo), hi)
}

func Floor(value float64) int32 {
	return int32(math.Floor(value))
}
