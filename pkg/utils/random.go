package utils

import (
	"math"
	"math/rand"
)

// RandRange 返回 [lo, hi) 内的随机数
func RandRange(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// RandInsideCircle 水平圆内均匀随机点（相对圆心的偏移）
func RandInsideCircle(rng *rand.Rand, radius float64) Vec3 {
	r := radius * math.Sqrt(rng.Float64())
	return DirFromYaw(rng.Float64() * 360).Scale(r)
}

// RandDirection 随机水平单位方向
func RandDirection(rng *rand.Rand) Vec3 {
	return DirFromYaw(rng.Float64() * 360)
}

// Chance 以概率 p 返回 true
func Chance(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}
