package utils

import "math"

// 缓动与插值辅助函数
// 所有缓动函数接受进度 t ∈ [0, 1]，返回值 ∈ [0, 1]

// EaseOutQuad 二次方缓出
// 公式：f(t) = 1 - (1-t)²
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// EaseInOutCubic 三次方缓入缓出
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Lerp 线性插值
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp 将 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 将 v 限制在 [0, 1]
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// InverseLerp 返回 v 在 [a, b] 中的比例（已截断到 [0,1]）
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

// ExpSmoothing 帧率无关的指数平滑系数
// rate 越大收敛越快
func ExpSmoothing(rate, dt float64) float64 {
	return 1 - math.Exp(-rate*dt)
}

// ParabolicArc 抛物线插值：水平线性，竖直方向叠加 4h·t(1-t)
func ParabolicArc(from, to Vec3, height, t float64) Vec3 {
	t = Clamp01(t)
	p := LerpVec(from, to, t)
	p.Y += 4 * height * t * (1 - t)
	return p
}
