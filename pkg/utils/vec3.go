package utils

import "math"

// Vec3 三维向量（Y 轴朝上，地面为 XZ 平面）
//
// 行为层的大部分判定都在水平面上进行，带 Flat 后缀的方法忽略 Y 分量。
// 朝向约定：yaw=0 指向 +Z，yaw 增大为俯视顺时针（+Z 转向 +X）。
type Vec3 struct {
	X, Y, Z float64
}

// V3 构造向量
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Forward 世界前方（+Z）
var Forward = Vec3{Z: 1}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) LenSq() float64       { return v.Dot(v) }
func (v Vec3) Len() float64         { return math.Sqrt(v.LenSq()) }

// Flat 投影到水平面（Y=0）
func (v Vec3) Flat() Vec3 { return Vec3{X: v.X, Z: v.Z} }

// FlatLen 水平长度
func (v Vec3) FlatLen() float64 { return math.Hypot(v.X, v.Z) }

// IsZero 长度是否可忽略
func (v Vec3) IsZero() bool { return v.LenSq() < 1e-12 }

// Normalize 归一化，零向量返回零向量
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-9 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// FlatNormalize 水平归一化
func (v Vec3) FlatNormalize() Vec3 {
	return v.Flat().Normalize()
}

// DistFlat 水平距离
func DistFlat(a, b Vec3) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

// DistSqFlat 水平距离平方
func DistSqFlat(a, b Vec3) float64 {
	dx, dz := a.X-b.X, a.Z-b.Z
	return dx*dx + dz*dz
}

// DistSq 三维距离平方
func DistSq(a, b Vec3) float64 {
	return a.Sub(b).LenSq()
}

// LerpVec 线性插值
func LerpVec(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// RotateY 绕 Y 轴旋转（角度制）
func (v Vec3) RotateY(deg float64) Vec3 {
	r := deg * math.Pi / 180
	s, c := math.Sincos(r)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// Yaw 水平方向对应的偏航角（角度制）
func (v Vec3) Yaw() float64 {
	return math.Atan2(v.X, v.Z) * 180 / math.Pi
}

// DirFromYaw 偏航角（角度制）对应的单位方向
func DirFromYaw(deg float64) Vec3 {
	r := deg * math.Pi / 180
	return Vec3{X: math.Sin(r), Z: math.Cos(r)}
}

// NormalizeAngle 将角度规范到 (-180, 180]
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// SignedAngleY 从 from 转到 to 的有符号水平夹角（角度制）
// 正值与 RotateY 的正方向一致
func SignedAngleY(from, to Vec3) float64 {
	if from.Flat().IsZero() || to.Flat().IsZero() {
		return 0
	}
	return NormalizeAngle(to.Yaw() - from.Yaw())
}

// AngleY 水平夹角绝对值（角度制）
func AngleY(from, to Vec3) float64 {
	return math.Abs(SignedAngleY(from, to))
}

// RotateTowardsY 以最大角度 maxDeg 将方向 from 水平转向 to
func RotateTowardsY(from, to Vec3, maxDeg float64) Vec3 {
	if from.Flat().IsZero() {
		return to.FlatNormalize()
	}
	delta := SignedAngleY(from, to)
	if math.Abs(delta) <= maxDeg {
		return to.FlatNormalize()
	}
	if delta < 0 {
		maxDeg = -maxDeg
	}
	return from.FlatNormalize().RotateY(maxDeg)
}

// MoveTowards 以最大步长 maxStep 向目标移动
func MoveTowards(from, to Vec3, maxStep float64) Vec3 {
	d := to.Sub(from)
	l := d.Len()
	if l <= maxStep || l < 1e-9 {
		return to
	}
	return from.Add(d.Scale(maxStep / l))
}

// ClampLen 限制向量长度
func (v Vec3) ClampLen(max float64) Vec3 {
	l := v.Len()
	if l > max && l > 0 {
		return v.Scale(max / l)
	}
	return v
}
