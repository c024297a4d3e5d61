package app

import "github.com/decker502/wildlife/pkg/utils"

// Camera 俯视镜头：世界 X 向右，世界 Z 向下
type Camera struct {
	Center utils.Vec3 // 屏幕中心对应的世界坐标
	Zoom   float64    // 像素/米

	Width, Height int // 逻辑屏幕尺寸
}

// WorldToScreen 世界坐标转屏幕坐标
func (c *Camera) WorldToScreen(p utils.Vec3) (float32, float32) {
	x := float64(c.Width)/2 + (p.X-c.Center.X)*c.Zoom
	y := float64(c.Height)/2 + (p.Z-c.Center.Z)*c.Zoom
	return float32(x), float32(y)
}

// ScreenToWorld 屏幕坐标转地面上的世界坐标（Y = 0）
func (c *Camera) ScreenToWorld(x, y int) utils.Vec3 {
	return utils.V3(
		c.Center.X+(float64(x)-float64(c.Width)/2)/c.Zoom,
		0,
		c.Center.Z+(float64(y)-float64(c.Height)/2)/c.Zoom,
	)
}

// Pan 按屏幕像素平移镜头（拖拽方向与画面移动方向一致）
func (c *Camera) Pan(dx, dy int) {
	c.Center.X -= float64(dx) / c.Zoom
	c.Center.Z -= float64(dy) / c.Zoom
}

// Meters 世界长度转像素
func (c *Camera) Meters(m float64) float32 {
	return float32(m * c.Zoom)
}
