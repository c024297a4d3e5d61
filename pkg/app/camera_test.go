package app

import (
	"math"
	"testing"

	"github.com/decker502/wildlife/pkg/utils"
)

func TestCameraRoundTrip(t *testing.T) {
	cam := &Camera{Center: utils.V3(10, 0, -5), Zoom: 8, Width: 1280, Height: 720}

	tests := []struct {
		name string
		x, y int
	}{
		{"center", 640, 360},
		{"top left", 0, 0},
		{"bottom right", 1280, 720},
		{"arbitrary", 123, 456},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := cam.ScreenToWorld(tt.x, tt.y)
			sx, sy := cam.WorldToScreen(w)
			if math.Abs(float64(sx)-float64(tt.x)) > 1e-3 || math.Abs(float64(sy)-float64(tt.y)) > 1e-3 {
				t.Errorf("round trip (%d, %d) -> %v -> (%v, %v)", tt.x, tt.y, w, sx, sy)
			}
		})
	}

	if w := cam.ScreenToWorld(640, 360); w != cam.Center {
		t.Errorf("screen center maps to %v, want %v", w, cam.Center)
	}
}

func TestCameraPanFollowsDrag(t *testing.T) {
	cam := &Camera{Zoom: 4, Width: 800, Height: 600}
	before := cam.ScreenToWorld(100, 100)

	// 向右下拖 40 像素后，原先在 (100,100) 的点应出现在 (140,140)
	cam.Pan(40, 40)
	sx, sy := cam.WorldToScreen(before)
	if math.Abs(float64(sx)-140) > 1e-3 || math.Abs(float64(sy)-140) > 1e-3 {
		t.Errorf("dragged point at (%v, %v), want (140, 140)", sx, sy)
	}
	if cam.Meters(2.5) != 10 {
		t.Errorf("Meters(2.5) = %v, want 10", cam.Meters(2.5))
	}
}
