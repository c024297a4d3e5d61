package utils

import (
	"math"
	"testing"
)

// TestEaseOutQuad 测试二次方缓出函数
func TestEaseOutQuad(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"中点", 0.5, 0.75},
		{"终点", 1.0, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := EaseOutQuad(tt.input); math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseOutQuad(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

// TestInverseLerp 测试反向插值及截断
func TestInverseLerp(t *testing.T) {
	tests := []struct {
		a, b, v, want float64
	}{
		{0, 10, 5, 0.5},
		{0, 10, -1, 0},
		{0, 10, 11, 1},
		{3, 3, 3, 0},
	}
	for _, tt := range tests {
		if got := InverseLerp(tt.a, tt.b, tt.v); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("InverseLerp(%v,%v,%v) = %v, 期望 %v", tt.a, tt.b, tt.v, got, tt.want)
		}
	}
}

// TestExpSmoothing 平滑系数应在 (0,1) 内且随 dt 单调
func TestExpSmoothing(t *testing.T) {
	a := ExpSmoothing(5, 1.0/60)
	b := ExpSmoothing(5, 1.0/30)
	if a <= 0 || a >= 1 || b <= a {
		t.Errorf("unexpected smoothing factors: %v %v", a, b)
	}
}
