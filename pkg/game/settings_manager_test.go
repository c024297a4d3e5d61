package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下打开 gdata 存储
func openTestGdata(t *testing.T, app string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	gm, err := gdata.Open(gdata.Config{AppName: app})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return gm
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()
	if settings == nil {
		t.Fatal("DefaultSettings() returned nil")
	}
	if !settings.ShowLODRings || !settings.ShowPaths || !settings.ShowLabels {
		t.Errorf("overlays default: %+v", settings)
	}
	if settings.ShowTerritories {
		t.Error("ShowTerritories: got true, want false")
	}
	if settings.Zoom != 6 {
		t.Errorf("Zoom: got %v, want 6", settings.Zoom)
	}
	if settings.TimeScale != 1 {
		t.Errorf("TimeScale: got %v, want 1", settings.TimeScale)
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewSettingsManager(nil)
	if err != nil {
		t.Fatalf("NewSettingsManager(nil) error: %v", err)
	}
	if sm.GetSettings() == nil {
		t.Fatal("GetSettings() returned nil in degraded mode")
	}
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should return nil, got: %v", err)
	}

	sm.SetZoom(10)
	if err := sm.Load(); err != nil {
		t.Errorf("Load() in degraded mode should return nil, got: %v", err)
	}
	if sm.GetSettings().Zoom != 6 {
		t.Errorf("After Load() in degraded mode, Zoom: got %v, want 6", sm.GetSettings().Zoom)
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	gm := openTestGdata(t, "test_viewer_settings")

	sm1, err := NewSettingsManager(gm)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}
	sm1.SetZoom(12)
	sm1.SetTimeScale(2)
	sm1.ToggleLODRings()
	sm1.ToggleTerritories()
	sm1.SetFullscreen(true)
	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2, err := NewSettingsManager(gm)
	if err != nil {
		t.Fatalf("NewSettingsManager() error on reload: %v", err)
	}
	s := sm2.GetSettings()
	if s.Zoom != 12 {
		t.Errorf("Loaded Zoom: got %v, want 12", s.Zoom)
	}
	if s.TimeScale != 2 {
		t.Errorf("Loaded TimeScale: got %v, want 2", s.TimeScale)
	}
	if s.ShowLODRings {
		t.Error("Loaded ShowLODRings: got true, want false")
	}
	if !s.ShowTerritories {
		t.Error("Loaded ShowTerritories: got false, want true")
	}
	if !s.Fullscreen {
		t.Error("Loaded Fullscreen: got false, want true")
	}
}

// TestLoadPartialSettingsKeepsDefaults 旧文件缺字段时保留默认值，越界值被限制
func TestLoadPartialSettingsKeepsDefaults(t *testing.T) {
	gm := openTestGdata(t, "test_viewer_settings_partial")
	if err := gm.SaveObjectProp(settingsObject, settingsProperty, []byte("zoom: 500\nshowPaths: false\n")); err != nil {
		t.Fatal(err)
	}

	sm, _ := NewSettingsManager(gm)
	s := sm.GetSettings()
	if s.Zoom != MaxZoom {
		t.Errorf("Zoom: got %v, want clamped %v", s.Zoom, MaxZoom)
	}
	if s.ShowPaths {
		t.Error("ShowPaths: got true, want false")
	}
	if s.TimeScale != 1 || !s.ShowLabels {
		t.Errorf("missing fields lost their defaults: %+v", s)
	}
}

// TestSetZoomAndTimeScaleClamp 测试范围校验
func TestSetZoomAndTimeScaleClamp(t *testing.T) {
	sm, _ := NewSettingsManager(nil)

	tests := []struct {
		name  string
		set   func(float64)
		get   func() float64
		input float64
		want  float64
	}{
		{"zoom normal", sm.SetZoom, func() float64 { return sm.GetSettings().Zoom }, 8, 8},
		{"zoom low", sm.SetZoom, func() float64 { return sm.GetSettings().Zoom }, 0, MinZoom},
		{"zoom high", sm.SetZoom, func() float64 { return sm.GetSettings().Zoom }, 100, MaxZoom},
		{"scale normal", sm.SetTimeScale, func() float64 { return sm.GetSettings().TimeScale }, 0.5, 0.5},
		{"scale low", sm.SetTimeScale, func() float64 { return sm.GetSettings().TimeScale }, -1, MinTimeScale},
		{"scale high", sm.SetTimeScale, func() float64 { return sm.GetSettings().TimeScale }, 9, MaxTimeScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set(tt.input)
			if got := tt.get(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// TestToggles 测试叠加层开关
func TestToggles(t *testing.T) {
	sm, _ := NewSettingsManager(nil)
	s := sm.GetSettings()

	sm.TogglePaths()
	sm.ToggleLabels()
	if s.ShowPaths || s.ShowLabels {
		t.Errorf("toggles did not flip: %+v", s)
	}
	sm.TogglePaths()
	sm.ToggleLabels()
	if !s.ShowPaths || !s.ShowLabels {
		t.Errorf("toggles did not flip back: %+v", s)
	}
}
