package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	// 缩放范围（像素/米）
	MinZoom = 2.0
	MaxZoom = 24.0

	// 时间倍率范围
	MinTimeScale = 0.25
	MaxTimeScale = 4.0
)

// ViewerSettings 调试视图设置
type ViewerSettings struct {
	// 叠加层
	ShowLODRings    bool `yaml:"showLodRings"`    // 玩家周围的 LOD 距离圈
	ShowTerritories bool `yaml:"showTerritories"` // 领地与家的范围
	ShowPaths       bool `yaml:"showPaths"`       // 导航路径
	ShowLabels      bool `yaml:"showLabels"`      // 状态名标签

	// 视图
	Zoom      float64 `yaml:"zoom"`      // 像素/米
	TimeScale float64 `yaml:"timeScale"` // 模拟时间倍率

	// 显示设置
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
}

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{
		ShowLODRings:    true,
		ShowTerritories: false,
		ShowPaths:       true,
		ShowLabels:      true,
		Zoom:            6,
		TimeScale:       1,
		Fullscreen:      false,
	}
}

// SettingsManager 设置管理器
// 负责视图设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *ViewerSettings
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	// 加载失败不是致命错误，使用默认设置
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// OpenSettingsManager 打开应用的 gdata 存储并创建设置管理器
// gdata 不可用时退化为仅内存设置
func OpenSettingsManager(appName string) *SettingsManager {
	gm, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[SettingsManager] Warning: gdata unavailable: %v (settings will not persist)", err)
		gm = nil
	}
	sm, _ := NewSettingsManager(gm)
	return sm
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 先填默认值，旧版本文件缺少的字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.Zoom = clamp(loaded.Zoom, MinZoom, MaxZoom)
	loaded.TimeScale = clamp(loaded.TimeScale, MinTimeScale, MaxTimeScale)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// SetZoom 设置缩放，限制在 MinZoom ~ MaxZoom
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetZoom(zoom float64) {
	sm.settings.Zoom = clamp(zoom, MinZoom, MaxZoom)
}

// SetTimeScale 设置时间倍率，限制在 MinTimeScale ~ MaxTimeScale
func (sm *SettingsManager) SetTimeScale(scale float64) {
	sm.settings.TimeScale = clamp(scale, MinTimeScale, MaxTimeScale)
}

// ToggleLODRings 切换 LOD 距离圈
func (sm *SettingsManager) ToggleLODRings() {
	sm.settings.ShowLODRings = !sm.settings.ShowLODRings
}

// ToggleTerritories 切换领地范围
func (sm *SettingsManager) ToggleTerritories() {
	sm.settings.ShowTerritories = !sm.settings.ShowTerritories
}

// TogglePaths 切换导航路径
func (sm *SettingsManager) TogglePaths() {
	sm.settings.ShowPaths = !sm.settings.ShowPaths
}

// ToggleLabels 切换状态标签
func (sm *SettingsManager) ToggleLabels() {
	sm.settings.ShowLabels = !sm.settings.ShowLabels
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
