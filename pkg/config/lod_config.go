package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LODConfigPath LOD 配置文件路径
const LODConfigPath = "data/lod.yaml"

// LODConfig LOD 调度配置
//
// 距离分桶：d <= NearRadius 为 Near，<= MidRadius 为 Mid，<= FarRadius 为 Far，其余为 Cull。
type LODConfig struct {
	// EvaluationInterval 分桶重新评估的间隔（秒），与帧率无关
	EvaluationInterval float64 `yaml:"evaluationInterval"`

	NearRadius float64 `yaml:"nearRadius"`
	MidRadius  float64 `yaml:"midRadius"`
	FarRadius  float64 `yaml:"farRadius"`

	Near LODCadence `yaml:"near"`
	Mid  LODCadence `yaml:"mid"`
	Far  LODCadence `yaml:"far"`
}

// LODCadence 单个分桶的思考与导航间隔
type LODCadence struct {
	// ThinkInterval 两次状态机 Update 的最小间隔（秒），0 表示每帧
	ThinkInterval float64 `yaml:"thinkInterval"`

	// NavInterval 两次目的地请求的最小间隔（秒）
	NavInterval float64 `yaml:"navInterval"`
}

// DefaultLODConfig 返回内置 LOD 配置
func DefaultLODConfig() *LODConfig {
	return &LODConfig{
		EvaluationInterval: 0.5,
		NearRadius:         25,
		MidRadius:          50,
		FarRadius:          90,
		Near:               LODCadence{ThinkInterval: 0, NavInterval: 0.2},
		Mid:                LODCadence{ThinkInterval: 0.2, NavInterval: 0.5},
		Far:                LODCadence{ThinkInterval: 0.6, NavInterval: 1.2},
	}
}

// LoadLODConfig 加载 LOD 配置，缺失字段保留内置默认值
func LoadLODConfig(path string) (*LODConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lod config: %w", err)
	}

	cfg := DefaultLODConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse lod config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lod config: %w", err)
	}
	return cfg, nil
}

// Validate 验证配置
func (c *LODConfig) Validate() error {
	if c.EvaluationInterval <= 0 {
		return fmt.Errorf("evaluationInterval must be positive, got %f", c.EvaluationInterval)
	}
	if !(c.NearRadius > 0 && c.NearRadius < c.MidRadius && c.MidRadius < c.FarRadius) {
		return fmt.Errorf("radii must satisfy 0 < near < mid < far, got %f/%f/%f", c.NearRadius, c.MidRadius, c.FarRadius)
	}
	for name, cad := range map[string]LODCadence{"near": c.Near, "mid": c.Mid, "far": c.Far} {
		if cad.ThinkInterval < 0 || cad.NavInterval < 0 {
			return fmt.Errorf("%s intervals must be non-negative", name)
		}
	}
	return nil
}
