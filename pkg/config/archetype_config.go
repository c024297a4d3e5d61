package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/decker502/wildlife/pkg/embedded"
	"github.com/decker502/wildlife/pkg/types"
	"gopkg.in/yaml.v3"
)

// ArchetypeConfigPath 原型参数配置文件路径
const ArchetypeConfigPath = "data/archetypes.yaml"

// ArchetypeConfig 按原型组织的参数表
//
// 文件结构:
//
//	defaults:        # 覆盖内置默认值的公共参数
//	  walkSpeed: 1.5
//	archetypes:
//	  aggressive_3:  # 只需列出与 defaults 不同的字段
//	    chargeSpeed: 12
//
// 解析时先把 defaults 叠加到内置默认值上，再把每个原型的部分覆盖叠加到 defaults 的副本上。
type ArchetypeConfig struct {
	Defaults   AgentTuning
	Archetypes map[types.Archetype]AgentTuning
}

// archetypeFile YAML 文件的原始结构，节点延迟解码以支持部分覆盖
type archetypeFile struct {
	Defaults   yaml.Node            `yaml:"defaults"`
	Archetypes map[string]yaml.Node `yaml:"archetypes"`
}

// DefaultArchetypeConfig 返回内置配置：所有原型共享默认参数
func DefaultArchetypeConfig() *ArchetypeConfig {
	cfg := &ArchetypeConfig{
		Defaults:   DefaultAgentTuning(),
		Archetypes: make(map[types.Archetype]AgentTuning),
	}
	for _, a := range types.AllArchetypes() {
		cfg.Archetypes[a] = cfg.Defaults.Clone()
	}
	return cfg
}

// LoadArchetypeConfig 加载原型参数配置
//
// 路径以 "data/" 开头且嵌入资源已初始化时从嵌入资源读取，否则从文件系统读取。
func LoadArchetypeConfig(path string) (*ArchetypeConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archetype config: %w", err)
	}
	return ParseArchetypeConfig(data)
}

// ParseArchetypeConfig 从 YAML 字节解析原型参数配置
func ParseArchetypeConfig(data []byte) (*ArchetypeConfig, error) {
	var file archetypeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse archetype config: %w", err)
	}

	defaults := DefaultAgentTuning()
	if !file.Defaults.IsZero() {
		if err := file.Defaults.Decode(&defaults); err != nil {
			return nil, fmt.Errorf("failed to decode defaults: %w", err)
		}
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid defaults: %w", err)
	}

	cfg := &ArchetypeConfig{
		Defaults:   defaults,
		Archetypes: make(map[types.Archetype]AgentTuning),
	}
	for _, a := range types.AllArchetypes() {
		cfg.Archetypes[a] = defaults.Clone()
	}

	for name, node := range file.Archetypes {
		archetype, ok := types.ParseArchetype(name)
		if !ok {
			return nil, fmt.Errorf("unknown archetype %q", name)
		}
		tuning := defaults.Clone()
		if err := node.Decode(&tuning); err != nil {
			return nil, fmt.Errorf("failed to decode archetype %s: %w", name, err)
		}
		if err := tuning.Validate(); err != nil {
			return nil, fmt.Errorf("invalid archetype %s: %w", name, err)
		}
		cfg.Archetypes[archetype] = tuning
	}

	return cfg, nil
}

// For 返回指定原型的参数副本，未配置的原型返回 defaults
func (c *ArchetypeConfig) For(a types.Archetype) AgentTuning {
	if t, ok := c.Archetypes[a]; ok {
		return t.Clone()
	}
	return c.Defaults.Clone()
}

// Clone 深拷贝（切片字段独立）
func (t AgentTuning) Clone() AgentTuning {
	t.FootSearchRadii = slices.Clone(t.FootSearchRadii)
	return t
}

func readConfigFile(path string) ([]byte, error) {
	if embedded.IsInitialized() && embedded.Exists(path) {
		return embedded.ReadFile(path)
	}
	return os.ReadFile(path)
}
