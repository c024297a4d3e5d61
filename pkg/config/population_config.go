package config

import (
	"fmt"

	"github.com/decker502/wildlife/pkg/types"
	"gopkg.in/yaml.v3"
)

// PopulationConfigPath 演示场景种群表路径
const PopulationConfigPath = "data/population.yaml"

// Herd 一组同种 NPC 的生成描述
type Herd struct {
	Archetype string  `yaml:"archetype"`
	Species   string  `yaml:"species"`
	Count     int     `yaml:"count"`
	X         float64 `yaml:"x"`
	Z         float64 `yaml:"z"`
	Radius    float64 `yaml:"radius"`
}

// PopulationConfig 种群表
type PopulationConfig struct {
	Herds []Herd `yaml:"herds"`
}

// DefaultPopulationConfig 内置种群：每种原型至少一组
func DefaultPopulationConfig() *PopulationConfig {
	return &PopulationConfig{Herds: []Herd{
		{Archetype: "passive_very_easy", Species: "rabbit", Count: 6, X: -20, Z: 15, Radius: 6},
		{Archetype: "passive_simple", Species: "deer", Count: 5, X: 18, Z: 20, Radius: 6},
		{Archetype: "passive_full", Species: "gazelle", Count: 4, X: -25, Z: -18, Radius: 5},
		{Archetype: "aggressive_1", Species: "hyena", Count: 2, X: 30, Z: -10, Radius: 4},
		{Archetype: "aggressive_2", Species: "bear", Count: 1, X: -35, Z: 35, Radius: 2},
		{Archetype: "aggressive_3", Species: "boar", Count: 2, X: 35, Z: 35, Radius: 4},
		{Archetype: "aggressive_4", Species: "rhino", Count: 1, X: 0, Z: -40, Radius: 2},
		{Archetype: "pack_hunter", Species: "wolf", Count: 4, X: -40, Z: -40, Radius: 5},
		{Archetype: "jumper", Species: "lynx", Count: 2, X: 25, Z: -30, Radius: 8},
		{Archetype: "companion", Species: "dog", Count: 2, X: 3, Z: 3, Radius: 2},
	}}
}

// LoadPopulationConfig 加载种群表
func LoadPopulationConfig(path string) (*PopulationConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read population config: %w", err)
	}
	var cfg PopulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse population config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查原型名与数量
func (c *PopulationConfig) Validate() error {
	for i, h := range c.Herds {
		if _, ok := types.ParseArchetype(h.Archetype); !ok {
			return fmt.Errorf("herd %d: unknown archetype %q", i, h.Archetype)
		}
		if h.Count < 0 {
			return fmt.Errorf("herd %d: negative count %d", i, h.Count)
		}
		if h.Radius < 0 {
			return fmt.Errorf("herd %d: negative radius %f", i, h.Radius)
		}
	}
	return nil
}

// Total NPC 总数
func (c *PopulationConfig) Total() int {
	n := 0
	for _, h := range c.Herds {
		n += h.Count
	}
	return n
}
