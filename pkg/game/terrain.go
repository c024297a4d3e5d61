package game

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/decker502/wildlife/pkg/navmesh"
)

// TerrainConfig 障碍物（岩石）生成参数
type TerrainConfig struct {
	Seed        int64
	Spacing     float64 // 候选点网格间距
	Octaves     int
	Frequency   float64
	Persistence float64
	Threshold   float64 // 归一化噪声高于该值才放置岩石
	MinRadius   float64
	MaxRadius   float64
	ClearRadius float64 // 原点附近保持空旷（玩家出生区）
	Margin      float64 // 距场地边界的最小距离
}

// DefaultTerrainConfig 默认地形参数
func DefaultTerrainConfig() TerrainConfig {
	return TerrainConfig{
		Seed:        42,
		Spacing:     6,
		Octaves:     3,
		Frequency:   0.045,
		Persistence: 0.5,
		Threshold:   0.62,
		MinRadius:   0.8,
		MaxRadius:   2.2,
		ClearRadius: 10,
		Margin:      4,
	}
}

// GenerateObstacles 用分层单纯形噪声在场地内撒岩石
//
// 候选点在 Spacing 网格上抖动，噪声值越高岩石越大；结果只取决于种子。
func GenerateObstacles(field navmesh.FieldConfig, cfg TerrainConfig) []navmesh.Obstacle {
	if cfg.Spacing <= 0 {
		return nil
	}
	noise := opensimplex.NewNormalized(cfg.Seed)
	jitter := rand.New(rand.NewSource(cfg.Seed + 1))

	var out []navmesh.Obstacle
	minX := field.MinX + cfg.Margin
	maxX := field.MinX + field.Width - cfg.Margin
	minZ := field.MinZ + cfg.Margin
	maxZ := field.MinZ + field.Depth - cfg.Margin
	for z := minZ; z <= maxZ; z += cfg.Spacing {
		for x := minX; x <= maxX; x += cfg.Spacing {
			px := x + (jitter.Float64()-0.5)*cfg.Spacing*0.6
			pz := z + (jitter.Float64()-0.5)*cfg.Spacing*0.6
			if math.Hypot(px, pz) < cfg.ClearRadius {
				continue
			}
			v := octaveNoise(noise, px, pz, cfg.Octaves, cfg.Frequency, cfg.Persistence)
			if v < cfg.Threshold {
				continue
			}
			t := (v - cfg.Threshold) / (1 - cfg.Threshold)
			out = append(out, navmesh.Obstacle{
				X:      px,
				Z:      pz,
				Radius: cfg.MinRadius + (cfg.MaxRadius-cfg.MinRadius)*t,
			})
		}
	}
	return out
}

// octaveNoise 多频叠加的分形噪声，结果归一化到 [0, 1]
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	if octaves <= 0 {
		octaves = 1
	}
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
