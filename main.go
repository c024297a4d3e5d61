package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/wildlife/pkg/app"
	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/embedded"
	"github.com/decker502/wildlife/pkg/game"
)

func main() {
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	seed := flag.Int64("seed", 1, "模拟随机种子")
	terrainSeed := flag.Int64("terrain-seed", 42, "地形生成种子")
	noRespawn := flag.Bool("no-respawn", false, "死亡的 NPC 不再重生")
	flag.Parse()

	// 初始化嵌入的数据文件（配置读取优先使用嵌入数据）
	embedded.Init(dataFS)

	worldCfg, err := loadWorldConfig(*seed, *terrainSeed)
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	worldCfg.Respawn = !*noRespawn

	a, err := app.NewApp(app.Config{
		Verbose: *verbose,
		AppName: "wildlife",
		World:   worldCfg,
	})
	if err != nil {
		log.Fatalf("应用初始化失败: %v", err)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Wildlife Behavior Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(a); err != nil {
		log.Fatal(err)
	}
	if err := a.Close(); err != nil {
		log.Printf("[main] 保存设置失败: %v", err)
	}
}

// loadWorldConfig 从 data/ 加载原型、LOD 与种群配置
func loadWorldConfig(seed, terrainSeed int64) (game.WorldConfig, error) {
	cfg := game.DefaultWorldConfig()
	cfg.Seed = seed
	cfg.Terrain.Seed = terrainSeed

	archetypes, err := config.LoadArchetypeConfig(config.ArchetypeConfigPath)
	if err != nil {
		return cfg, err
	}
	lod, err := config.LoadLODConfig(config.LODConfigPath)
	if err != nil {
		return cfg, err
	}
	population, err := config.LoadPopulationConfig(config.PopulationConfigPath)
	if err != nil {
		return cfg, err
	}
	cfg.Archetypes = archetypes
	cfg.LOD = lod
	cfg.Population = population
	return cfg, nil
}
