// headless_sim 无窗口运行野生动物模拟，输出状态分布，可选把状态切换写入 SQLite
//
// 用法：
//
//	go run ./cmd/headless_sim --seconds 120 --trace trace.db
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/game"
	"github.com/decker502/wildlife/pkg/telemetry"
	"github.com/decker502/wildlife/pkg/utils"
)

const step = 1.0 / 60.0

var (
	seconds     = flag.Float64("seconds", 60, "模拟时长（秒）")
	seed        = flag.Int64("seed", 1, "模拟随机种子")
	terrainSeed = flag.Int64("terrain-seed", 42, "地形生成种子")
	dataDir     = flag.String("data", "data", "配置目录；为空时使用内置配置")
	trace       = flag.String("trace", "", "状态切换记录数据库路径（SQLite）")
	noPlayer    = flag.Bool("no-player", false, "不放置玩家")
	hitEvery    = flag.Float64("hit-every", 5, "每隔多少秒攻击玩家附近的 NPC（0 为关闭）")
	verbose     = flag.Bool("verbose", false, "显示详细日志")
)

// patrol 玩家巡逻路线，依次经过各种群
var patrol = []utils.Vec3{
	utils.V3(0, 0, 0),
	utils.V3(30, 0, 20),
	utils.V3(-30, 0, 25),
	utils.V3(-35, 0, -35),
	utils.V3(20, 0, -30),
	utils.V3(35, 0, 0),
}

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadWorldConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}
	cfg.Seed = *seed
	cfg.Terrain.Seed = *terrainSeed
	cfg.Verbose = *verbose

	world, err := game.NewWorld(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "世界创建失败: %v\n", err)
		os.Exit(1)
	}

	var rec *telemetry.Recorder
	if *trace != "" {
		rec, err = telemetry.Open(*trace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "打开记录数据库失败: %v\n", err)
			os.Exit(1)
		}
		defer rec.Close()
		world.SetTransitionSink(rec)
	}

	if err := world.Populate(); err != nil {
		fmt.Fprintf(os.Stderr, "种群生成失败: %v\n", err)
		os.Exit(1)
	}
	if !*noPlayer {
		world.SpawnPlayer(patrol[0])
	}

	run(world)

	fmt.Printf("模拟 %.0f 秒（%d 帧），NPC %d 个，状态切换 %d 次\n",
		world.Behavior.Now(), world.Tick(), len(world.Agents()), world.Transitions())
	fmt.Printf("回收池：新建 %d，复用 %d，回收 %d\n", world.Pool.Created, world.Pool.Reused, world.Pool.Released)
	printHistogram("当前状态分布", world.StateHistogram())

	if rec == nil {
		return
	}
	if err := rec.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "写入记录失败: %v\n", err)
		os.Exit(1)
	}
	counts, err := rec.StateCounts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "查询记录失败: %v\n", err)
		os.Exit(1)
	}
	hist := make(map[string]int, len(counts))
	for _, c := range counts {
		hist[c.State] = c.Count
	}
	printHistogram(fmt.Sprintf("进入各状态的次数（会话 %s，%d 条）", rec.Session(), rec.Written()), hist)
}

// run 按固定步长推进；玩家沿巡逻路线移动并定期攻击附近的 NPC
func run(world *game.World) {
	frames := int(*seconds / step)
	hitFrames := int(*hitEvery / step)
	waypoint := 0
	for i := 0; i < frames; i++ {
		if p, ok := world.PlayerPosition(); ok {
			if utils.DistFlat(p, patrol[waypoint]) < 1 {
				waypoint = (waypoint + 1) % len(patrol)
			}
			if i%30 == 0 {
				world.MovePlayerTo(patrol[waypoint])
			}
			if hitFrames > 0 && i > 0 && i%hitFrames == 0 {
				if id, ok := world.HitNearest(6, 25); ok {
					log.Printf("[headless_sim] 攻击实体 %d", id)
				}
			}
		}
		world.Update(step)
	}
}

func loadWorldConfig() (game.WorldConfig, error) {
	cfg := game.DefaultWorldConfig()
	if *dataDir == "" {
		return cfg, nil
	}
	archetypes, err := config.LoadArchetypeConfig(filepath.Join(*dataDir, "archetypes.yaml"))
	if err != nil {
		return cfg, err
	}
	lod, err := config.LoadLODConfig(filepath.Join(*dataDir, "lod.yaml"))
	if err != nil {
		return cfg, err
	}
	population, err := config.LoadPopulationConfig(filepath.Join(*dataDir, "population.yaml"))
	if err != nil {
		return cfg, err
	}
	cfg.Archetypes = archetypes
	cfg.LOD = lod
	cfg.Population = population
	return cfg, nil
}

func printHistogram(title string, hist map[string]int) {
	names := make([]string, 0, len(hist))
	for name := range hist {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if hist[names[i]] != hist[names[j]] {
			return hist[names[i]] > hist[names[j]]
		}
		return names[i] < names[j]
	})
	fmt.Println(title + ":")
	for _, name := range names {
		fmt.Printf("  %-18s %5d\n", name, hist[name])
	}
}
