// Package app 提供野生动物行为调试视图的核心包装器
//
// 该包将视图初始化逻辑从 main 包提取出来；main.go 负责加载配置后调用 NewApp()。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/game"
	"github.com/decker502/wildlife/pkg/utils"
)

const (
	// ScreenWidth / ScreenHeight 逻辑屏幕尺寸
	ScreenWidth  = 1280
	ScreenHeight = 720

	// FixedStep 模拟固定步长
	FixedStep = 1.0 / 60.0

	// maxStepsPerFrame 高倍速时每帧最多推进的步数
	maxStepsPerFrame = 8

	// DebugHitRadius / DebugHitDamage K 键调试攻击参数
	DebugHitRadius = 4.0
	DebugHitDamage = 25.0
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// AppName gdata 存储使用的应用名
	AppName string
	// World 世界参数（配置已加载）
	World game.WorldConfig
}

// App 是调试视图的核心包装器，实现 ebiten.Game 接口
type App struct {
	world    *game.World
	settings *game.SettingsManager
	camera   *Camera
	drag     *DragManager

	paused      bool
	followCam   bool
	selected    ecs.EntityID
	accumulator float64
	verbose     bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建世界、生成种群并放置玩家
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}
	if cfg.AppName == "" {
		cfg.AppName = "wildlife"
	}
	cfg.World.Verbose = cfg.Verbose

	world, err := game.NewWorld(cfg.World)
	if err != nil {
		return nil, fmt.Errorf("世界创建失败: %w", err)
	}
	if err := world.Populate(); err != nil {
		return nil, fmt.Errorf("种群生成失败: %w", err)
	}
	world.SpawnPlayer(utils.V3(0, 0, 0))

	settings := game.OpenSettingsManager(cfg.AppName)
	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	log.Printf("[App] 初始化完成：NPC %d 个", len(world.Agents()))
	return &App{
		world:     world,
		settings:  settings,
		camera:    &Camera{Zoom: settings.GetSettings().Zoom, Width: ScreenWidth, Height: ScreenHeight},
		drag:      NewDragManager(),
		followCam: true,
		verbose:   cfg.Verbose,
	}, nil
}

// Update 处理输入并按固定步长推进世界
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	a.handleKeys()
	a.handlePointer()

	if a.paused {
		return nil
	}
	a.accumulator += FixedStep * a.settings.GetSettings().TimeScale
	steps := 0
	for a.accumulator >= FixedStep && steps < maxStepsPerFrame {
		a.world.Update(FixedStep)
		a.accumulator -= FixedStep
		steps++
	}
	if steps == maxStepsPerFrame {
		a.accumulator = 0
	}

	if a.followCam {
		if p, ok := a.world.PlayerPosition(); ok {
			a.camera.Center = p.Flat()
		}
	}
	return nil
}

func (a *App) handleKeys() {
	sm := a.settings

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			// 退出全屏后等待几帧再设置窗口大小
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			sm.SetFullscreen(false)
		} else {
			ebiten.SetFullscreen(true)
			sm.SetFullscreen(true)
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		a.paused = !a.paused
		log.Printf("[App] paused=%v", a.paused)
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		sm.ToggleLODRings()
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		sm.ToggleTerritories()
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		sm.TogglePaths()
	case inpututil.IsKeyJustPressed(ebiten.KeyF4):
		sm.ToggleLabels()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		sm.SetZoom(sm.GetSettings().Zoom * 1.25)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		sm.SetZoom(sm.GetSettings().Zoom / 1.25)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		sm.SetTimeScale(sm.GetSettings().TimeScale * 2)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		sm.SetTimeScale(sm.GetSettings().TimeScale / 2)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		a.followCam = !a.followCam
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		if id, ok := a.world.HitNearest(DebugHitRadius, DebugHitDamage); ok {
			a.selected = id
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if _, ok := a.world.Player(); ok {
			a.world.RemovePlayer()
		} else {
			a.world.SpawnPlayer(a.camera.Center.Flat())
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		if err := sm.Save(); err != nil {
			log.Printf("[App] 保存设置失败: %v", err)
		}
	}
	a.camera.Zoom = sm.GetSettings().Zoom
}

func (a *App) handlePointer() {
	a.drag.UpdateFromPointer()
	if a.drag.IsDragging() {
		info := a.drag.GetInfo()
		a.followCam = false
		a.camera.Pan(info.DeltaX, info.DeltaY)
	}
	if ok, x, y := a.drag.JustClicked(); ok {
		a.selected = a.pick(a.camera.ScreenToWorld(x, y))
	}
	if ok, x, y := IsSecondaryJustClicked(); ok {
		a.world.MovePlayerTo(a.camera.ScreenToWorld(x, y))
	}
}

// pick 选中点击位置 1.5 米内最近的 NPC
func (a *App) pick(p utils.Vec3) ecs.EntityID {
	best := ecs.InvalidEntity
	bestDist := 1.5
	for _, id := range a.world.Agents() {
		pos, ok := a.agentPosition(id)
		if !ok {
			continue
		}
		if d := utils.DistFlat(pos, p); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

// Draw 绘制调试画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 86, G: 122, B: 70, A: 255})
	a.drawField(screen)
	a.drawOverlays(screen)
	a.drawAgents(screen)
	a.drawPlayer(screen)
	a.drawHUD(screen)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// World 返回模拟世界
func (a *App) World() *game.World {
	return a.world
}

// Close 保存视图设置
// 用于在窗口关闭时持久化
func (a *App) Close() error {
	return a.settings.Save()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
