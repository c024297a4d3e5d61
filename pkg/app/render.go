package app

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/navmesh"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

var (
	colorBoundary  = color.RGBA{R: 40, G: 60, B: 35, A: 255}
	colorRock      = color.RGBA{R: 120, G: 116, B: 108, A: 255}
	colorRockEdge  = color.RGBA{R: 70, G: 68, B: 64, A: 255}
	colorPlayer    = color.RGBA{R: 240, G: 240, B: 90, A: 255}
	colorTarget    = color.RGBA{R: 240, G: 240, B: 90, A: 120}
	colorPath      = color.RGBA{R: 255, G: 255, B: 255, A: 90}
	colorHome      = color.RGBA{R: 120, G: 200, B: 255, A: 110}
	colorTether    = color.RGBA{R: 255, G: 120, B: 90, A: 70}
	colorDead      = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	colorSelection = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorHUDBack   = color.RGBA{A: 160}

	lodRingColors = [...]color.RGBA{
		{R: 120, G: 255, B: 120, A: 90},
		{R: 255, G: 220, B: 90, A: 70},
		{R: 255, G: 120, B: 90, A: 60},
	}

	archetypeColors = map[types.Archetype]color.RGBA{
		types.ArchetypePassiveVeryEasy: {R: 200, G: 230, B: 200, A: 255},
		types.ArchetypePassiveSimple:   {R: 170, G: 220, B: 140, A: 255},
		types.ArchetypePassiveFull:     {R: 120, G: 200, B: 110, A: 255},
		types.ArchetypeAggressive1:     {R: 230, G: 120, B: 80, A: 255},
		types.ArchetypeAggressive2:     {R: 220, G: 80, B: 80, A: 255},
		types.ArchetypeAggressive3:     {R: 170, G: 60, B: 60, A: 255},
		types.ArchetypeAggressive4:     {R: 150, G: 80, B: 160, A: 255},
		types.ArchetypeCompanion:       {R: 90, G: 160, B: 240, A: 255},
		types.ArchetypePackHunter:      {R: 140, G: 140, B: 150, A: 255},
		types.ArchetypeJumper:          {R: 240, G: 170, B: 60, A: 255},
	}
)

func (a *App) agentPosition(id ecs.EntityID) (utils.Vec3, bool) {
	tr, ok := ecs.GetComponent[*components.TransformComponent](a.world.EntityManager, id)
	if !ok {
		return utils.Vec3{}, false
	}
	return tr.Position, true
}

func (a *App) drawField(screen *ebiten.Image) {
	cam := a.camera
	field := a.world.Mesh.Config()
	x0, y0 := cam.WorldToScreen(utils.V3(field.MinX, 0, field.MinZ))
	vector.StrokeRect(screen, x0, y0, cam.Meters(field.Width), cam.Meters(field.Depth), 3, colorBoundary, false)

	for _, ob := range a.world.Mesh.Obstacles() {
		cx, cy := cam.WorldToScreen(utils.V3(ob.X, 0, ob.Z))
		r := cam.Meters(ob.Radius)
		vector.DrawFilledCircle(screen, cx, cy, r, colorRock, true)
		vector.StrokeCircle(screen, cx, cy, r, 1.5, colorRockEdge, true)
	}
}

func (a *App) drawOverlays(screen *ebiten.Image) {
	cam := a.camera
	s := a.settings.GetSettings()

	if s.ShowLODRings {
		if p, ok := a.world.PlayerPosition(); ok {
			lod := a.world.LOD.Config()
			cx, cy := cam.WorldToScreen(p)
			for i, r := range []float64{lod.NearRadius, lod.MidRadius, lod.FarRadius} {
				vector.StrokeCircle(screen, cx, cy, cam.Meters(r), 1, lodRingColors[i], true)
			}
		}
	}

	for _, id := range a.world.Agents() {
		agent, ok := ecs.GetComponent[*components.AgentComponent](a.world.EntityManager, id)
		if !ok {
			continue
		}
		if s.ShowTerritories {
			hx, hy := cam.WorldToScreen(agent.SpawnOrigin)
			vector.StrokeCircle(screen, hx, hy, cam.Meters(agent.Tuning.HomeRadius), 1, colorHome, true)
			if agent.Archetype.IsAggressive() {
				vector.StrokeCircle(screen, hx, hy, cam.Meters(agent.Tuning.TetherDistance), 1, colorTether, true)
			}
		}
		if s.ShowPaths {
			a.drawPath(screen, id)
		}
	}
}

func (a *App) drawPath(screen *ebiten.Image, id ecs.EntityID) {
	nav, ok := ecs.GetComponent[*components.NavAgentComponent](a.world.EntityManager, id)
	if !ok || !nav.Attached {
		return
	}
	fa, ok := nav.Agent.(*navmesh.FieldAgent)
	if !ok || !fa.HasPath() {
		return
	}
	pos, ok := a.agentPosition(id)
	if !ok {
		return
	}
	px, py := a.camera.WorldToScreen(pos)
	for _, wp := range fa.Path() {
		x, y := a.camera.WorldToScreen(wp)
		vector.StrokeLine(screen, px, py, x, y, 1, colorPath, true)
		px, py = x, y
	}
}

func (a *App) drawAgents(screen *ebiten.Image) {
	cam := a.camera
	em := a.world.EntityManager
	showLabels := a.settings.GetSettings().ShowLabels

	for _, id := range a.world.Agents() {
		agent, _ := ecs.GetComponent[*components.AgentComponent](em, id)
		tr, ok := ecs.GetComponent[*components.TransformComponent](em, id)
		if agent == nil || !ok {
			continue
		}
		clr, ok := archetypeColors[agent.Archetype]
		if !ok {
			clr = colorSelection
		}
		if hc, ok := ecs.GetComponent[*components.HealthComponent](em, id); ok && hc.IsDead {
			clr = colorDead
		}
		if fl, ok := ecs.GetComponent[*components.FlashEffectComponent](em, id); ok && fl.IsActive {
			clr = blend(clr, colorSelection, fl.Intensity)
		}

		// 高于地面（栖息/跳跃）的 NPC 画大一些
		radius := 0.45 + tr.Position.Y*0.15
		cx, cy := cam.WorldToScreen(tr.Position)
		vector.DrawFilledCircle(screen, cx, cy, cam.Meters(radius), clr, true)
		fx, fy := cam.WorldToScreen(tr.Position.Add(tr.Forward.Scale(radius + 0.4)))
		vector.StrokeLine(screen, cx, cy, fx, fy, 2, clr, true)

		if id == a.selected {
			vector.StrokeCircle(screen, cx, cy, cam.Meters(radius)+4, 2, colorSelection, true)
		}
		if showLabels {
			ebitenutil.DebugPrintAt(screen, a.world.Behavior.StateName(id), int(cx)+6, int(cy)-18)
		}
	}
}

func (a *App) drawPlayer(screen *ebiten.Image) {
	id, ok := a.world.Player()
	if !ok {
		return
	}
	p, ok := a.world.PlayerPosition()
	if !ok {
		return
	}
	cam := a.camera
	cx, cy := cam.WorldToScreen(p)
	half := cam.Meters(0.4)
	vector.DrawFilledRect(screen, cx-half, cy-half, half*2, half*2, colorPlayer, false)

	if pc, ok := ecs.GetComponent[*components.PlayerComponent](a.world.EntityManager, id); ok && pc.MoveTarget != nil {
		tx, ty := cam.WorldToScreen(*pc.MoveTarget)
		vector.StrokeLine(screen, cx, cy, tx, ty, 1, colorTarget, true)
		vector.StrokeCircle(screen, tx, ty, 4, 1, colorTarget, true)
	}
}

func (a *App) drawHUD(screen *ebiten.Image) {
	s := a.settings.GetSettings()
	var b strings.Builder
	fmt.Fprintf(&b, "t=%.1fs  tick=%d  npc=%d  transitions=%d\n",
		a.world.Behavior.Now(), a.world.Tick(), len(a.world.Agents()), a.world.Transitions())
	fmt.Fprintf(&b, "speed x%.2f  zoom %.1f  ", s.TimeScale, s.Zoom)
	if a.paused {
		b.WriteString("[PAUSED]")
	}
	b.WriteString("\n\n")

	hist := a.world.StateHistogram()
	names := make([]string, 0, len(hist))
	for name := range hist {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%-16s %3d\n", name, hist[name])
	}

	if a.selected != ecs.InvalidEntity {
		b.WriteString("\n")
		b.WriteString(a.describe(a.selected))
	}

	b.WriteString("\nRMB move  LMB select/drag  Space pause  K hit  P player\n")
	b.WriteString("F1 lod  F2 territory  F3 paths  F4 labels  +/- zoom  [/] speed  C follow  S save")

	text := b.String()
	lines := strings.Count(text, "\n") + 1
	vector.DrawFilledRect(screen, 4, 4, 380, float32(lines*16+8), colorHUDBack, false)
	ebitenutil.DebugPrintAt(screen, text, 10, 8)
}

// describe 选中 NPC 的详细信息
func (a *App) describe(id ecs.EntityID) string {
	em := a.world.EntityManager
	agent, ok := ecs.GetComponent[*components.AgentComponent](em, id)
	if !ok || agent.Despawned {
		a.selected = ecs.InvalidEntity
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s (%s)\n", id, agent.Species, agent.Archetype)
	fmt.Fprintf(&b, "state  %s\n", a.world.Behavior.StateName(id))
	if ac, ok := ecs.GetComponent[*components.AnimationCommandComponent](em, id); ok {
		fmt.Fprintf(&b, "anim   %s (%.1fs ago)\n", ac.Cue, a.world.Behavior.Now()-ac.Timestamp)
	}
	if hc, ok := ecs.GetComponent[*components.HealthComponent](em, id); ok {
		fmt.Fprintf(&b, "health %.0f/%.0f\n", hc.CurrentHealth, hc.MaxHealth)
	}
	if lod, ok := ecs.GetComponent[*components.LODComponent](em, id); ok {
		fmt.Fprintf(&b, "lod    %s\n", lod.Bucket)
	}
	if st, ok := ecs.GetComponent[*components.StuckComponent](em, id); ok {
		fmt.Fprintf(&b, "stuck  %.1fs  recoveries %d\n", st.StuckTime, st.Recoveries)
	}
	return b.String()
}

func blend(from, to color.RGBA, t float64) color.RGBA {
	t = utils.Clamp01(t)
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.RGBA{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: from.A}
}
