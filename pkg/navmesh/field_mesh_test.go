package navmesh

import (
	"math"
	"testing"

	"github.com/decker502/wildlife/pkg/utils"
)

func smallConfig() FieldConfig {
	return FieldConfig{
		MinX: -10, MinZ: -10, Width: 20, Depth: 20,
		CellSize: 0.5, AgentRadius: 0, EdgeSearch: 6, MaxStepHeight: 0.3,
	}
}

func TestSamplePosition(t *testing.T) {
	m := NewFieldMesh(smallConfig(), []Obstacle{{X: 0, Z: 0, Radius: 2}})

	tests := []struct {
		name    string
		p       utils.Vec3
		maxDist float64
		ok      bool
	}{
		{"open ground", utils.V3(5, 0, 5), 0.5, true},
		{"inside obstacle, small radius", utils.V3(0, 0, 0), 0.5, false},
		{"inside obstacle, large radius", utils.V3(0, 0, 0), 3, true},
		{"outside field", utils.V3(30, 0, 0), 1, false},
		{"high above ground", utils.V3(5, 4, 5), 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := m.SamplePosition(tt.p, tt.maxDist)
			if ok != tt.ok {
				t.Fatalf("SamplePosition(%+v, %v) ok = %v, want %v", tt.p, tt.maxDist, ok, tt.ok)
			}
			if ok && !m.IsWalkable(q) {
				t.Errorf("sampled point %+v is not walkable", q)
			}
		})
	}
}

func TestSampledPointNextToObstacleIsPathable(t *testing.T) {
	m := NewFieldMesh(smallConfig(), []Obstacle{{X: 0, Z: 0, Radius: 2}})

	q, ok := m.SamplePosition(utils.V3(0, 0, 0), 3)
	if !ok {
		t.Fatal("expected a walkable point within 3m of the rock center")
	}
	if !m.OnMesh(q) {
		t.Fatalf("sampled point %+v is not on the mesh", q)
	}

	pos := q
	fwd := utils.Forward
	a := NewFieldAgent(m, &pos, &fwd, 4, 720)
	if !a.IsOnNavMesh() {
		t.Fatalf("agent placed on %+v is off the mesh", q)
	}
	if !a.SetDestination(utils.V3(8, 0, 8)) || !a.HasPath() {
		t.Fatalf("agent on sampled point %+v cannot path", q)
	}
}

func TestSamplePositionStaysInsideCell(t *testing.T) {
	m := NewFieldMesh(smallConfig(), nil)
	// 恰好落在格子上边界的查询点
	for _, p := range []utils.Vec3{utils.V3(0.5, 0, 0.5), utils.V3(-0.5, 0, 2), utils.V3(9.999999, 0, 9.999999)} {
		q, ok := m.SamplePosition(p, 0.5)
		if !ok || !m.IsWalkable(q) {
			t.Errorf("SamplePosition(%+v) = %+v, %v; want walkable point", p, q, ok)
		}
	}
}

func TestFindClosestEdgeNormalPointsInward(t *testing.T) {
	m := NewFieldMesh(smallConfig(), nil)

	hit, ok := m.FindClosestEdge(utils.V3(9, 0, 0))
	if !ok {
		t.Fatal("expected an edge near the east boundary")
	}
	if math.Abs(hit.Distance-1) > 1e-6 {
		t.Errorf("distance = %v, want 1", hit.Distance)
	}
	if hit.Normal.X != -1 || hit.Normal.Z != 0 {
		t.Errorf("normal = %+v, want (-1,0,0)", hit.Normal)
	}

	if _, ok := m.FindClosestEdge(utils.V3(0, 0, 0)); ok {
		t.Error("center of open field should have no edge within search radius")
	}
}

func TestFindPathCompleteAndPartial(t *testing.T) {
	m := NewFieldMesh(smallConfig(), nil)
	// 在 x=5 处砌一堵贯穿南北的墙，把场地分成两个岛
	for z := -9.75; z < 10; z += 0.5 {
		m.SetBlocked(utils.V3(5.25, 0, z), true)
	}

	path, complete := m.FindPath(utils.V3(-5, 0, 0), utils.V3(3, 0, 3))
	if !complete || len(path) == 0 {
		t.Fatalf("expected complete path on same island, got %v %v", len(path), complete)
	}
	last := path[len(path)-1]
	if utils.DistFlat(last, utils.V3(3, 0, 3)) > 1e-6 {
		t.Errorf("complete path should end on the goal, ended at %+v", last)
	}

	path, complete = m.FindPath(utils.V3(-5, 0, 0), utils.V3(8, 0, 0))
	if complete {
		t.Fatal("path across the wall must be partial")
	}
	if len(path) == 0 {
		t.Fatal("partial path should lead toward the goal")
	}
	if end := path[len(path)-1]; end.X > 5 || end.X < 4 {
		t.Errorf("partial path should stop at the wall, ended at %+v", end)
	}
}

func TestFieldAgentFollowsPath(t *testing.T) {
	m := NewFieldMesh(smallConfig(), []Obstacle{{X: 0, Z: 0, Radius: 1.5}})
	pos := utils.V3(-5, 0, 0)
	fwd := utils.Forward
	a := NewFieldAgent(m, &pos, &fwd, 4, 720)

	goal := utils.V3(5, 0, 0)
	if !a.SetDestination(goal) {
		t.Fatal("destination rejected")
	}
	if !a.HasPath() || a.RemainingDistance() < 10 {
		t.Fatalf("expected a path around the rock, remaining %v", a.RemainingDistance())
	}

	for i := 0; i < 600 && a.HasPath(); i++ {
		a.Step(1.0 / 60)
		if !m.IsWalkable(pos) {
			t.Fatalf("agent walked into the obstacle at %+v", pos)
		}
	}
	if utils.DistFlat(pos, goal) > 0.2 {
		t.Errorf("agent did not arrive: %+v", pos)
	}
	if a.RemainingDistance() != 0 {
		t.Errorf("expected no remaining path after arrival")
	}
	if fwd == utils.Forward {
		t.Errorf("forward should have turned toward travel direction: %+v", fwd)
	}
}

func TestFieldAgentDisabledAndWarp(t *testing.T) {
	m := NewFieldMesh(smallConfig(), nil)
	pos := utils.V3(0, 3, 0) // 悬空
	fwd := utils.Forward
	a := NewFieldAgent(m, &pos, &fwd, 4, 360)

	if a.IsOnNavMesh() || a.SetDestination(utils.V3(2, 0, 2)) {
		t.Fatal("agent above the surface must not accept destinations")
	}
	if !a.Warp(utils.V3(1, 0.1, 1)) || !a.IsOnNavMesh() {
		t.Fatal("warp onto the surface failed")
	}
	a.SetEnabled(false)
	if a.SetDestination(utils.V3(2, 0, 2)) {
		t.Error("disabled agent must reject destinations")
	}
}
