package behavior

import (
	"math"
	"math/rand"
	"testing"

	"github.com/decker502/wildlife/pkg/components"
	"github.com/decker502/wildlife/pkg/config"
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/entities"
	"github.com/decker502/wildlife/pkg/fsm"
	"github.com/decker502/wildlife/pkg/navmesh"
	"github.com/decker502/wildlife/pkg/systems"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// testDt 测试使用的固定帧长
const testDt = 1.0 / 60.0

// fakeNav 不移动的导航代理替身：记录所有目的地请求，路径在 ResetPath 之前一直存在
type fakeNav struct {
	pos *utils.Vec3

	enabled        bool
	stopped        bool
	updateRotation bool
	speed          float64
	hasPath        bool
	dest           utils.Vec3
	offMesh        bool
	unreachable    bool

	requests []utils.Vec3
	warps    int
}

func newFakeNav(pos *utils.Vec3) *fakeNav {
	return &fakeNav{pos: pos, enabled: true, updateRotation: true}
}

func (n *fakeNav) SetDestination(p utils.Vec3) bool {
	if !n.enabled {
		return false
	}
	n.requests = append(n.requests, p)
	n.dest = p
	n.hasPath = true
	return true
}

func (n *fakeNav) ResetPath()                        { n.hasPath = false }
func (n *fakeNav) HasCompletePath(p utils.Vec3) bool { return !n.unreachable }
func (n *fakeNav) Destination() utils.Vec3           { return n.dest }
func (n *fakeNav) HasPath() bool                     { return n.hasPath }
func (n *fakeNav) Velocity() utils.Vec3              { return utils.Vec3{} }
func (n *fakeNav) PathPending() bool                 { return false }
func (n *fakeNav) IsOnNavMesh() bool                 { return n.enabled && !n.offMesh }
func (n *fakeNav) Enabled() bool                     { return n.enabled }
func (n *fakeNav) Speed() float64                    { return n.speed }
func (n *fakeNav) SetSpeed(speed float64)            { n.speed = speed }
func (n *fakeNav) SetUpdateRotation(enabled bool)    { n.updateRotation = enabled }
func (n *fakeNav) SetStopped(stopped bool)           { n.stopped = stopped }
func (n *fakeNav) IsStopped() bool                   { return n.stopped }

func (n *fakeNav) SetEnabled(enabled bool) {
	n.enabled = enabled
	if !enabled {
		n.hasPath = false
	}
}

func (n *fakeNav) RemainingDistance() float64 {
	if !n.hasPath {
		return 0
	}
	return 10
}

func (n *fakeNav) Warp(p utils.Vec3) bool {
	*n.pos = p
	n.hasPath = false
	n.warps++
	return true
}

func (n *fakeNav) lastRequest() (utils.Vec3, bool) {
	if len(n.requests) == 0 {
		return utils.Vec3{}, false
	}
	return n.requests[len(n.requests)-1], true
}

type transition struct {
	id       ecs.EntityID
	from, to string
}

// harness 无渲染的行为系统测试环境：真实网格、玩家追踪与空间索引，替身导航代理
type harness struct {
	t       *testing.T
	em      *ecs.EntityManager
	mesh    *navmesh.FieldMesh
	tracker *systems.PlayerTracker
	index   *systems.SpatialIndexSystem
	sys     *BehaviorSystem
	navs    map[ecs.EntityID]*fakeNav
	player  ecs.EntityID

	transitions []transition
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	em := ecs.NewEntityManager()
	h := &harness{
		t:       t,
		em:      em,
		mesh:    navmesh.NewFieldMesh(navmesh.DefaultFieldConfig(), nil),
		tracker: systems.NewPlayerTracker(em),
		index:   systems.NewSpatialIndexSystem(em),
		navs:    make(map[ecs.EntityID]*fakeNav),
	}
	h.sys = NewBehaviorSystem(em, h.mesh, h.index.Grid(), h.tracker, rand.New(rand.NewSource(7)))
	h.sys.OnTransition = func(id ecs.EntityID, from, to string) {
		h.transitions = append(h.transitions, transition{id: id, from: from, to: to})
	}
	return h
}

// spawn 创建并激活 NPC；tune 可为 nil
func (h *harness) spawn(arch types.Archetype, species string, pos utils.Vec3, tune func(*config.AgentTuning)) ecs.EntityID {
	h.t.Helper()
	tuning := config.DefaultAgentTuning()
	if tune != nil {
		tune(&tuning)
	}
	var nav *fakeNav
	factory := func(p, fwd *utils.Vec3, _ *config.AgentTuning) navmesh.Agent {
		nav = newFakeNav(p)
		return nav
	}
	id, err := entities.NewAgentEntity(h.em, entities.AgentSpec{
		Archetype: arch,
		Species:   species,
		Position:  pos,
		Tuning:    tuning,
	}, factory)
	if err != nil {
		h.t.Fatalf("spawn %v: %v", arch, err)
	}
	h.navs[id] = nav
	h.index.Update(0)
	if !h.sys.OnSpawned(id) {
		h.t.Fatalf("OnSpawned(%d) failed", id)
	}
	return id
}

// setPlayer 创建或瞬移玩家
func (h *harness) setPlayer(pos utils.Vec3) {
	if h.player == ecs.InvalidEntity {
		h.player = entities.NewPlayerEntity(h.em, pos, 5)
		h.tracker.SetPlayer(h.player)
		return
	}
	h.transform(h.player).Position = pos
}

func (h *harness) removePlayer() {
	h.tracker.ClearPlayer()
}

func (h *harness) step() {
	h.tracker.Update(testDt)
	h.index.Update(testDt)
	h.sys.Update(testDt)
}

func (h *harness) run(seconds float64) {
	n := int(math.Ceil(seconds / testDt))
	for i := 0; i < n; i++ {
		h.step()
	}
}

// runUntil 推进直到条件满足，返回是否满足
func (h *harness) runUntil(maxSeconds float64, cond func() bool) bool {
	n := int(math.Ceil(maxSeconds / testDt))
	for i := 0; i < n; i++ {
		h.step()
		if cond() {
			return true
		}
	}
	return false
}

func (h *harness) state(id ecs.EntityID) string {
	return h.sys.StateName(id)
}

func (h *harness) force(id ecs.EntityID, next func(ecs.EntityID) fsm.State) {
	h.t.Helper()
	if !h.sys.changeStateByID(id, next) {
		h.t.Fatalf("changeStateByID(%d) failed", id)
	}
}

func (h *harness) agent(id ecs.EntityID) *components.AgentComponent {
	h.t.Helper()
	a, ok := ecs.GetComponent[*components.AgentComponent](h.em, id)
	if !ok {
		h.t.Fatalf("entity %d has no agent component", id)
	}
	return a
}

func (h *harness) health(id ecs.EntityID) *components.HealthComponent {
	h.t.Helper()
	hc, ok := ecs.GetComponent[*components.HealthComponent](h.em, id)
	if !ok {
		h.t.Fatalf("entity %d has no health component", id)
	}
	return hc
}

func (h *harness) transform(id ecs.EntityID) *components.TransformComponent {
	h.t.Helper()
	tr, ok := ecs.GetComponent[*components.TransformComponent](h.em, id)
	if !ok {
		h.t.Fatalf("entity %d has no transform component", id)
	}
	return tr
}

func (h *harness) machine(id ecs.EntityID) *fsm.StateMachine {
	h.t.Helper()
	b, ok := ecs.GetComponent[*components.BrainComponent](h.em, id)
	if !ok {
		h.t.Fatalf("entity %d has no brain component", id)
	}
	return b.Machine
}

// entered 实体进入某状态的次数
func (h *harness) entered(id ecs.EntityID, name string) int {
	count := 0
	for _, tr := range h.transitions {
		if tr.id == id && tr.to == name {
			count++
		}
	}
	return count
}

// path 实体的状态序列（按切换顺序）
func (h *harness) path(id ecs.EntityID) []string {
	var out []string
	for _, tr := range h.transitions {
		if tr.id == id {
			out = append(out, tr.to)
		}
	}
	return out
}

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
