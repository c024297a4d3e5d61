package behavior

import (
	"log"

	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/fsm"
	"github.com/decker502/wildlife/pkg/systems"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// packSlotTolerance 判定“已在槽位附近”时在环半径上额外允许的距离
const packSlotTolerance = 0.75

// PackCallState 召集：进入时收集同种群猎者，把所有成员（包括自己）切换到协调
type PackCallState struct {
	stateBase
	pack Pack
}

func (s *BehaviorSystem) newPackCall(id ecs.EntityID) *PackCallState {
	return &PackCallState{stateBase: stateBase{sys: s, id: id}}
}

func (st *PackCallState) Name() string { return "PackCall" }

func (st *PackCallState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.pack = st.sys.gatherPack(c)
	st.sys.emitAnim(c, types.AnimIdle)
	if st.sys.Verbose {
		log.Printf("[BehaviorSystem] 实体 %d 召集群体 %v", st.id, st.pack.Members)
	}

	pack := st.pack
	for _, member := range pack.Members {
		if member == st.id {
			continue
		}
		st.sys.changeStateByID(member, func(id ecs.EntityID) fsm.State {
			return st.sys.newPackCoordinate(id, pack)
		})
	}
	st.change(c, st.sys.newPackCoordinate(st.id, pack))
}

func (st *PackCallState) Update(dt float64) {}
func (st *PackCallState) Exit()             {}

// PackCoordinateState 协调：等待 CoordinationTime 后带着序号进入群体追击
//
// 成员与序号只在 Enter 时快照一次。
type PackCoordinateState struct {
	stateBase
	pack  Pack
	index int
	total int
	timer float64
}

func (s *BehaviorSystem) newPackCoordinate(id ecs.EntityID, pack Pack) *PackCoordinateState {
	return &PackCoordinateState{stateBase: stateBase{sys: s, id: id}, pack: pack}
}

func (st *PackCoordinateState) Name() string { return "PackCoordinate" }

// Slot 快照得到的序号与总数
func (st *PackCoordinateState) Slot() (index, total int) { return st.index, st.total }

func (st *PackCoordinateState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	st.pack = st.sys.validMembers(st.pack)
	st.index, st.total = st.pack.Slot(st.id)
	st.sys.halt(c)
	st.sys.emitAnim(c, types.AnimIdle)
}

func (st *PackCoordinateState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	p, ok := st.sys.player()
	if !ok {
		st.change(c, st.sys.newWander(st.id))
		return
	}
	t := c.tuning()
	faceTowards(c, p.pos, t.AngularSpeed, dt)
	st.timer += dt
	if st.timer >= t.CoordinationTime {
		st.change(c, st.sys.newPackChase(st.id, st.pack, st.index, st.total))
		return
	}
}

func (st *PackCoordinateState) Exit() {}

// PackChaseState 群体追击：按序号占据玩家周围的槽位，环半径随时间收缩；
// 进入攻击窗口或足够接近时扑击，后翼成员获得平滑加速
type PackChaseState struct {
	stateBase
	pack    Pack
	index   int
	total   int
	elapsed float64
	boost   float64
}

func (s *BehaviorSystem) newPackChase(id ecs.EntityID, pack Pack, index, total int) *PackChaseState {
	return &PackChaseState{
		stateBase: stateBase{sys: s, id: id},
		pack:      pack,
		index:     index,
		total:     total,
		boost:     1,
	}
}

func (st *PackChaseState) Name() string { return "PackChase" }

// Slot 当前序号与总数
func (st *PackChaseState) Slot() (index, total int) { return st.index, st.total }

func (st *PackChaseState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	if st.total < 1 {
		st.index, st.total = 0, 1
	}
	st.sys.setSpeed(c, c.tuning().RunSpeed)
	st.sys.emitAnim(c, types.AnimRun)
}

// ringRadius 随追击时间线性收缩的环半径
func (st *PackChaseState) ringRadius(c *agentCtx) float64 {
	t := c.tuning()
	if t.PackCollapseTime <= 0 {
		return t.PackRingMinRadius
	}
	return utils.Lerp(t.PackRingRadius, t.PackRingMinRadius, utils.Clamp01(st.elapsed/t.PackCollapseTime))
}

// slotAngle 当前槽位角度（含可选的环绕漂移）
func (st *PackChaseState) slotAngle(c *agentCtx) float64 {
	t := c.tuning()
	return ComputeSlotAngle(st.index, st.total, t.PackArcDegrees) + t.PackOrbitSpeed*st.elapsed
}

func (st *PackChaseState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	p, ok := st.sys.player()
	if !ok {
		st.change(c, st.sys.newWander(st.id))
		return
	}
	t := c.tuning()
	dist := utils.DistFlat(c.pos(), p.pos)
	if dist > t.DetectionRange*t.ChaseLoseMultiplier {
		st.change(c, st.sys.newWander(st.id))
		return
	}

	st.elapsed += dt
	radius := st.ringRadius(c)
	angle := st.slotAngle(c)

	if st.sys.now >= c.agent.PackAttackReadyAt {
		actual := utils.SignedAngleY(p.fwd, c.pos().Sub(p.pos))
		slotError := utils.NormalizeAngle(actual - angle)
		if slotError < 0 {
			slotError = -slotError
		}
		inWindow := slotError <= t.AttackWindowDegrees && dist <= radius+packSlotTolerance
		if inWindow || dist <= t.LungeCloseRange {
			st.change(c, st.sys.newPackLunge(st.id, st.pack))
			return
		}
	}

	target := 1.0
	if isRearSlot(st.index, st.total) {
		target = t.RearSpeedBoost
	}
	st.boost += (target - st.boost) * utils.ExpSmoothing(t.RearBoostSmoothing, dt)
	st.sys.setSpeed(c, t.RunSpeed*st.boost)

	intercept := ComputeIntercept(p.pos, p.fwd, angle, radius)
	if q, ok := st.sys.sample(intercept, t.SampleRadius); ok {
		intercept = q
	}
	st.sys.setDestinationSmart(c, intercept, false)
}

func (st *PackChaseState) Exit() {
	if c, ok := st.ctx(); ok {
		st.sys.setSpeed(c, c.tuning().WalkSpeed)
	}
}

// PackLungeState 扑击：固定方向冲过玩家，单次命中判定，并设置个体冷却
type PackLungeState struct {
	stateBase
	pack   Pack
	timer  float64
	target utils.Vec3
	hit    bool
}

func (s *BehaviorSystem) newPackLunge(id ecs.EntityID, pack Pack) *PackLungeState {
	return &PackLungeState{stateBase: stateBase{sys: s, id: id}, pack: pack}
}

func (st *PackLungeState) Name() string { return "PackLunge" }
func (st *PackLungeState) Locked() bool { return true }

func (st *PackLungeState) Enter() {
	c, ok := st.ctx()
	if !ok {
		return
	}
	t := c.tuning()
	c.agent.PackAttackReadyAt = st.sys.now + t.LungeCooldown

	dir := c.transform.Forward.FlatNormalize()
	st.target = c.pos().Add(dir.Scale(t.LungeOvershoot))
	if p, ok := st.sys.player(); ok {
		if d := p.pos.Sub(c.pos()).FlatNormalize(); !d.IsZero() {
			dir = d
		}
		st.target = p.pos.Add(dir.Scale(t.LungeOvershoot))
	}
	if q, ok := st.sys.sample(st.target, t.LungeOvershoot); ok {
		st.target = q
	}
	if !dir.IsZero() {
		c.transform.Forward = dir
	}
	st.sys.setSpeed(c, t.LungeSpeed)
	st.sys.setDestinationSmart(c, st.target, true)
	st.sys.emitAnim(c, types.AnimAttack)
}

func (st *PackLungeState) Update(dt float64) {
	c, ok := st.ctx()
	if !ok {
		return
	}
	t := c.tuning()
	st.timer += dt
	p, hasPlayer := st.sys.player()
	if hasPlayer && !st.hit && utils.DistFlat(c.pos(), p.pos) <= t.LungeHitRadius {
		st.hit = true
		systems.ApplyDamage(st.sys.entityManager, p.id, t.AttackDamage)
	}

	if st.timer < t.LungeDuration && utils.DistFlat(c.pos(), st.target) > chargeArriveDistance {
		return
	}
	if !hasPlayer {
		st.change(c, st.sys.newWander(st.id))
		return
	}
	if utils.DistFlat(c.pos(), p.pos) <= t.AttackRange {
		st.change(c, st.sys.newAttack(st.id))
		return
	}
	pack := st.sys.validMembers(st.pack)
	index, total := pack.Slot(st.id)
	st.change(c, st.sys.newPackChase(st.id, pack, index, total))
}

func (st *PackLungeState) Exit() {
	if c, ok := st.ctx(); ok {
		st.sys.halt(c)
		st.sys.setSpeed(c, c.tuning().WalkSpeed)
	}
}
