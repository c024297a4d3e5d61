package behavior

import (
	"github.com/decker502/wildlife/pkg/ecs"
	"github.com/decker502/wildlife/pkg/fsm"
	"github.com/decker502/wildlife/pkg/types"
	"github.com/decker502/wildlife/pkg/utils"
)

// knockbackResponse 受击打断的处理方式
type knockbackResponse int

const (
	knockbackDisplace       knockbackResponse = iota // 短暂击退位移
	knockbackProvoke                                 // 挑衅：先逃后反击
	knockbackRecharge                                // 重新蓄力冲锋
	knockbackUnlessAirborne                          // 栖息或空中时忽略
)

// archetypePolicy 按原型分派的决策规则
//
// 共享状态（Wander/Rest/ReturnToBase/Attack）只通过策略表访问原型差异，
// 不在状态内部按原型分支。
type archetypePolicy struct {
	// leashed 玩家离开领地时放弃交战
	leashed bool

	knockback knockbackResponse

	// initial 生成时的初始状态
	initial func(s *BehaviorSystem, id ecs.EntityID) fsm.State

	// detect 空闲/归巢状态下的侦测规则，返回 nil 表示维持当前状态
	detect func(s *BehaviorSystem, c *agentCtx, p playerInfo) fsm.State

	// pursue 攻击结束后玩家仍在侦测范围内时的追击状态
	pursue func(s *BehaviorSystem, c *agentCtx) fsm.State
}

func wanderInitial(s *BehaviorSystem, id ecs.EntityID) fsm.State { return s.newWander(id) }

func fleeDetect(newFlee func(s *BehaviorSystem, id ecs.EntityID) fsm.State) func(*BehaviorSystem, *agentCtx, playerInfo) fsm.State {
	return func(s *BehaviorSystem, c *agentCtx, p playerInfo) fsm.State {
		if utils.DistFlat(c.pos(), p.pos) <= c.tuning().FleeRange {
			return newFlee(s, c.id)
		}
		return nil
	}
}

// engageDetect 近身且面向时攻击，否则在侦测范围内追击
func engageDetect(s *BehaviorSystem, c *agentCtx, p playerInfo) fsm.State {
	if leashBroken(c, p) {
		return nil
	}
	if canAttack(c, p.pos) {
		return s.newAttack(c.id)
	}
	if utils.DistFlat(c.pos(), p.pos) <= c.tuning().DetectionRange {
		return c.policy().pursue(s, c)
	}
	return nil
}

func provokableDetect(s *BehaviorSystem, c *agentCtx, p playerInfo) fsm.State {
	if c.agent.Provoked {
		return s.newFleeSimple(c.id)
	}
	return engageDetect(s, c, p)
}

func chargerDetect(s *BehaviorSystem, c *agentCtx, p playerInfo) fsm.State {
	if leashBroken(c, p) {
		return nil
	}
	t := c.tuning()
	if canAttack(c, p.pos) {
		return s.newAttack(c.id)
	}
	if !c.agent.ChargeCooldownActive && utils.DistFlat(c.pos(), p.pos) <= t.ChargeDetectionRange {
		return s.newWindup(c.id)
	}
	return nil
}

func packDetect(s *BehaviorSystem, c *agentCtx, p playerInfo) fsm.State {
	if utils.DistFlat(c.pos(), p.pos) <= c.tuning().DetectionRange {
		return s.newPackCall(c.id)
	}
	return nil
}

func companionDetect(s *BehaviorSystem, c *agentCtx, p playerInfo) fsm.State {
	return s.newCompanionFollow(c.id)
}

func jumperDetect(s *BehaviorSystem, c *agentCtx, p playerInfo) fsm.State {
	return s.newJumpReturnHome(c.id)
}

func chasePursue(s *BehaviorSystem, c *agentCtx) fsm.State  { return s.newChase(c.id) }
func chase4Pursue(s *BehaviorSystem, c *agentCtx) fsm.State { return s.newChaseType4(c.id) }
func packPursue(s *BehaviorSystem, c *agentCtx) fsm.State {
	pack := s.gatherPack(c)
	index, total := pack.Slot(c.id)
	return s.newPackChase(c.id, pack, index, total)
}

var (
	policies map[types.Archetype]*archetypePolicy

	// fallbackPolicy 未知原型按最保守的被动原型处理
	fallbackPolicy *archetypePolicy
)

func wanderPursue(s *BehaviorSystem, c *agentCtx) fsm.State { return s.newWander(c.id) }

func init() {
	passive := func(newFlee func(s *BehaviorSystem, id ecs.EntityID) fsm.State) *archetypePolicy {
		return &archetypePolicy{
			initial: wanderInitial,
			detect:  fleeDetect(newFlee),
			pursue:  wanderPursue,
		}
	}

	policies = map[types.Archetype]*archetypePolicy{
		types.ArchetypePassiveVeryEasy: passive(func(s *BehaviorSystem, id ecs.EntityID) fsm.State { return s.newFleeVeryEasy(id) }),
		types.ArchetypePassiveSimple:   passive(func(s *BehaviorSystem, id ecs.EntityID) fsm.State { return s.newFleeSimple(id) }),
		types.ArchetypePassiveFull:     passive(func(s *BehaviorSystem, id ecs.EntityID) fsm.State { return s.newFleeFull(id) }),
		types.ArchetypeAggressive1: {
			initial: wanderInitial,
			detect:  engageDetect,
			pursue:  chasePursue,
		},
		types.ArchetypeAggressive2: {
			leashed:   true,
			knockback: knockbackProvoke,
			initial:   wanderInitial,
			detect:    provokableDetect,
			pursue:    chasePursue,
		},
		types.ArchetypeAggressive3: {
			leashed:   true,
			knockback: knockbackRecharge,
			initial:   wanderInitial,
			detect:    chargerDetect,
			pursue:    func(s *BehaviorSystem, c *agentCtx) fsm.State { return s.newWindup(c.id) },
		},
		types.ArchetypeAggressive4: {
			leashed: true,
			initial: wanderInitial,
			detect:  engageDetect,
			pursue:  chase4Pursue,
		},
		types.ArchetypeCompanion: {
			initial: func(s *BehaviorSystem, id ecs.EntityID) fsm.State { return s.newCompanionFollow(id) },
			detect:  companionDetect,
			pursue:  func(s *BehaviorSystem, c *agentCtx) fsm.State { return s.newCompanionFollow(c.id) },
		},
		types.ArchetypePackHunter: {
			initial: wanderInitial,
			detect:  packDetect,
			pursue:  packPursue,
		},
		types.ArchetypeJumper: {
			knockback: knockbackUnlessAirborne,
			initial:   func(s *BehaviorSystem, id ecs.EntityID) fsm.State { return s.newPerchRest(id) },
			detect:    jumperDetect,
			pursue:    func(s *BehaviorSystem, c *agentCtx) fsm.State { return s.newJumpReturnHome(c.id) },
		},
	}
	fallbackPolicy = policies[types.ArchetypePassiveVeryEasy]
}

// policyFor 返回原型的策略
func policyFor(a types.Archetype) *archetypePolicy {
	if p, ok := policies[a]; ok {
		return p
	}
	return fallbackPolicy
}

// detectFor 运行原型的侦测规则；玩家缺席时只有不依赖玩家的原型会给出结果
func (s *BehaviorSystem) detectFor(c *agentCtx) fsm.State {
	p, ok := s.player()
	if !ok {
		if c.agent.Archetype == types.ArchetypeJumper {
			return jumperDetect(s, c, p)
		}
		return nil
	}
	return c.policy().detect(s, c, p)
}
