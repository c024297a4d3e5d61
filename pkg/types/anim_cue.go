package types

// AnimCue 行为层发出的语义动画指令
// 行为层只发出指令，从不读取动画播放状态
type AnimCue int

const (
	AnimNone AnimCue = iota
	AnimIdle
	AnimWalk
	AnimRun
	AnimAttack
	AnimDie
	AnimEat
	AnimRest
	AnimJump
)

func (c AnimCue) String() string {
	switch c {
	case AnimIdle:
		return "idle"
	case AnimWalk:
		return "walk"
	case AnimRun:
		return "run"
	case AnimAttack:
		return "attack"
	case AnimDie:
		return "die"
	case AnimEat:
		return "eat"
	case AnimRest:
		return "rest"
	case AnimJump:
		return "jump"
	default:
		return "none"
	}
}

// LODBucket 距离玩家的细节层级分桶
type LODBucket int

const (
	LODNear LODBucket = iota // 每帧思考
	LODMid                   // 限频思考
	LODFar                   // 稀疏思考
	LODCull                  // 完全挂起，导航组件分离
)

func (b LODBucket) String() string {
	switch b {
	case LODNear:
		return "near"
	case LODMid:
		return "mid"
	case LODFar:
		return "far"
	case LODCull:
		return "cull"
	default:
		return "unknown"
	}
}
