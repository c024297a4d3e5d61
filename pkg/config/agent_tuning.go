package config

import (
	"fmt"
)

// AgentTuning 单个 NPC 的可调参数
//
// 所有距离单位为米，时间单位为秒，角度单位为度。
// 参数在状态生命周期内只读；运行时可变字段在 components.AgentComponent 中。
//
// 配置文件位置: data/archetypes.yaml（defaults + 按原型的部分覆盖）
type AgentTuning struct {
	// ===== 移动 =====
	WalkSpeed    float64 `yaml:"walkSpeed"`    // 漫游速度
	RunSpeed     float64 `yaml:"runSpeed"`     // 追击速度
	FleeSpeed    float64 `yaml:"fleeSpeed"`    // 逃跑速度
	AngularSpeed float64 `yaml:"angularSpeed"` // 导航自动转向速度（度/秒）

	// ===== 感知 =====
	DetectionRange       float64 `yaml:"detectionRange"`
	AttackRange          float64 `yaml:"attackRange"`
	AttackFacingAngle    float64 `yaml:"attackFacingAngle"` // 攻击朝向锥半角
	ChaseLoseMultiplier  float64 `yaml:"chaseLoseMultiplier"`
	FleeRange            float64 `yaml:"fleeRange"`
	FleeExitMultiplier   float64 `yaml:"fleeExitMultiplier"`
	ChargeDetectionRange float64 `yaml:"chargeDetectionRange"`

	// ===== 领地 =====
	TerritoryRadius      float64 `yaml:"territoryRadius"`
	HomeRadius           float64 `yaml:"homeRadius"`
	ReturnArriveFraction float64 `yaml:"returnArriveFraction"` // 到达判定 = HomeRadius × 比例
	ReturnRestTime       float64 `yaml:"returnRestTime"`
	ReturnStuckTimeout   float64 `yaml:"returnStuckTimeout"`
	ReturnStepDistance   float64 `yaml:"returnStepDistance"` // 不完整路径时朝家迈进的步长

	// ===== 漫游 / 休息 =====
	WanderRadius        float64 `yaml:"wanderRadius"`       // 离家过远时在出生点附近取点的半径
	WanderJitterRadius  float64 `yaml:"wanderJitterRadius"` // 本地抖动半径
	WanderInterval      float64 `yaml:"wanderInterval"`
	WanderRestChance    float64 `yaml:"wanderRestChance"`
	RestDurationMin     float64 `yaml:"restDurationMin"`
	RestDurationMax     float64 `yaml:"restDurationMax"`
	EatProbability      float64 `yaml:"eatProbability"`
	RestSpacingRadius   float64 `yaml:"restSpacingRadius"`
	RestSpacingStrength float64 `yaml:"restSpacingStrength"`

	// ===== 攻击 =====
	AttackDamage   float64 `yaml:"attackDamage"`
	AttackCooldown float64 `yaml:"attackCooldown"`
	AttackDuration float64 `yaml:"attackDuration"`

	// ===== 变速追击（Aggressive4） =====
	NormalPhaseDuration    float64 `yaml:"normalPhaseDuration"`
	SurgePhaseDuration     float64 `yaml:"surgePhaseDuration"`
	FatiguePhaseDuration   float64 `yaml:"fatiguePhaseDuration"`
	SurgeSpeedMultiplier   float64 `yaml:"surgeSpeedMultiplier"`
	FatigueSpeedMultiplier float64 `yaml:"fatigueSpeedMultiplier"`
	PredictionTime         float64 `yaml:"predictionTime"`
	MaxPredictionDistance  float64 `yaml:"maxPredictionDistance"`
	MaxTurnRate            float64 `yaml:"maxTurnRate"`
	TurnSpeedFloor         float64 `yaml:"turnSpeedFloor"`

	// ===== 冲锋（Aggressive3） =====
	WindupDuration         float64 `yaml:"windupDuration"`
	ChargeSpeed            float64 `yaml:"chargeSpeed"`
	ChargeDuration         float64 `yaml:"chargeDuration"`
	ChargeOvershoot        float64 `yaml:"chargeOvershoot"`
	ChargeDamageRadius     float64 `yaml:"chargeDamageRadius"`
	ChargeDamage           float64 `yaml:"chargeDamage"`
	ChargeTurnRate         float64 `yaml:"chargeTurnRate"`
	MaxChargeAttempts      int     `yaml:"maxChargeAttempts"`
	ChargeCooldownDuration float64 `yaml:"chargeCooldownDuration"`

	// ===== 逃跑 =====
	FleeLookahead       float64 `yaml:"fleeLookahead"`
	FleeZigzagAmplitude float64 `yaml:"fleeZigzagAmplitude"`
	FleeZigzagFrequency float64 `yaml:"fleeZigzagFrequency"`
	FleePredictionTime  float64 `yaml:"fleePredictionTime"`
	FleeEdgeMargin      float64 `yaml:"fleeEdgeMargin"`
	FleeStuckTimeout    float64 `yaml:"fleeStuckTimeout"`

	// ===== 受击 / 挑衅 / 死亡 =====
	KnockbackDuration      float64 `yaml:"knockbackDuration"`
	KnockbackFlashDuration float64 `yaml:"knockbackFlashDuration"`
	RetaliationDelay       float64 `yaml:"retaliationDelay"`
	DespawnDelay           float64 `yaml:"despawnDelay"`

	// ===== 卡死恢复 =====
	StuckTimeout             float64 `yaml:"stuckTimeout"`
	StuckVelocityEpsilon     float64 `yaml:"stuckVelocityEpsilon"`
	StuckDisplacementEpsilon float64 `yaml:"stuckDisplacementEpsilon"`
	StuckMinRemaining        float64 `yaml:"stuckMinRemaining"`
	EdgeSafetyMargin         float64 `yaml:"edgeSafetyMargin"`
	EdgeNudgeDistance        float64 `yaml:"edgeNudgeDistance"`
	ProbeDistance            float64 `yaml:"probeDistance"`
	ProbeStepAngle           float64 `yaml:"probeStepAngle"`
	ProbeMaxAngle            float64 `yaml:"probeMaxAngle"`
	SampleRadius             float64 `yaml:"sampleRadius"`

	// ===== 同伴 =====
	FollowDistance          float64 `yaml:"followDistance"`
	OrbitRadiusMin          float64 `yaml:"orbitRadiusMin"`
	OrbitRadiusMax          float64 `yaml:"orbitRadiusMax"`
	OrbitRerollInterval     float64 `yaml:"orbitRerollInterval"`
	OrbitRerollJitter       float64 `yaml:"orbitRerollJitter"`
	RepathThreshold         float64 `yaml:"repathThreshold"`
	FlockRadius             float64 `yaml:"flockRadius"`
	SeparationDistance      float64 `yaml:"separationDistance"`
	SeparationWeight        float64 `yaml:"separationWeight"`
	CohesionWeight          float64 `yaml:"cohesionWeight"`
	AlignmentWeight         float64 `yaml:"alignmentWeight"`
	CompanionDetectionRange float64 `yaml:"companionDetectionRange"`
	TetherDistance          float64 `yaml:"tetherDistance"`

	// ===== 群猎 =====
	PackCallRadius      float64 `yaml:"packCallRadius"`
	MaxPackSize         int     `yaml:"maxPackSize"`
	CoordinationTime    float64 `yaml:"coordinationTime"`
	PackRingRadius      float64 `yaml:"packRingRadius"`
	PackRingMinRadius   float64 `yaml:"packRingMinRadius"`
	PackCollapseTime    float64 `yaml:"packCollapseTime"`
	PackArcDegrees      float64 `yaml:"packArcDegrees"`
	PackOrbitSpeed      float64 `yaml:"packOrbitSpeed"` // 0 表示不漂移
	AttackWindowDegrees float64 `yaml:"attackWindowDegrees"`
	LungeCooldown       float64 `yaml:"lungeCooldown"`
	LungeSpeed          float64 `yaml:"lungeSpeed"`
	LungeDuration       float64 `yaml:"lungeDuration"`
	LungeOvershoot      float64 `yaml:"lungeOvershoot"`
	LungeHitRadius      float64 `yaml:"lungeHitRadius"`
	LungeCloseRange     float64 `yaml:"lungeCloseRange"`
	RearSpeedBoost      float64 `yaml:"rearSpeedBoost"`
	RearBoostSmoothing  float64 `yaml:"rearBoostSmoothing"`

	// ===== 跳跃（Jumper） =====
	JumpDetectionRange      float64   `yaml:"jumpDetectionRange"`
	JumpHeight              float64   `yaml:"jumpHeight"`
	JumpDuration            float64   `yaml:"jumpDuration"`
	JumpLandingRadius       float64   `yaml:"jumpLandingRadius"`
	SettleRetries           int       `yaml:"settleRetries"`
	SettleInterval          float64   `yaml:"settleInterval"`
	JumpChaseDuration       float64   `yaml:"jumpChaseDuration"`
	JumpSessionDuration     float64   `yaml:"jumpSessionDuration"`
	FootSearchRadii         []float64 `yaml:"footSearchRadii"`
	ReturnNoProgressTimeout float64   `yaml:"returnNoProgressTimeout"`
}

// DefaultAgentTuning 返回内置默认参数
func DefaultAgentTuning() AgentTuning {
	return AgentTuning{
		WalkSpeed:    1.5,
		RunSpeed:     4.0,
		FleeSpeed:    5.0,
		AngularSpeed: 360,

		DetectionRange:       12,
		AttackRange:          1.8,
		AttackFacingAngle:    60,
		ChaseLoseMultiplier:  1.25,
		FleeRange:            8,
		FleeExitMultiplier:   2,
		ChargeDetectionRange: 16,

		TerritoryRadius:      20,
		HomeRadius:           4,
		ReturnArriveFraction: 0.5,
		ReturnRestTime:       1.5,
		ReturnStuckTimeout:   1.0,
		ReturnStepDistance:   5,

		WanderRadius:        6,
		WanderJitterRadius:  3,
		WanderInterval:      6,
		WanderRestChance:    0.35,
		RestDurationMin:     3,
		RestDurationMax:     7,
		EatProbability:      0.5,
		RestSpacingRadius:   1.5,
		RestSpacingStrength: 0.8,

		AttackDamage:   10,
		AttackCooldown: 1.2,
		AttackDuration: 0.8,

		NormalPhaseDuration:    3,
		SurgePhaseDuration:     1.5,
		FatiguePhaseDuration:   2,
		SurgeSpeedMultiplier:   1.6,
		FatigueSpeedMultiplier: 0.6,
		PredictionTime:         0.6,
		MaxPredictionDistance:  4,
		MaxTurnRate:            180,
		TurnSpeedFloor:         0.4,

		WindupDuration:         0.8,
		ChargeSpeed:            10,
		ChargeDuration:         1.2,
		ChargeOvershoot:        4,
		ChargeDamageRadius:     1.2,
		ChargeDamage:           25,
		ChargeTurnRate:         45,
		MaxChargeAttempts:      3,
		ChargeCooldownDuration: 6,

		FleeLookahead:       6,
		FleeZigzagAmplitude: 2,
		FleeZigzagFrequency: 1.5,
		FleePredictionTime:  0.5,
		FleeEdgeMargin:      3,
		FleeStuckTimeout:    0.6,

		KnockbackDuration:      0.35,
		KnockbackFlashDuration: 0.2,
		RetaliationDelay:       2.5,
		DespawnDelay:           5,

		StuckTimeout:             1.5,
		StuckVelocityEpsilon:     0.05,
		StuckDisplacementEpsilon: 0.01,
		StuckMinRemaining:        0.75,
		EdgeSafetyMargin:         1.0,
		EdgeNudgeDistance:        1.5,
		ProbeDistance:            3,
		ProbeStepAngle:           15,
		ProbeMaxAngle:            90,
		SampleRadius:             1.0,

		FollowDistance:          3,
		OrbitRadiusMin:          2,
		OrbitRadiusMax:          4,
		OrbitRerollInterval:     3,
		OrbitRerollJitter:       1,
		RepathThreshold:         0.75,
		FlockRadius:             5,
		SeparationDistance:      1.5,
		SeparationWeight:        1.5,
		CohesionWeight:          0.4,
		AlignmentWeight:         0.3,
		CompanionDetectionRange: 8,
		TetherDistance:          18,

		PackCallRadius:      15,
		MaxPackSize:         6,
		CoordinationTime:    1.0,
		PackRingRadius:      8,
		PackRingMinRadius:   3,
		PackCollapseTime:    8,
		PackArcDegrees:      240,
		PackOrbitSpeed:      0,
		AttackWindowDegrees: 20,
		LungeCooldown:       3,
		LungeSpeed:          9,
		LungeDuration:       0.6,
		LungeOvershoot:      2,
		LungeHitRadius:      1.2,
		LungeCloseRange:     2.5,
		RearSpeedBoost:      1.35,
		RearBoostSmoothing:  3,

		JumpDetectionRange:      10,
		JumpHeight:              2.5,
		JumpDuration:            0.9,
		JumpLandingRadius:       2,
		SettleRetries:           5,
		SettleInterval:          0.2,
		JumpChaseDuration:       4,
		JumpSessionDuration:     15,
		FootSearchRadii:         []float64{1.5, 3, 4.5},
		ReturnNoProgressTimeout: 2,
	}
}

// Validate 验证参数合法性
func (t *AgentTuning) Validate() error {
	positives := []struct {
		name  string
		value float64
	}{
		{"walkSpeed", t.WalkSpeed},
		{"runSpeed", t.RunSpeed},
		{"fleeSpeed", t.FleeSpeed},
		{"detectionRange", t.DetectionRange},
		{"attackRange", t.AttackRange},
		{"fleeRange", t.FleeRange},
		{"territoryRadius", t.TerritoryRadius},
		{"homeRadius", t.HomeRadius},
		{"stuckTimeout", t.StuckTimeout},
		{"probeStepAngle", t.ProbeStepAngle},
		{"sampleRadius", t.SampleRadius},
		{"chargeDuration", t.ChargeDuration},
		{"lungeDuration", t.LungeDuration},
		{"jumpDuration", t.JumpDuration},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %f", p.name, p.value)
		}
	}

	if t.FleeExitMultiplier < 1 {
		return fmt.Errorf("fleeExitMultiplier must be >= 1, got %f", t.FleeExitMultiplier)
	}
	if t.MaxChargeAttempts < 1 {
		return fmt.Errorf("maxChargeAttempts must be >= 1, got %d", t.MaxChargeAttempts)
	}
	if t.MaxPackSize < 1 {
		return fmt.Errorf("maxPackSize must be >= 1, got %d", t.MaxPackSize)
	}
	if t.PackRingMinRadius > t.PackRingRadius {
		return fmt.Errorf("packRingMinRadius (%f) exceeds packRingRadius (%f)", t.PackRingMinRadius, t.PackRingRadius)
	}
	if t.TurnSpeedFloor < 0 || t.TurnSpeedFloor > 1 {
		return fmt.Errorf("turnSpeedFloor must be within [0,1], got %f", t.TurnSpeedFloor)
	}
	if t.RestDurationMax < t.RestDurationMin {
		return fmt.Errorf("restDurationMax (%f) < restDurationMin (%f)", t.RestDurationMax, t.RestDurationMin)
	}
	if t.OrbitRadiusMax < t.OrbitRadiusMin {
		return fmt.Errorf("orbitRadiusMax (%f) < orbitRadiusMin (%f)", t.OrbitRadiusMax, t.OrbitRadiusMin)
	}
	return nil
}

// ArriveDistance ReturnToBase 的到达判定距离
func (t *AgentTuning) ArriveDistance() float64 {
	return t.HomeRadius * t.ReturnArriveFraction
}
