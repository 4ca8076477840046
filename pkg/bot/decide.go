package bot

import (
	"fmt"

	"github.com/zoeyai/dungeonbot/pkg/vision"
)

// Action 一帧的决策结果
type Action int

const (
	ActionIdle Action = iota
	ActionAttack
	ActionCollect
	ActionTransition
)

func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionCollect:
		return "collect"
	case ActionTransition:
		return "transition"
	default:
		return "idle"
	}
}

// Decision 决策
type Decision struct {
	Action Action
	Player vision.DetectedEntity
	Target vision.DetectedEntity
}

func (d Decision) String() string {
	if d.Action == ActionIdle {
		return "idle"
	}
	return fmt.Sprintf("%s %s -> %s (%s)", d.Action, d.Player.Center, d.Target.Center, d.Target.Label)
}

// Decide 按 攻击 > 拾取 > 过门 的优先级选择动作
// 怪物和物品取离角色最近的一个，门取置信度最高的一个
func Decide(d *vision.Detections, player vision.DetectedEntity) Decision {
	decision := Decision{Action: ActionIdle, Player: player}
	if d == nil {
		return decision
	}

	if target, ok := vision.Nearest(d.Monsters, player.Center); ok {
		decision.Action = ActionAttack
		decision.Target = target
		return decision
	}
	if target, ok := vision.Nearest(d.Items, player.Center); ok {
		decision.Action = ActionCollect
		decision.Target = target
		return decision
	}
	if len(d.Doors) > 0 {
		decision.Action = ActionTransition
		decision.Target = d.Doors[0]
	}
	return decision
}
