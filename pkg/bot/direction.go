package bot

import (
	"math"

	"github.com/zoeyai/dungeonbot/pkg/config"
	"github.com/zoeyai/dungeonbot/pkg/vision"
)

// ArriveDistance 距离目标小于该值视为已到达
const ArriveDistance = 10.0

// Heading 移动方向
type Heading int

const (
	HeadingNone Heading = iota
	HeadingUp
	HeadingDown
	HeadingLeft
	HeadingRight
)

func (h Heading) String() string {
	switch h {
	case HeadingUp:
		return "up"
	case HeadingDown:
		return "down"
	case HeadingLeft:
		return "left"
	case HeadingRight:
		return "right"
	default:
		return "none"
	}
}

// Key 方向对应的按键
func (h Heading) Key(keys config.Keys) string {
	switch h {
	case HeadingUp:
		return keys.Up
	case HeadingDown:
		return keys.Down
	case HeadingLeft:
		return keys.Left
	case HeadingRight:
		return keys.Right
	default:
		return ""
	}
}

// Direction 返回从 from 到 to 的主方向和距离
// 距离小于 ArriveDistance 时返回 HeadingNone；横纵分量相等时取纵向
func Direction(from, to vision.Point) (Heading, float64) {
	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	dist := math.Hypot(dx, dy)
	if dist < ArriveDistance {
		return HeadingNone, dist
	}

	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return HeadingRight, dist
		}
		return HeadingLeft, dist
	}
	if dy > 0 {
		return HeadingDown, dist
	}
	return HeadingUp, dist
}

// Steps 返回靠近目标需要的移动，先横向后纵向
// 某个轴的偏差不超过 threshold 时不移动该轴
func Steps(from, to vision.Point, threshold int) []Heading {
	var steps []Heading

	dx := to.X - from.X
	if abs(dx) > threshold {
		if dx > 0 {
			steps = append(steps, HeadingRight)
		} else {
			steps = append(steps, HeadingLeft)
		}
	}

	dy := to.Y - from.Y
	if abs(dy) > threshold {
		if dy > 0 {
			steps = append(steps, HeadingDown)
		} else {
			steps = append(steps, HeadingUp)
		}
	}
	return steps
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
