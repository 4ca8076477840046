package cv

import (
	"fmt"
	"math"
)

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DistanceTo 返回与另一点的欧氏距离
func (p Point) DistanceTo(o Point) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Category 实体类别
type Category int

const (
	// CategoryPlayer 玩家角色
	CategoryPlayer Category = iota
	// CategoryMonster 怪物
	CategoryMonster
	// CategoryItem 掉落物品 / 金币
	CategoryItem
	// CategoryDoor 传送门
	CategoryDoor
)

func (c Category) String() string {
	switch c {
	case CategoryPlayer:
		return "player"
	case CategoryMonster:
		return "monster"
	case CategoryItem:
		return "item"
	case CategoryDoor:
		return "door"
	default:
		return "unknown"
	}
}

// ParseCategory 解析类别字符串
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "player":
		return CategoryPlayer, true
	case "monster":
		return CategoryMonster, true
	case "item":
		return CategoryItem, true
	case "door":
		return CategoryDoor, true
	default:
		return 0, false
	}
}

// HasTemplates 该类别是否使用模板匹配
func (c Category) HasTemplates() bool {
	return c == CategoryDoor || c == CategoryItem
}

// MatchCandidate 单次匹配得到的候选结果
type MatchCandidate struct {
	// Position 候选中心点（帧坐标）
	Position Point `json:"position"`
	// Confidence 置信度 (0-1)
	Confidence float64 `json:"confidence"`
	// Template 来源模板，颜色定位得到的候选为 nil
	Template *Template `json:"-"`
	// Label 来源标签（模板名或颜色配置名）
	Label string `json:"label,omitempty"`
}

// Blob 颜色定位得到的连通区域
type Blob struct {
	// Center 推断出的实体中心（已加偏移并限制在帧内）
	Center Point `json:"center"`
	// Box 外接矩形 [x, y, w, h]
	Box [4]int `json:"box"`
	// Area 轮廓面积
	Area float64 `json:"area"`
	// AspectRatio 宽高比
	AspectRatio float64 `json:"aspect_ratio"`
	// Confidence 填充率 (轮廓面积 / 外接矩形面积)
	Confidence float64 `json:"confidence"`
	// Label 颜色配置名
	Label string `json:"label,omitempty"`
}

// Candidate 将 Blob 转换为 MatchCandidate
func (b Blob) Candidate() MatchCandidate {
	return MatchCandidate{
		Position:   b.Center,
		Confidence: b.Confidence,
		Label:      b.Label,
	}
}
