// Package vision 提供游戏画面感知功能
package vision

import (
	"github.com/zoeyai/dungeonbot/pkg/vision/cv"
)

// Version 版本号
const Version = "1.0.0"

// Point 表示二维坐标点
type Point = cv.Point

// NewPoint 创建新的 Point
func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// Category 实体类别
type Category = cv.Category

const (
	CategoryPlayer  = cv.CategoryPlayer
	CategoryMonster = cv.CategoryMonster
	CategoryItem    = cv.CategoryItem
	CategoryDoor    = cv.CategoryDoor
)

// DetectedEntity 一次感知得到的实体
type DetectedEntity struct {
	// Category 类别
	Category Category `json:"category"`
	// Center 实体中心，始终位于帧内
	Center Point `json:"center"`
	// Confidence 置信度 (0-1)
	Confidence float64 `json:"confidence"`
	// Label 来源标签（模板名 / 颜色配置名），可为空
	Label string `json:"label,omitempty"`
}

// Detections 一次感知的全部结果
type Detections struct {
	Monsters []DetectedEntity `json:"monsters"`
	Items    []DetectedEntity `json:"items"`
	Doors    []DetectedEntity `json:"doors"`
}

// Count 返回实体总数
func (d *Detections) Count() int {
	if d == nil {
		return 0
	}
	return len(d.Monsters) + len(d.Items) + len(d.Doors)
}

// Empty 是否没有任何实体
func (d *Detections) Empty() bool {
	return d.Count() == 0
}

// All 按 怪物 / 物品 / 门 顺序返回全部实体
func (d *Detections) All() []DetectedEntity {
	if d == nil {
		return nil
	}
	all := make([]DetectedEntity, 0, d.Count())
	all = append(all, d.Monsters...)
	all = append(all, d.Items...)
	all = append(all, d.Doors...)
	return all
}

// Nearest 返回距离 from 最近的实体
func Nearest(entities []DetectedEntity, from Point) (DetectedEntity, bool) {
	if len(entities) == 0 {
		return DetectedEntity{}, false
	}
	best := entities[0]
	bestDist := best.Center.DistanceTo(from)
	for _, e := range entities[1:] {
		if d := e.Center.DistanceTo(from); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, true
}

func entityFromCandidate(category Category, c cv.MatchCandidate, w, h int) DetectedEntity {
	return DetectedEntity{
		Category:   category,
		Center:     cv.ClampPoint(c.Position, w, h),
		Confidence: c.Confidence,
		Label:      c.Label,
	}
}

func entityFromBlob(category Category, b cv.Blob, w, h int) DetectedEntity {
	return DetectedEntity{
		Category:   category,
		Center:     cv.ClampPoint(b.Center, w, h),
		Confidence: b.Confidence,
		Label:      b.Label,
	}
}
