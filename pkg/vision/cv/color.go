package cv

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// HSVRange HSV 阈值区间（OpenCV 取值: H 0-180, S/V 0-255）
type HSVRange struct {
	Lower [3]float64 `json:"lower"`
	Upper [3]float64 `json:"upper"`
}

// ColorProfile 颜色定位配置
type ColorProfile struct {
	// Name 配置名，作为结果标签
	Name string `json:"name"`
	// Ranges 多个区间取并集（红色跨越色相原点时需要两段）
	Ranges []HSVRange `json:"ranges"`
	// MinArea 轮廓面积下限（含）
	MinArea float64 `json:"min_area"`
	// MaxArea 轮廓面积上限（不含），0 表示不限
	MaxArea float64 `json:"max_area"`
	// MinAspect / MaxAspect 宽高比区间（开区间），0 表示不限
	MinAspect float64 `json:"min_aspect"`
	MaxAspect float64 `json:"max_aspect"`
	// MinWidth 外接矩形最小宽度（不含），0 表示不限
	MinWidth int `json:"min_width"`
	// Offset 从外接矩形中心到实体中心的偏移
	Offset Point `json:"offset"`
	// AnchorBottom 为 true 时以外接矩形底边为偏移起点（名字标签下方）
	AnchorBottom bool `json:"anchor_bottom"`
	// EdgeMargin 推断中心距帧边缘小于该值时丢弃，0 表示不限
	EdgeMargin int `json:"edge_margin"`
	// Morphology 是否做先闭后开运算
	Morphology bool `json:"morphology"`
	// KernelSize 形态学核尺寸
	KernelSize int `json:"kernel_size"`
}

// MonsterProfile 怪物血条（红色，两段色相）
func MonsterProfile() ColorProfile {
	return ColorProfile{
		Name: "monster_hp",
		Ranges: []HSVRange{
			{Lower: [3]float64{0, 120, 70}, Upper: [3]float64{10, 255, 255}},
			{Lower: [3]float64{170, 120, 70}, Upper: [3]float64{180, 255, 255}},
		},
		MinArea:    100,
		Morphology: true,
		KernelSize: 3,
	}
}

// ItemProfile 金色物品 / 金币
func ItemProfile() ColorProfile {
	return ColorProfile{
		Name: "gold_items",
		Ranges: []HSVRange{
			{Lower: [3]float64{15, 100, 100}, Upper: [3]float64{35, 255, 255}},
		},
		MinArea:    50,
		Morphology: true,
		KernelSize: 3,
	}
}

// PlayerProfile 角色名字标签（绿色文字），角色位于标签下方 40 像素
func PlayerProfile() ColorProfile {
	return ColorProfile{
		Name: "player_tag",
		Ranges: []HSVRange{
			{Lower: [3]float64{35, 40, 40}, Upper: [3]float64{85, 255, 255}},
		},
		MinArea:      50,
		MaxArea:      1500,
		MinAspect:    1.5,
		MaxAspect:    8,
		MinWidth:     20,
		Offset:       Point{X: 0, Y: 40},
		AnchorBottom: true,
		EdgeMargin:   100,
		Morphology:   true,
		KernelSize:   3,
	}
}

// Validate 检查配置是否可用
func (p ColorProfile) Validate() error {
	if len(p.Ranges) == 0 {
		return fmt.Errorf("颜色配置 %s 没有阈值区间", p.Name)
	}
	for i, r := range p.Ranges {
		for c := 0; c < 3; c++ {
			if r.Lower[c] > r.Upper[c] {
				return fmt.Errorf("颜色配置 %s 第 %d 段下限大于上限", p.Name, i+1)
			}
		}
	}
	if p.MaxArea > 0 && p.MaxArea <= p.MinArea {
		return fmt.Errorf("颜色配置 %s 面积区间无效: [%.0f, %.0f)", p.Name, p.MinArea, p.MaxArea)
	}
	if p.MaxAspect > 0 && p.MaxAspect <= p.MinAspect {
		return fmt.Errorf("颜色配置 %s 宽高比区间无效", p.Name)
	}
	return nil
}

// BuildMask 按配置生成二值掩码，调用方负责 Close
func BuildMask(hsv gocv.Mat, p ColorProfile) gocv.Mat {
	mask := gocv.NewMatWithSize(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8UC1)
	mask.SetTo(gocv.NewScalar(0, 0, 0, 0))

	part := gocv.NewMat()
	defer part.Close()
	for _, r := range p.Ranges {
		lower := gocv.NewScalar(r.Lower[0], r.Lower[1], r.Lower[2], 0)
		upper := gocv.NewScalar(r.Upper[0], r.Upper[1], r.Upper[2], 0)
		gocv.InRangeWithScalar(hsv, lower, upper, &part)
		gocv.BitwiseOr(mask, part, &mask)
	}

	if p.Morphology {
		size := p.KernelSize
		if size <= 0 {
			size = 3
		}
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(size, size))
		defer kernel.Close()
		gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
		gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)
	}
	return mask
}

// LocateBlobs 颜色定位：HSV 掩码 -> 形态学 -> 轮廓过滤 -> 中心推断
// 没有区域通过过滤时返回空切片
func LocateBlobs(frame gocv.Mat, p ColorProfile) ([]Blob, error) {
	if err := CheckFrame(frame); err != nil {
		return nil, err
	}
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	return locateInHSV(hsv, p), nil
}

func locateInHSV(hsv gocv.Mat, p ColorProfile) []Blob {
	mask := BuildMask(hsv, p)
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	frameW, frameH := hsv.Cols(), hsv.Rows()
	var blobs []Blob
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < p.MinArea {
			continue
		}
		if p.MaxArea > 0 && area >= p.MaxArea {
			continue
		}

		rect := gocv.BoundingRect(contour)
		w, h := rect.Dx(), rect.Dy()
		aspect := 0.0
		if h > 0 {
			aspect = float64(w) / float64(h)
		}
		if p.MinAspect > 0 && aspect <= p.MinAspect {
			continue
		}
		if p.MaxAspect > 0 && aspect >= p.MaxAspect {
			continue
		}
		if p.MinWidth > 0 && w <= p.MinWidth {
			continue
		}

		center := Point{X: rect.Min.X + w/2, Y: rect.Min.Y + h/2}
		if p.AnchorBottom {
			center.Y = rect.Min.Y + h
		}
		center.X += p.Offset.X
		center.Y += p.Offset.Y

		if p.EdgeMargin > 0 && !insideMargin(center, frameW, frameH, p.EdgeMargin) {
			continue
		}

		fill := 0.0
		if w > 0 && h > 0 {
			fill = clamp01(area / float64(w*h))
		}
		blobs = append(blobs, Blob{
			Center:      ClampPoint(center, frameW, frameH),
			Box:         [4]int{rect.Min.X, rect.Min.Y, w, h},
			Area:        area,
			AspectRatio: aspect,
			Confidence:  fill,
			Label:       p.Name,
		})
	}
	return blobs
}

func insideMargin(p Point, w, h, margin int) bool {
	return p.X > margin && p.X < w-margin && p.Y > margin && p.Y < h-margin
}

// ScoreWeights 多候选评分权重
type ScoreWeights struct {
	// AreaWeight 面积权重
	AreaWeight float64 `json:"area_weight"`
	// DistanceWeight 距帧中心距离权重
	DistanceWeight float64 `json:"distance_weight"`
	// MinScore 得分必须大于该值才会被选中
	MinScore float64 `json:"min_score"`
}

// DefaultScoreWeights 默认权重：面积 0.1，距离 0.01
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{AreaWeight: 0.1, DistanceWeight: 0.01, MinScore: 0}
}

// Score 计算候选得分: area_weight*area - distance_weight*distance_from_center
func (s ScoreWeights) Score(b Blob, frameW, frameH int) float64 {
	center := Point{X: frameW / 2, Y: frameH / 2}
	return s.AreaWeight*b.Area - s.DistanceWeight*b.Center.DistanceTo(center)
}

// PickBest 选出得分最高的候选，没有得分超过 MinScore 的候选时返回 false
func PickBest(blobs []Blob, frameW, frameH int, s ScoreWeights) (Blob, bool) {
	var best Blob
	bestScore := math.Inf(-1)
	found := false
	for _, b := range blobs {
		score := s.Score(b, frameW, frameH)
		if score <= s.MinScore {
			continue
		}
		if score > bestScore {
			best, bestScore, found = b, score, true
		}
	}
	return best, found
}

// LocatePlayer 通过名字标签推断角色位置
func LocatePlayer(frame gocv.Mat, p ColorProfile, s ScoreWeights) (Blob, bool, error) {
	blobs, err := LocateBlobs(frame, p)
	if err != nil {
		return Blob{}, false, err
	}
	best, ok := PickBest(blobs, frame.Cols(), frame.Rows(), s)
	return best, ok, nil
}

// HSVFrame 预先转换好的 HSV 图像，供多个颜色配置复用
type HSVFrame struct {
	mat gocv.Mat
}

// NewHSVFrame 转换帧为 HSV
func NewHSVFrame(frame gocv.Mat) (*HSVFrame, error) {
	if err := CheckFrame(frame); err != nil {
		return nil, err
	}
	hsv := gocv.NewMat()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)
	return &HSVFrame{mat: hsv}, nil
}

// Locate 在已转换的 HSV 图像上执行颜色定位
func (f *HSVFrame) Locate(p ColorProfile) []Blob {
	return locateInHSV(f.mat, p)
}

// Close 释放资源
func (f *HSVFrame) Close() {
	f.mat.Close()
}
