package cv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

const (
	// DefaultMinBrightness 默认亮度下限，低于该值视为空背景
	DefaultMinBrightness = 10.0
	// DefaultMaxBrightness 默认亮度上限，高于该值视为过曝 UI
	DefaultMaxBrightness = 245.0
)

// Validator 匹配区域校验器
// 零值不做亮度过滤，只做越界检查
type Validator struct {
	MinBrightness float64
	MaxBrightness float64
}

// DefaultValidator 默认校验器
func DefaultValidator() Validator {
	return Validator{
		MinBrightness: DefaultMinBrightness,
		MaxBrightness: DefaultMaxBrightness,
	}
}

// InBounds 对齐区域是否完全在帧内
func InBounds(frameW, frameH int, offset Point, w, h int) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	return offset.X >= 0 && offset.Y >= 0 && offset.X+w <= frameW && offset.Y+h <= frameH
}

// Validate 校验一个原始偏移候选
// gray 为帧的灰度图；offset 为模板左上角
func (v Validator) Validate(gray gocv.Mat, offset Point, w, h int) bool {
	if !InBounds(gray.Cols(), gray.Rows(), offset, w, h) {
		return false
	}
	if v.MinBrightness <= 0 && (v.MaxBrightness <= 0 || v.MaxBrightness >= 255) {
		return true
	}

	region := gray.Region(image.Rect(offset.X, offset.Y, offset.X+w, offset.Y+h))
	defer region.Close()
	brightness := region.Mean().Val1

	if brightness < v.MinBrightness {
		return false
	}
	if v.MaxBrightness > 0 && brightness > v.MaxBrightness {
		return false
	}
	return true
}

// TemplateReport 模板质量信息
type TemplateReport struct {
	Name       string
	Width      int
	Height     int
	Brightness float64
	Contrast   float64
}

func (r TemplateReport) String() string {
	return fmt.Sprintf("%s %dx%d 亮度=%.1f 对比度=%.1f", r.Name, r.Width, r.Height, r.Brightness, r.Contrast)
}

// Usable 模板亮度是否能通过默认校验器，对比度是否足够参与 NCC
func (r TemplateReport) Usable() bool {
	return r.Brightness >= DefaultMinBrightness && r.Brightness <= DefaultMaxBrightness && r.Contrast > 0
}

// AnalyzeTemplate 统计模板亮度与对比度
func AnalyzeTemplate(t *Template) (TemplateReport, error) {
	if t == nil || t.gray.Empty() {
		return TemplateReport{}, fmt.Errorf("%w: 模板为空", ErrTemplateCorrupt)
	}

	mean := gocv.NewMat()
	stddev := gocv.NewMat()
	defer mean.Close()
	defer stddev.Close()
	gocv.MeanStdDev(t.gray, &mean, &stddev)

	return TemplateReport{
		Name:       t.Name,
		Width:      t.Width,
		Height:     t.Height,
		Brightness: mean.GetDoubleAt(0, 0),
		Contrast:   stddev.GetDoubleAt(0, 0),
	}, nil
}
