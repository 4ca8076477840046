package cv

import (
	"fmt"
	"runtime"
	"sort"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMatchThreshold 默认匹配阈值
	DefaultMatchThreshold = 0.7
	// MaxResultCount 单个模板最多保留的候选数量
	MaxResultCount = 256
)

// MatchOptions 模板匹配参数
type MatchOptions struct {
	// Threshold 相似度阈值 (0-1)，得分 >= 阈值的位置才会输出
	Threshold float64
	// Validator 区域校验器
	Validator Validator
	// MaxResults 单个模板最多保留的候选数，<=0 表示不限
	MaxResults int
}

// DefaultMatchOptions 默认匹配参数
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		Threshold:  DefaultMatchThreshold,
		Validator:  DefaultValidator(),
		MaxResults: MaxResultCount,
	}
}

// TemplateMatching 单帧单模板匹配器
type TemplateMatching struct {
	imSource gocv.Mat
	imGray   gocv.Mat
	tmpl     *Template
	opts     MatchOptions
}

// NewTemplateMatching 创建模板匹配器
// gray 为 source 的灰度图，由调用方持有
func NewTemplateMatching(tmpl *Template, source, gray gocv.Mat, opts MatchOptions) *TemplateMatching {
	return &TemplateMatching{
		imSource: source,
		imGray:   gray,
		tmpl:     tmpl,
		opts:     opts,
	}
}

// FindAllResults 返回所有得分达到阈值且通过校验的候选
// 彩色结果非空时优先使用，否则回退到灰度结果
func (m *TemplateMatching) FindAllResults() ([]MatchCandidate, error) {
	if err := checkSourceLargerThanSearch(m.imSource, m.tmpl.Mat); err != nil {
		// 模板比帧大不是错误，只是没有候选
		return nil, nil
	}

	results, err := m.collect(m.imSource, m.tmpl.Mat)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		return results, nil
	}
	return m.collect(m.imGray, m.tmpl.Gray())
}

// FindBestResult 返回置信度最高的候选，没有候选时返回 nil
func (m *TemplateMatching) FindBestResult() (*MatchCandidate, error) {
	results, err := m.FindAllResults()
	if err != nil || len(results) == 0 {
		return nil, err
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	return &best, nil
}

// collect 计算相关系数矩阵并提取达到阈值的位置
func (m *TemplateMatching) collect(source, search gocv.Mat) ([]MatchCandidate, error) {
	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(source, search, &result, gocv.TmCcoeffNormed, mask)
	if result.Empty() {
		return nil, fmt.Errorf("%w: 匹配结果为空", ErrInvalidFrame)
	}

	w, h := m.tmpl.Width, m.tmpl.Height
	rows, cols := result.Rows(), result.Cols()

	score := scoreReader(result)
	var results []MatchCandidate
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			confidence := clamp01(float64(score(y, x)))
			if confidence < m.opts.Threshold {
				continue
			}
			offset := Point{X: x, Y: y}
			if !m.opts.Validator.Validate(m.imGray, offset, w, h) {
				continue
			}
			results = append(results, MatchCandidate{
				Position:   Point{X: x + w/2, Y: y + h/2},
				Confidence: confidence,
				Template:   m.tmpl,
				Label:      m.tmpl.Name,
			})
		}
	}

	if m.opts.MaxResults > 0 && len(results) > m.opts.MaxResults {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Confidence > results[j].Confidence
		})
		results = results[:m.opts.MaxResults]
	}
	return results, nil
}

// scoreReader 优先直接读取连续内存，否则逐点读取
func scoreReader(result gocv.Mat) func(y, x int) float32 {
	if result.IsContinuous() {
		if data, err := result.DataPtrFloat32(); err == nil {
			cols := result.Cols()
			return func(y, x int) float32 {
				return data[y*cols+x]
			}
		}
	}
	return func(y, x int) float32 {
		return result.GetFloatAt(y, x)
	}
}

// MatchTemplate 在帧中匹配单个模板
func MatchTemplate(frame gocv.Mat, tmpl *Template, opts MatchOptions) ([]MatchCandidate, error) {
	if err := CheckFrame(frame); err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, nil
	}
	gray := ToGray(frame)
	defer gray.Close()

	return NewTemplateMatching(tmpl, frame, gray, opts).FindAllResults()
}

// MatchAll 并发匹配多个模板，全部完成后合并结果
// 各分支只读取帧和模板，结果按模板顺序拼接
func MatchAll(frame gocv.Mat, templates []*Template, opts MatchOptions) ([]MatchCandidate, error) {
	if err := CheckFrame(frame); err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, nil
	}

	gray := ToGray(frame)
	defer gray.Close()

	perTemplate := make([][]MatchCandidate, len(templates))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, tmpl := range templates {
		if tmpl == nil {
			continue
		}
		g.Go(func() error {
			results, err := NewTemplateMatching(tmpl, frame, gray, opts).FindAllResults()
			if err != nil {
				return fmt.Errorf("匹配模板 %s 失败: %w", tmpl.Name, err)
			}
			perTemplate[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []MatchCandidate
	for _, results := range perTemplate {
		all = append(all, results...)
	}
	return all, nil
}

// checkSourceLargerThanSearch 检查源图像是否大于搜索图像
func checkSourceLargerThanSearch(source, search gocv.Mat) error {
	if source.Rows() < search.Rows() || source.Cols() < search.Cols() {
		return &ImageSizeError{
			SourceSize: [2]int{source.Cols(), source.Rows()},
			SearchSize: [2]int{search.Cols(), search.Rows()},
		}
	}
	return nil
}

// ImageSizeError 图像尺寸错误
type ImageSizeError struct {
	SourceSize [2]int
	SearchSize [2]int
}

func (e *ImageSizeError) Error() string {
	return fmt.Sprintf("搜索图像尺寸 %dx%d 大于源图像 %dx%d",
		e.SearchSize[0], e.SearchSize[1], e.SourceSize[0], e.SourceSize[1])
}
