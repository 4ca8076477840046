package cv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"github.com/zoeyai/dungeonbot/internal/logger"
)

var (
	// ErrTemplateNotFound 模板文件不存在
	ErrTemplateNotFound = errors.New("模板文件不存在")
	// ErrTemplateCorrupt 模板文件无法解码
	ErrTemplateCorrupt = errors.New("模板文件无法解码")
	// ErrTemplateCategory 类别不支持模板
	ErrTemplateCategory = errors.New("该类别不使用模板")
)

// Template 只读的参考图像
type Template struct {
	// Category 所属类别（Door / Item）
	Category Category
	// Name 模板名（文件名）
	Name string
	// Mat BGR 图像，加载后不再修改
	Mat gocv.Mat
	// Width 宽度
	Width int
	// Height 高度
	Height int

	gray gocv.Mat
}

// NewTemplate 从已有图像创建模板，mat 的所有权转移给模板
func NewTemplate(category Category, name string, mat gocv.Mat) (*Template, error) {
	if !category.HasTemplates() {
		return nil, fmt.Errorf("%w: %s", ErrTemplateCategory, category)
	}
	if mat.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrTemplateCorrupt, name)
	}
	if mat.Channels() != 3 {
		return nil, fmt.Errorf("%w: %s 通道数 %d", ErrTemplateCorrupt, name, mat.Channels())
	}
	return &Template{
		Category: category,
		Name:     name,
		Mat:      mat,
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		gray:     ToGray(mat),
	}, nil
}

// Gray 返回灰度表示
func (t *Template) Gray() gocv.Mat {
	return t.gray
}

// Close 释放资源
func (t *Template) Close() {
	t.Mat.Close()
	t.gray.Close()
}

// String 返回字符串表示
func (t *Template) String() string {
	return fmt.Sprintf("Template(%s/%s %dx%d)", t.Category, t.Name, t.Width, t.Height)
}

// LoadTemplate 读取模板文件
func LoadTemplate(category Category, path string) (*Template, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("读取模板失败: %w", err)
	}

	mat, err := ReadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateCorrupt, err)
	}

	t, err := NewTemplate(category, filepath.Base(path), mat)
	if err != nil {
		mat.Close()
		return nil, err
	}
	return t, nil
}

// TemplateStore 模板仓库，启动时加载一次，之后只读
type TemplateStore struct {
	dir string

	mu        sync.RWMutex
	templates map[Category][]*Template
	missing   map[string]error
}

// NewTemplateStore 创建模板仓库
func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{
		dir:       dir,
		templates: make(map[Category][]*Template),
		missing:   make(map[string]error),
	}
}

// Dir 返回模板目录
func (s *TemplateStore) Dir() string {
	return s.dir
}

// Load 加载单个模板
// 失败时只记录一次警告并跳过，返回的错误供调用方判断
func (s *TemplateStore) Load(category Category, name string) (*Template, error) {
	path := name
	if s.dir != "" && !filepath.IsAbs(name) {
		path = filepath.Join(s.dir, name)
	}

	t, err := LoadTemplate(category, path)
	if err != nil {
		s.mu.Lock()
		s.missing[name] = err
		s.mu.Unlock()
		logger.WarnOnce("template:"+path, "[模板] 跳过 %s: %v", name, err)
		return nil, err
	}

	if report, err := AnalyzeTemplate(t); err == nil {
		logger.Debug("[模板] %s", report)
	}

	s.Add(t)
	return t, nil
}

// LoadAll 批量加载模板，返回成功数量
func (s *TemplateStore) LoadAll(category Category, names ...string) int {
	loaded := 0
	for _, name := range names {
		if _, err := s.Load(category, name); err == nil {
			loaded++
		}
	}
	return loaded
}

// Add 直接添加已创建的模板
func (s *TemplateStore) Add(t *Template) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.Category] = append(s.templates[t.Category], t)
}

// Templates 返回某个类别的模板
func (s *TemplateStore) Templates(category Category) []*Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.templates[category]
	out := make([]*Template, len(list))
	copy(out, list)
	return out
}

// Missing 返回加载失败的模板名（已排序）
func (s *TemplateStore) Missing() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.missing))
	for name := range s.missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count 返回已加载模板总数
func (s *TemplateStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, list := range s.templates {
		n += len(list)
	}
	return n
}

// Close 释放所有模板
func (s *TemplateStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, list := range s.templates {
		for _, t := range list {
			t.Close()
		}
	}
	s.templates = make(map[Category][]*Template)
}
