package vision

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/zoeyai/dungeonbot/internal/logger"
	"github.com/zoeyai/dungeonbot/pkg/vision/cv"
)

// Perceiver 感知门面
// 模板在创建前加载完毕，之后只读；角色缓存属于单个会话。
//
// 使用示例:
//
//	store := cv.NewTemplateStore("templates")
//	store.LoadAll(vision.CategoryDoor, "door1.png", "door2.png")
//	p := vision.NewPerceiver(store, vision.WithConfig(cfg))
//	detections, err := p.Detect(frame)
//	player, err := p.LocatePlayer(frame)
type Perceiver struct {
	store *cv.TemplateStore
	cfg   *perceiverConfig

	mu    sync.Mutex
	cache *PlayerCache
}

// NewPerceiver 创建感知器，store 可以为 nil（此时只使用颜色定位）
func NewPerceiver(store *cv.TemplateStore, opts ...Option) *Perceiver {
	cfg := defaultPerceiverConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	for category, p := range cfg.profiles {
		if err := p.Validate(); err != nil {
			logger.Warn("[感知] %s 颜色配置无效，使用默认值: %v", category, err)
			cfg.profiles[category] = defaultPerceiverConfig().profiles[category]
		}
	}
	return &Perceiver{
		store: store,
		cfg:   cfg,
		cache: NewPlayerCache(cfg.refreshInterval),
	}
}

// Detect 在一帧中检测怪物、物品和门
// 三个类别并发计算，各分支只读取帧，全部完成后合并
func (p *Perceiver) Detect(frame gocv.Mat) (*Detections, error) {
	start := time.Now()

	if err := cv.CheckFrame(frame); err != nil {
		return nil, err
	}
	hsv, err := cv.NewHSVFrame(frame)
	if err != nil {
		return nil, err
	}
	defer hsv.Close()

	w, h := cv.GetResolution(frame)
	result := &Detections{}

	var g errgroup.Group
	g.Go(func() error {
		result.Monsters = p.detectMonsters(hsv, w, h)
		return nil
	})
	g.Go(func() error {
		items, err := p.detectItems(frame, hsv, w, h)
		if err != nil {
			return fmt.Errorf("检测物品失败: %w", err)
		}
		result.Items = items
		return nil
	})
	g.Go(func() error {
		doors, err := p.detectDoors(frame, w, h)
		if err != nil {
			return fmt.Errorf("检测门失败: %w", err)
		}
		result.Doors = doors
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.LogEvent("detect", false, time.Since(start), err.Error())
		return nil, err
	}

	logger.LogEvent("detect", true, time.Since(start),
		fmt.Sprintf("monsters=%d items=%d doors=%d", len(result.Monsters), len(result.Items), len(result.Doors)))
	return result, nil
}

// detectMonsters 怪物只用颜色定位，不做去重
func (p *Perceiver) detectMonsters(hsv *cv.HSVFrame, w, h int) []DetectedEntity {
	blobs := hsv.Locate(p.cfg.profiles[CategoryMonster])
	monsters := make([]DetectedEntity, 0, len(blobs))
	for _, b := range blobs {
		monsters = append(monsters, entityFromBlob(CategoryMonster, b, w, h))
	}
	return monsters
}

// detectItems 颜色候选与物品模板候选合并后去重
func (p *Perceiver) detectItems(frame gocv.Mat, hsv *cv.HSVFrame, w, h int) ([]DetectedEntity, error) {
	var cands []cv.MatchCandidate
	for _, b := range hsv.Locate(p.cfg.profiles[CategoryItem]) {
		cands = append(cands, b.Candidate())
	}

	matched, err := p.matchCategory(frame, CategoryItem)
	if err != nil {
		return nil, err
	}
	cands = append(cands, matched...)

	return p.toEntities(CategoryItem, cv.Suppress(cands, p.cfg.separation), w, h), nil
}

func (p *Perceiver) detectDoors(frame gocv.Mat, w, h int) ([]DetectedEntity, error) {
	cands, err := p.matchCategory(frame, CategoryDoor)
	if err != nil {
		return nil, err
	}
	return p.toEntities(CategoryDoor, cv.Suppress(cands, p.cfg.separation), w, h), nil
}

func (p *Perceiver) matchCategory(frame gocv.Mat, category Category) ([]cv.MatchCandidate, error) {
	if p.store == nil {
		return nil, nil
	}
	templates := p.store.Templates(category)
	if len(templates) == 0 {
		return nil, nil
	}
	return cv.MatchAll(frame, templates, p.cfg.matchOptions(category))
}

func (p *Perceiver) toEntities(category Category, cands []cv.MatchCandidate, w, h int) []DetectedEntity {
	entities := make([]DetectedEntity, 0, len(cands))
	for _, c := range cands {
		entities = append(entities, entityFromCandidate(category, c, w, h))
	}
	return entities
}

// LocatePlayer 返回角色位置
// 每隔 refreshInterval 帧重新定位一次，其余时间使用缓存；
// 定位失败时回退到帧中心，因此只有帧本身无效时才会返回错误
func (p *Perceiver) LocatePlayer(frame gocv.Mat) (DetectedEntity, error) {
	if err := cv.CheckFrame(frame); err != nil {
		return DetectedEntity{}, err
	}
	w, h := cv.GetResolution(frame)

	var locateErr error
	p.mu.Lock()
	entity, refreshed := p.cache.Lookup(cv.FrameCenter(frame), func() (DetectedEntity, bool) {
		start := time.Now()
		blob, ok, err := cv.LocatePlayer(frame, p.cfg.profiles[CategoryPlayer], p.cfg.weights)
		if err != nil {
			locateErr = err
			return DetectedEntity{}, false
		}
		logger.LogEvent("player", ok, time.Since(start), fmt.Sprintf("center=%s", blob.Center))
		if !ok {
			return DetectedEntity{}, false
		}
		return entityFromBlob(CategoryPlayer, blob, w, h), true
	})
	p.mu.Unlock()

	if locateErr != nil {
		return DetectedEntity{}, locateErr
	}
	if refreshed {
		logger.Debug("[感知] 角色位置刷新: %s (%s)", entity.Center, entity.Label)
	}
	return entity, nil
}

// Reset 新会话开始时清空角色缓存
func (p *Perceiver) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache.Reset()
}

// Cache 返回角色位置缓存
func (p *Perceiver) Cache() *PlayerCache {
	return p.cache
}

// Separation 返回去重距离
func (p *Perceiver) Separation() float64 {
	return p.cfg.separation
}
