package vision

import (
	"github.com/zoeyai/dungeonbot/pkg/config"
	"github.com/zoeyai/dungeonbot/pkg/vision/cv"
)

// Option 感知器配置选项函数类型
type Option func(*perceiverConfig)

// perceiverConfig 感知器内部配置
type perceiverConfig struct {
	thresholds      map[Category]float64
	profiles        map[Category]cv.ColorProfile
	weights         cv.ScoreWeights
	separation      float64
	refreshInterval int
	validator       cv.Validator
	maxResults      int
}

func defaultPerceiverConfig() *perceiverConfig {
	return &perceiverConfig{
		thresholds: map[Category]float64{
			CategoryDoor: cv.DefaultMatchThreshold,
			CategoryItem: cv.DefaultMatchThreshold,
		},
		profiles: map[Category]cv.ColorProfile{
			CategoryMonster: cv.MonsterProfile(),
			CategoryItem:    cv.ItemProfile(),
			CategoryPlayer:  cv.PlayerProfile(),
		},
		weights:         cv.DefaultScoreWeights(),
		separation:      cv.DefaultMinSeparation,
		refreshInterval: DefaultRefreshInterval,
		validator:       cv.DefaultValidator(),
		maxResults:      cv.MaxResultCount,
	}
}

func (c *perceiverConfig) matchOptions(category Category) cv.MatchOptions {
	return cv.MatchOptions{
		Threshold:  c.thresholds[category],
		Validator:  c.validator,
		MaxResults: c.maxResults,
	}
}

// WithMatchThreshold 设置某个模板类别的匹配阈值 (0-1)
func WithMatchThreshold(category Category, threshold float64) Option {
	return func(c *perceiverConfig) {
		if category.HasTemplates() {
			c.thresholds[category] = threshold
		}
	}
}

// WithMinArea 设置某个颜色类别的最小轮廓面积
func WithMinArea(category Category, area float64) Option {
	return func(c *perceiverConfig) {
		if p, ok := c.profiles[category]; ok {
			p.MinArea = area
			c.profiles[category] = p
		}
	}
}

// WithSeparation 设置去重距离（像素）
func WithSeparation(px float64) Option {
	return func(c *perceiverConfig) {
		c.separation = px
	}
}

// WithRefreshInterval 设置角色位置刷新间隔（帧）
func WithRefreshInterval(n int) Option {
	return func(c *perceiverConfig) {
		c.refreshInterval = n
	}
}

// WithBrightness 设置匹配区域亮度区间
func WithBrightness(min, max float64) Option {
	return func(c *perceiverConfig) {
		c.validator = cv.Validator{MinBrightness: min, MaxBrightness: max}
	}
}

// WithMaxResults 设置单个模板最多保留的候选数
func WithMaxResults(n int) Option {
	return func(c *perceiverConfig) {
		c.maxResults = n
	}
}

// WithProfiles 替换颜色定位配置，只覆盖传入的类别
func WithProfiles(profiles map[Category]cv.ColorProfile) Option {
	return func(c *perceiverConfig) {
		for category, p := range profiles {
			if category == CategoryDoor {
				continue
			}
			c.profiles[category] = p
		}
	}
}

// WithScoreWeights 设置角色候选评分权重
func WithScoreWeights(w cv.ScoreWeights) Option {
	return func(c *perceiverConfig) {
		c.weights = w
	}
}

// WithConfig 从配置文件映射全部感知参数
func WithConfig(cfg *config.Config) Option {
	return func(c *perceiverConfig) {
		if cfg == nil {
			return
		}
		th := cfg.Thresholds

		c.thresholds[CategoryDoor] = th.DoorMatch
		c.thresholds[CategoryItem] = th.ItemMatch
		c.separation = float64(th.MinSeparation)
		c.validator = cv.Validator{MinBrightness: th.MinBrightness, MaxBrightness: th.MaxBrightness}
		c.refreshInterval = cfg.Player.RefreshInterval

		monster := cv.MonsterProfile()
		monster.Ranges = hsvRanges(cfg.Colors.MonsterHP)
		monster.MinArea = float64(th.MonsterArea)
		c.profiles[CategoryMonster] = monster

		item := cv.ItemProfile()
		item.Ranges = hsvRanges(cfg.Colors.GoldItems)
		item.MinArea = float64(th.ItemArea)
		c.profiles[CategoryItem] = item

		player := cv.PlayerProfile()
		player.Ranges = hsvRanges(cfg.Colors.PlayerTag)
		player.MinArea = float64(th.PlayerMinArea)
		player.MaxArea = float64(th.PlayerMaxArea)
		player.Offset = Point{X: 0, Y: cfg.Player.TagOffset}
		player.EdgeMargin = cfg.Player.EdgeMargin
		c.profiles[CategoryPlayer] = player

		c.weights.AreaWeight = cfg.Player.AreaWeight
		c.weights.DistanceWeight = cfg.Player.DistanceWeight
	}
}

func hsvRanges(ranges []config.ColorRange) []cv.HSVRange {
	out := make([]cv.HSVRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, cv.HSVRange{
			Lower: [3]float64{float64(r.Lower[0]), float64(r.Lower[1]), float64(r.Lower[2])},
			Upper: [3]float64{float64(r.Upper[0]), float64(r.Upper[1]), float64(r.Upper[2])},
		})
	}
	return out
}
