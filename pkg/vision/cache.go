package vision

// DefaultRefreshInterval 默认每隔多少帧刷新一次角色位置
const DefaultRefreshInterval = 5

// PlayerCache 角色位置缓存
// 只允许当前感知调用写入，同一会话不会并发调用
type PlayerCache struct {
	last               *DetectedEntity
	framesSinceRefresh int
	refreshInterval    int
	refreshes          int
	fresh              bool
}

// NewPlayerCache 创建缓存，interval <= 0 时每帧刷新
func NewPlayerCache(interval int) *PlayerCache {
	if interval <= 0 {
		interval = 1
	}
	return &PlayerCache{refreshInterval: interval}
}

// Lookup 获取角色位置
// 计数器先自增；尚无记录或达到刷新间隔时调用 locate，找不到时回退到 fallback。
// 首次定位的那一帧计入间隔，间隔为 N 时在第 1、N、2N... 次调用定位。
func (c *PlayerCache) Lookup(fallback Point, locate func() (DetectedEntity, bool)) (DetectedEntity, bool) {
	c.framesSinceRefresh++
	first := c.last == nil
	if !first && c.framesSinceRefresh < c.refreshInterval {
		c.fresh = false
		return *c.last, false
	}

	entity, ok := locate()
	if !ok {
		entity = DetectedEntity{
			Category: CategoryPlayer,
			Center:   fallback,
			Label:    "fallback",
		}
	}
	c.last = &entity
	if !first {
		c.framesSinceRefresh = 0
	}
	c.refreshes++
	c.fresh = true
	return entity, true
}

// Position 返回最近一次记录的位置
func (c *PlayerCache) Position() (Point, bool) {
	if c.last == nil {
		return Point{}, false
	}
	return c.last.Center, true
}

// Fresh 最近一次调用是否刚刷新过
func (c *PlayerCache) Fresh() bool {
	return c.fresh
}

// Refreshes 返回累计刷新次数
func (c *PlayerCache) Refreshes() int {
	return c.refreshes
}

// Interval 返回刷新间隔
func (c *PlayerCache) Interval() int {
	return c.refreshInterval
}

// Reset 会话开始时清空状态
func (c *PlayerCache) Reset() {
	c.last = nil
	c.framesSinceRefresh = 0
	c.refreshes = 0
	c.fresh = false
}
