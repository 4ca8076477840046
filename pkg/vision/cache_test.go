package vision

import (
	"fmt"
	"testing"
)

func TestPlayerCacheStaleness(t *testing.T) {
	cache := NewPlayerCache(3)
	calls := 0
	locate := func() (DetectedEntity, bool) {
		calls++
		return DetectedEntity{Category: CategoryPlayer, Center: NewPoint(calls*10, 5)}, true
	}

	var refreshedAt []int
	for i := 1; i <= 7; i++ {
		entity, refreshed := cache.Lookup(NewPoint(50, 50), locate)
		if refreshed {
			refreshedAt = append(refreshedAt, i)
		}
		if entity.Center.X != calls*10 {
			t.Errorf("第 %d 次应返回最近一次定位结果, 实际 %s", i, entity.Center)
		}
	}

	// 间隔 3：第 1、3、6 次调用重新定位
	want := []int{1, 3, 6}
	if len(refreshedAt) != len(want) {
		t.Fatalf("刷新时机 %v, 期望 %v", refreshedAt, want)
	}
	for i := range want {
		if refreshedAt[i] != want[i] {
			t.Errorf("刷新时机 %v, 期望 %v", refreshedAt, want)
			break
		}
	}
	if calls != 3 || cache.Refreshes() != 3 {
		t.Errorf("应定位 3 次, 实际 calls=%d refreshes=%d", calls, cache.Refreshes())
	}
}

func TestPlayerCacheRefreshCadence(t *testing.T) {
	tests := []struct {
		interval int
		calls    int
		want     []int
	}{
		{interval: 1, calls: 3, want: []int{1, 2, 3}},
		{interval: 2, calls: 4, want: []int{1, 2, 4}},
		{interval: 3, calls: 3, want: []int{1, 3}},
		{interval: 5, calls: 5, want: []int{1, 5}},
		{interval: 5, calls: 10, want: []int{1, 5, 10}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("N=%d/calls=%d", tt.interval, tt.calls), func(t *testing.T) {
			cache := NewPlayerCache(tt.interval)
			var located []int
			for i := 1; i <= tt.calls; i++ {
				cache.Lookup(NewPoint(5, 5), func() (DetectedEntity, bool) {
					located = append(located, i)
					return DetectedEntity{}, true
				})
			}
			if fmt.Sprint(located) != fmt.Sprint(tt.want) {
				t.Errorf("定位发生在第 %v 次调用, 期望 %v", located, tt.want)
			}
		})
	}
}

func TestPlayerCacheFallback(t *testing.T) {
	cache := NewPlayerCache(5)
	notFound := func() (DetectedEntity, bool) { return DetectedEntity{}, false }

	entity, refreshed := cache.Lookup(NewPoint(320, 240), notFound)
	if !refreshed {
		t.Error("首次调用应定位")
	}
	if entity.Center != NewPoint(320, 240) {
		t.Errorf("找不到时应回退到帧中心, 实际 %s", entity.Center)
	}
	if entity.Label != "fallback" || entity.Confidence != 0 {
		t.Errorf("回退结果标记错误: %+v", entity)
	}

	// 回退位置同样会被缓存
	again, refreshed := cache.Lookup(NewPoint(320, 240), func() (DetectedEntity, bool) {
		t.Error("缓存未过期时不应定位")
		return DetectedEntity{}, false
	})
	if refreshed || again.Center != entity.Center {
		t.Errorf("应返回缓存的回退位置, 实际 %s", again.Center)
	}
}

func TestPlayerCacheIntervalNormalised(t *testing.T) {
	for _, interval := range []int{0, -2, 1} {
		cache := NewPlayerCache(interval)
		if cache.Interval() != 1 {
			t.Errorf("interval=%d 应归一化为 1, 实际 %d", interval, cache.Interval())
		}
		calls := 0
		for i := 0; i < 4; i++ {
			cache.Lookup(NewPoint(5, 5), func() (DetectedEntity, bool) {
				calls++
				return DetectedEntity{}, false
			})
		}
		if calls != 4 {
			t.Errorf("间隔为 1 时每次都应定位, 实际 %d 次", calls)
		}
	}
}

func TestPlayerCacheReset(t *testing.T) {
	cache := NewPlayerCache(10)
	if _, ok := cache.Position(); ok {
		t.Error("初始时不应有位置")
	}

	found := func() (DetectedEntity, bool) {
		return DetectedEntity{Center: NewPoint(1, 2)}, true
	}
	cache.Lookup(NewPoint(5, 5), found)
	if p, ok := cache.Position(); !ok || p != NewPoint(1, 2) {
		t.Errorf("Position() = %s, %v", p, ok)
	}
	if !cache.Fresh() {
		t.Error("刚定位后应为 Fresh")
	}
	cache.Lookup(NewPoint(5, 5), found)
	if cache.Fresh() {
		t.Error("使用缓存后不应为 Fresh")
	}

	cache.Reset()
	if _, ok := cache.Position(); ok {
		t.Error("Reset 后不应有位置")
	}
	if cache.Refreshes() != 0 {
		t.Error("Reset 后计数应清零")
	}

	calls := 0
	cache.Lookup(NewPoint(5, 5), func() (DetectedEntity, bool) {
		calls++
		return DetectedEntity{}, true
	})
	if calls != 1 {
		t.Error("Reset 后首次调用应重新定位")
	}
}
