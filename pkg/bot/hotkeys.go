package bot

import (
	"context"
	"sync"
	"time"

	hook "github.com/robotn/gohook"

	"github.com/zoeyai/dungeonbot/internal/logger"
)

// hotkeyDebounce 按住不放时 KeyDown 会重复触发
const hotkeyDebounce = 500 * time.Millisecond

// debouncer 同一个按键在间隔内只触发一次
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, last: make(map[string]time.Time), now: time.Now}
}

func (d *debouncer) allow(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if last, ok := d.last[key]; ok && now.Sub(last) < d.window {
		return false
	}
	d.last[key] = now
	return true
}

// ListenHotkeys 注册全局热键：toggleKey 开始/暂停，stopKey 停止
// stopKey 触发时调用 stop；ctx 结束时卸载钩子。返回的 channel 在钩子卸载后关闭
func ListenHotkeys(ctx context.Context, b *Bot, toggleKey, stopKey string, stop context.CancelFunc) <-chan struct{} {
	d := newDebouncer(hotkeyDebounce)

	hook.Register(hook.KeyDown, []string{toggleKey}, func(e hook.Event) {
		if d.allow(toggleKey) {
			logger.Info("[热键] 检测到 %s", toggleKey)
			b.Toggle()
		}
	})
	hook.Register(hook.KeyDown, []string{stopKey}, func(e hook.Event) {
		if d.allow(stopKey) {
			logger.Info("[热键] 检测到 %s, 停止运行", stopKey)
			b.SetRunning(false)
			stop()
		}
	})

	events := hook.Start()
	done := make(chan struct{})
	go func() {
		<-hook.Process(events)
		close(done)
	}()
	go func() {
		<-ctx.Done()
		hook.End()
		logger.Debug("[热键] 已卸载")
	}()

	logger.Info("[热键] 已装载 %s:开始/暂停 %s:停止", toggleKey, stopKey)
	return done
}
