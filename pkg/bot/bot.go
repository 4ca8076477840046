// Package bot 实现刷图决策循环：截图 -> 感知 -> 决策 -> 按键
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/zoeyai/dungeonbot/internal/logger"
	"github.com/zoeyai/dungeonbot/pkg/auto"
	"github.com/zoeyai/dungeonbot/pkg/config"
	"github.com/zoeyai/dungeonbot/pkg/vision"
)

// FrameSource 帧来源，成功返回的帧由调用方 Close，出错时返回空 Mat
type FrameSource interface {
	Frame() (gocv.Mat, error)
}

// Controller 按键注入
type Controller interface {
	Tap(ctx context.Context, key string) error
	Hold(ctx context.Context, key string, d time.Duration) error
}

// Perception 感知接口，由 *vision.Perceiver 实现
type Perception interface {
	Detect(frame gocv.Mat) (*vision.Detections, error)
	LocatePlayer(frame gocv.Mat) (vision.DetectedEntity, error)
	Reset()
}

const (
	// approachPause 移动结束后、动作之前的停顿
	approachPause = 200 * time.Millisecond
	// doorPause 走到门口后、按进门键之前的停顿
	doorPause = 500 * time.Millisecond
	// defaultErrorBackoff 单帧失败后的等待
	defaultErrorBackoff = time.Second
)

// Stats 运行统计
type Stats struct {
	Frames      int `json:"frames"`
	Skipped     int `json:"skipped"`
	Attacks     int `json:"attacks"`
	Pickups     int `json:"pickups"`
	Transitions int `json:"transitions"`
}

// Bot 刷图机器人
type Bot struct {
	cfg        *config.Config
	source     FrameSource
	controller Controller
	perception Perception

	running      atomic.Bool
	errorBackoff time.Duration

	mu    sync.Mutex
	stats Stats
}

// New 创建机器人，初始为暂停状态
func New(cfg *config.Config, source FrameSource, controller Controller, perception Perception) *Bot {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Bot{
		cfg:          cfg,
		source:       source,
		controller:   controller,
		perception:   perception,
		errorBackoff: defaultErrorBackoff,
	}
}

// Running 是否在运行
func (b *Bot) Running() bool {
	return b.running.Load()
}

// SetRunning 设置运行状态
func (b *Bot) SetRunning(running bool) {
	if b.running.Swap(running) != running {
		b.logState(running)
	}
}

// Toggle 切换运行 / 暂停，返回切换后的状态
func (b *Bot) Toggle() bool {
	for {
		old := b.running.Load()
		if b.running.CompareAndSwap(old, !old) {
			b.logState(!old)
			return !old
		}
	}
}

func (b *Bot) logState(running bool) {
	if running {
		logger.Info("[机器人] 开始运行")
	} else {
		logger.Info("[机器人] 暂停运行")
	}
}

// Stats 返回运行统计
func (b *Bot) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

func (b *Bot) record(fn func(s *Stats)) {
	b.mu.Lock()
	fn(&b.stats)
	b.mu.Unlock()
}

// Run 主循环，ctx 取消时返回
// 暂停时只等待；单帧失败时跳过该帧并等待一段时间
func (b *Bot) Run(ctx context.Context) error {
	logger.Info("[机器人] 主循环启动，按 %s 开始/暂停，按 %s 停止", b.cfg.Keys.Toggle, b.cfg.Keys.Stop)
	b.perception.Reset()

	loopDelay := config.Duration(b.cfg.Delays.MainLoop)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if !b.Running() {
			if err := auto.Sleep(ctx, loopDelay); err != nil {
				return nil
			}
			continue
		}

		decision, err := b.Step(ctx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		default:
			b.record(func(s *Stats) { s.Skipped++ })
			logger.Warn("[机器人] 跳过本帧: %v", err)
			if err := auto.Sleep(ctx, b.errorBackoff); err != nil {
				return nil
			}
			continue
		}

		if decision.Action == ActionIdle {
			if err := auto.Sleep(ctx, loopDelay); err != nil {
				return nil
			}
		}
	}
}

// Step 执行一帧：截图、感知、决策并执行动作
func (b *Bot) Step(ctx context.Context) (Decision, error) {
	frame, err := b.source.Frame()
	if err != nil {
		return Decision{}, fmt.Errorf("截图失败: %w", err)
	}
	defer frame.Close()
	b.record(func(s *Stats) { s.Frames++ })

	player, err := b.perception.LocatePlayer(frame)
	if err != nil {
		return Decision{}, fmt.Errorf("定位角色失败: %w", err)
	}
	detections, err := b.perception.Detect(frame)
	if err != nil {
		return Decision{}, fmt.Errorf("感知失败: %w", err)
	}

	decision := Decide(detections, player)
	if decision.Action != ActionIdle {
		logger.Info("[机器人] 怪物 %d 物品 %d 门 %d | %s",
			len(detections.Monsters), len(detections.Items), len(detections.Doors), decision)
	}
	return decision, b.act(ctx, decision)
}

func (b *Bot) act(ctx context.Context, d Decision) error {
	keys := b.cfg.Keys
	delays := b.cfg.Delays

	switch d.Action {
	case ActionAttack:
		if err := b.approach(ctx, d, approachPause); err != nil {
			return err
		}
		if err := b.controller.Tap(ctx, keys.Attack); err != nil {
			return err
		}
		b.record(func(s *Stats) { s.Attacks++ })
		return auto.Sleep(ctx, config.Duration(delays.Attack))

	case ActionCollect:
		if err := b.approach(ctx, d, approachPause); err != nil {
			return err
		}
		if err := b.controller.Tap(ctx, keys.Pickup); err != nil {
			return err
		}
		b.record(func(s *Stats) { s.Pickups++ })
		return auto.Sleep(ctx, config.Duration(delays.Pickup))

	case ActionTransition:
		if err := b.approach(ctx, d, doorPause); err != nil {
			return err
		}
		if err := b.controller.Tap(ctx, keys.EnterDoor); err != nil {
			return err
		}
		b.record(func(s *Stats) { s.Transitions++ })
		// 新房间里角色位置需要重新定位
		b.perception.Reset()
		return auto.Sleep(ctx, config.Duration(delays.DoorEnter))
	}
	return nil
}

// approach 按住方向键靠近目标，然后停顿 pause
func (b *Bot) approach(ctx context.Context, d Decision, pause time.Duration) error {
	hold := config.Duration(b.cfg.Delays.Movement)
	for _, h := range Steps(d.Player.Center, d.Target.Center, b.cfg.Thresholds.Movement) {
		if err := b.controller.Hold(ctx, h.Key(b.cfg.Keys), hold); err != nil {
			return err
		}
	}
	return auto.Sleep(ctx, pause)
}
