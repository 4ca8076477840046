// Package input 提供键盘输入
package input

import (
	"context"
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

// KeyTap 按键
func KeyTap(key string, modifiers ...string) error {
	var err error
	if len(modifiers) > 0 {
		err = robotgo.KeyTap(key, modifiers)
	} else {
		err = robotgo.KeyTap(key)
	}
	if err != nil {
		return fmt.Errorf("按键 %s 失败: %w", key, err)
	}
	return nil
}

// KeyDown 按下键
func KeyDown(key string) error {
	if err := robotgo.KeyToggle(key, "down"); err != nil {
		return fmt.Errorf("按下 %s 失败: %w", key, err)
	}
	return nil
}

// KeyUp 释放键
func KeyUp(key string) error {
	if err := robotgo.KeyToggle(key, "up"); err != nil {
		return fmt.Errorf("释放 %s 失败: %w", key, err)
	}
	return nil
}

// KeyHold 按住键 d 时长后释放
// ctx 取消时立即释放，不会留下按住的键
func KeyHold(ctx context.Context, key string, d time.Duration) error {
	if err := KeyDown(key); err != nil {
		return err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	var waitErr error
	select {
	case <-ctx.Done():
		waitErr = ctx.Err()
	case <-timer.C:
	}

	if err := KeyUp(key); err != nil {
		return err
	}
	return waitErr
}
