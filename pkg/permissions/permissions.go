// Package permissions 检查截图和按键注入需要的系统权限
package permissions

import "strings"

// Status 权限状态
type Status struct {
	// Accessibility 辅助功能，用于向游戏窗口发送按键
	Accessibility bool `json:"accessibility"`
	// ScreenRecording 屏幕录制，用于截取游戏画面
	ScreenRecording bool `json:"screen_recording"`
}

// Granted 是否所有权限都已授予
func (s Status) Granted() bool {
	return s.Accessibility && s.ScreenRecording
}

// Missing 返回缺失的权限名
func (s Status) Missing() []string {
	var missing []string
	if !s.Accessibility {
		missing = append(missing, "辅助功能")
	}
	if !s.ScreenRecording {
		missing = append(missing, "屏幕录制")
	}
	return missing
}

// Instructions 返回授权说明，全部授予时为空
func (s Status) Instructions() string {
	if s.Granted() {
		return ""
	}

	var b strings.Builder
	b.WriteString("需要授权以下权限才能运行:\n")
	if !s.Accessibility {
		b.WriteString("  - 辅助功能 (发送攻击 / 移动按键): 系统设置 > 隐私与安全性 > 辅助功能\n")
	}
	if !s.ScreenRecording {
		b.WriteString("  - 屏幕录制 (截取游戏画面): 系统设置 > 隐私与安全性 > 屏幕录制\n")
	}
	b.WriteString("授权后需要重启程序。")
	return b.String()
}
