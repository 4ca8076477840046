package permissions

import (
	"strings"
	"testing"
)

func TestStatus(t *testing.T) {
	all := Status{Accessibility: true, ScreenRecording: true}
	if !all.Granted() || len(all.Missing()) != 0 || all.Instructions() != "" {
		t.Errorf("全部授权时不应有提示: %+v", all)
	}

	partial := Status{Accessibility: true}
	if partial.Granted() {
		t.Error("缺少屏幕录制时不应视为已授权")
	}
	missing := partial.Missing()
	if len(missing) != 1 || missing[0] != "屏幕录制" {
		t.Errorf("Missing() = %v", missing)
	}
	if msg := partial.Instructions(); !strings.Contains(msg, "屏幕录制") || strings.Contains(msg, "辅助功能 (") {
		t.Errorf("说明内容错误: %s", msg)
	}
}

func TestCheck(t *testing.T) {
	s := Check()
	t.Logf("权限状态: %+v", s)
	if !s.Granted() {
		t.Logf("缺少权限: %v", s.Missing())
	}
}
