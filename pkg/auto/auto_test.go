package auto

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/zoeyai/dungeonbot/pkg/vision/cv"
)

func TestRegion(t *testing.T) {
	if !(Region{}).Empty() {
		t.Error("零值区域应为空")
	}
	r := Region{X: 10, Y: 20, Width: 800, Height: 600}
	if r.Empty() {
		t.Error("区域不应为空")
	}
	if r.String() != "800x600+10+20" {
		t.Errorf("String() = %s", r)
	}
}

func TestSleep(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("Sleep 失败: %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Sleep 提前返回")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start = time.Now()
	if err := Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("取消后应返回 context.Canceled, 实际 %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("取消后应立即返回")
	}
}

func TestApplyOptions(t *testing.T) {
	o := ApplyOptions(
		WithRegion(Region{X: 1, Y: 2, Width: 300, Height: 200}),
		WithFrameSize(1920, 1080),
		WithKeyGap(0),
	)
	if o.Region == nil || o.Region.Width != 300 {
		t.Errorf("Region 错误: %+v", o.Region)
	}
	if o.FrameWidth != 1920 || o.FrameHeight != 1080 {
		t.Errorf("帧尺寸错误: %dx%d", o.FrameWidth, o.FrameHeight)
	}
	if o.KeyGap != 0 {
		t.Errorf("KeyGap 应为 0, 实际 %s", o.KeyGap)
	}

	o = ApplyOptions(WithRegion(Region{}))
	if o.Region != nil {
		t.Error("空区域应表示全屏")
	}
}

// TestDesktopFrame 需要图形桌面
func TestDesktopFrame(t *testing.T) {
	d := NewDesktop(WithFrameSize(320, 180))
	frame, err := d.Frame()
	if err != nil {
		t.Skipf("截屏失败 (可能没有图形桌面或权限): %v", err)
	}
	defer frame.Close()

	if err := cv.CheckFrame(frame); err != nil {
		t.Fatalf("帧不合法: %v", err)
	}
	if w, h := cv.GetResolution(frame); w != 320 || h != 180 {
		t.Errorf("帧应缩放到 320x180, 实际 %dx%d", w, h)
	}
}

func TestToFrame(t *testing.T) {
	errCapture := errors.New("截屏失败")
	frame, err := toFrame(nil, errCapture)
	if !errors.Is(err, errCapture) {
		t.Errorf("应透传截屏错误, 实际 %v", err)
	}
	if frame.Ptr() != nil {
		t.Error("出错时不应分配 Mat")
	}

	frame, err = toFrame(image.NewRGBA(image.Rect(0, 0, 6, 4)), nil)
	if err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	defer frame.Close()
	if w, h := cv.GetResolution(frame); w != 6 || h != 4 {
		t.Errorf("帧尺寸应为 6x4, 实际 %dx%d", w, h)
	}
}
