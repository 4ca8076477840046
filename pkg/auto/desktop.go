package auto

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/zoeyai/dungeonbot/pkg/auto/input"
	"github.com/zoeyai/dungeonbot/pkg/auto/screen"
	"github.com/zoeyai/dungeonbot/pkg/vision/cv"
)

// Desktop 真实桌面：截图作为帧来源，按键注入游戏窗口
type Desktop struct {
	opts *Options

	mu      sync.Mutex
	lastKey time.Time
}

// NewDesktop 创建桌面
func NewDesktop(opts ...Option) *Desktop {
	return &Desktop{opts: ApplyOptions(opts...)}
}

// Options 返回当前配置
func (d *Desktop) Options() Options {
	return *d.opts
}

// Capture 截图并缩放到会话帧尺寸
func (d *Desktop) Capture() (image.Image, error) {
	r := Region{}
	if d.opts.Region != nil {
		r = *d.opts.Region
	}
	return screen.CaptureFrame(r.X, r.Y, r.Width, r.Height, d.opts.FrameWidth, d.opts.FrameHeight)
}

// Frame 截取一帧 BGR 图像，调用方负责 Close
// 出错时返回未分配的空 Mat，无需 Close
func (d *Desktop) Frame() (gocv.Mat, error) {
	return toFrame(d.Capture())
}

func toFrame(img image.Image, err error) (gocv.Mat, error) {
	if err != nil {
		return gocv.Mat{}, err
	}
	mat, err := cv.ImageToMat(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("帧转换失败: %w", err)
	}
	return mat, nil
}

// Snapshot 截一帧保存到文件，用于制作模板
func (d *Desktop) Snapshot(path string) error {
	img, err := d.Capture()
	if err != nil {
		return err
	}
	return screen.SaveImage(path, img)
}

// Tap 按一次键
func (d *Desktop) Tap(ctx context.Context, key string) error {
	if err := d.waitGap(ctx); err != nil {
		return err
	}
	return input.KeyTap(key)
}

// Hold 按住键一段时间
func (d *Desktop) Hold(ctx context.Context, key string, dur time.Duration) error {
	if err := d.waitGap(ctx); err != nil {
		return err
	}
	return input.KeyHold(ctx, key, dur)
}

// waitGap 保证两次按键之间至少间隔 KeyGap
func (d *Desktop) waitGap(ctx context.Context) error {
	d.mu.Lock()
	wait := d.opts.KeyGap - time.Since(d.lastKey)
	d.lastKey = time.Now().Add(max(wait, 0))
	d.mu.Unlock()

	return Sleep(ctx, wait)
}
