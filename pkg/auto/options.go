package auto

import "time"

// Option 配置选项函数类型
type Option func(*Options)

// Options 桌面配置
type Options struct {
	// Region 截图区域 (nil 表示全屏)
	Region *Region
	// FrameWidth / FrameHeight 会话帧尺寸，截图统一缩放到该尺寸；0 表示保持原尺寸
	FrameWidth  int
	FrameHeight int
	// KeyGap 连续按键之间的最小间隔
	KeyGap time.Duration
}

// DefaultOptions 默认配置
func DefaultOptions() *Options {
	return &Options{
		Region: nil,
		KeyGap: 30 * time.Millisecond,
	}
}

// ApplyOptions 应用配置选项
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRegion 设置截图区域，空区域表示全屏
func WithRegion(r Region) Option {
	return func(o *Options) {
		if r.Empty() {
			o.Region = nil
			return
		}
		o.Region = &r
	}
}

// WithFrameSize 设置会话帧尺寸
func WithFrameSize(width, height int) Option {
	return func(o *Options) {
		o.FrameWidth = width
		o.FrameHeight = height
	}
}

// WithKeyGap 设置按键间隔
func WithKeyGap(d time.Duration) Option {
	return func(o *Options) {
		o.KeyGap = d
	}
}
