// Package screen 提供屏幕截图、缩放和编码功能
package screen

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"golang.org/x/image/draw"
)

// CaptureScreen 截取全屏
func CaptureScreen() (image.Image, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}
	return img, nil
}

// CaptureRegion 截取屏幕区域
func CaptureRegion(x, y, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("截图区域无效: %dx%d", width, height)
	}
	img, err := robotgo.CaptureImg(x, y, width, height)
	if err != nil {
		return nil, fmt.Errorf("截取区域失败: %w", err)
	}
	return img, nil
}

// Resize 把图像缩放到 width x height
// 尺寸已经一致时直接返回原图
func Resize(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if width <= 0 || height <= 0 || (b.Dx() == width && b.Dy() == height) {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// CaptureFrame 截图并缩放到固定的会话帧尺寸
// width/height 为 0 时整屏截图；frameW/frameH 为 0 时保持原尺寸
func CaptureFrame(x, y, width, height, frameW, frameH int) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	if width > 0 && height > 0 {
		img, err = CaptureRegion(x, y, width, height)
	} else {
		img, err = CaptureScreen()
	}
	if err != nil {
		return nil, err
	}
	return Resize(img, frameW, frameH), nil
}

// GetScreenSize 获取主屏幕尺寸
func GetScreenSize() (width, height int) {
	return robotgo.GetScreenSize()
}

// GetDisplayCount 获取显示器数量
func GetDisplayCount() int {
	return robotgo.DisplaysNum()
}
