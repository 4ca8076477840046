package cv

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrInvalidFrame 帧数据不合法（空图像或通道数不为 3）
var ErrInvalidFrame = errors.New("帧数据不合法")

// ReadImage 读取 BGR 彩色图像文件，解码失败时返回空 Mat
func ReadImage(filename string) (gocv.Mat, error) {
	mat := gocv.IMRead(filename, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("无法读取图像: %s", filename)
	}
	return mat, nil
}

// CheckFrame 校验帧是否为 3 通道 8 位彩色图
func CheckFrame(frame gocv.Mat) error {
	if frame.Empty() {
		return fmt.Errorf("%w: 图像为空", ErrInvalidFrame)
	}
	if frame.Channels() != 3 {
		return fmt.Errorf("%w: 通道数 %d", ErrInvalidFrame, frame.Channels())
	}
	if frame.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("%w: 类型 %v", ErrInvalidFrame, frame.Type())
	}
	return nil
}

// ToGray 转换为灰度图
func ToGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return dst
}

// GetResolution 获取图像分辨率 (width, height)
func GetResolution(img gocv.Mat) (int, int) {
	return img.Cols(), img.Rows()
}

// FrameCenter 返回帧的几何中心
func FrameCenter(frame gocv.Mat) Point {
	return Point{X: frame.Cols() / 2, Y: frame.Rows() / 2}
}

// ClampPoint 将坐标限制在 [0,w) x [0,h) 内
func ClampPoint(p Point, w, h int) Point {
	if w <= 0 || h <= 0 {
		return Point{}
	}
	p.X = max(0, min(p.X, w-1))
	p.Y = max(0, min(p.Y, h-1))
	return p
}

// ImageToMat 将 image.Image 转换为 gocv.Mat
// ImageToMatRGB 输出的已经是 BGR 字节序，无需再转换
func ImageToMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("图像转换失败: %w", err)
	}
	return mat, nil
}

// clamp01 将分数限制在 [0,1]
func clamp01(v float64) float64 {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
