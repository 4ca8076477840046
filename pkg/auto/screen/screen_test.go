package screen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	return img
}

func TestResize(t *testing.T) {
	img := testImage(200, 100)

	out := Resize(img, 100, 50)
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("应缩放到 100x50, 实际 %dx%d", b.Dx(), b.Dy())
	}

	if Resize(img, 200, 100) != image.Image(img) {
		t.Error("尺寸一致时应返回原图")
	}
	if Resize(img, 0, 0) != image.Image(img) {
		t.Error("目标尺寸为 0 时应返回原图")
	}

	// 纯色区域缩放后颜色不变
	_, _, b, _ := out.At(50, 25).RGBA()
	if b>>8 != 100 {
		t.Errorf("蓝色通道应保持 100, 实际 %d", b>>8)
	}
}

func TestEncode(t *testing.T) {
	img := testImage(16, 8)

	data, err := Encode(img, "", 0)
	if err != nil {
		t.Fatalf("PNG 编码失败: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("PNG 解码失败: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("尺寸不一致: %v", decoded.Bounds())
	}

	if _, err := Encode(img, "jpg", 50); err != nil {
		t.Errorf("JPEG 编码失败: %v", err)
	}
	if _, err := Encode(img, "bmp", 0); err == nil {
		t.Error("不支持的格式应报错")
	}
	if _, err := Encode(nil, "png", 0); err == nil {
		t.Error("空图像应报错")
	}
}

func TestSaveImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door1.png")
	if err := SaveImage(path, testImage(10, 10)); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("文件应已写入: %v", err)
	}
}

func TestCaptureRegionInvalid(t *testing.T) {
	if _, err := CaptureRegion(0, 0, 0, 10); err == nil {
		t.Error("零宽区域应报错")
	}
}
