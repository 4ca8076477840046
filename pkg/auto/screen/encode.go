package screen

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// Encode 将图像编码为 png 或 jpeg
// format 为空时使用 png（制作模板需要无损），quality 只对 jpeg 生效，默认 90
func Encode(img image.Image, format string, quality int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("图像为空")
	}
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "", "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("PNG 编码失败: %w", err)
		}
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("JPEG 编码失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的图像格式: %s", format)
	}
	return buf.Bytes(), nil
}

// SaveImage 按扩展名编码并写入文件
func SaveImage(path string, img image.Image) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	data, err := Encode(img, format, 0)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入图像失败: %w", err)
	}
	return nil
}
