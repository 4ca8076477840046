package cv

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

var (
	pureRed   = color.RGBA{R: 255}
	deepRed   = color.RGBA{R: 255, B: 43} // 色相约 175，落在第二段红色区间
	pureGreen = color.RGBA{G: 255}
	gold      = color.RGBA{R: 255, G: 200}
)

func TestLocateBlobsHostileRectangle(t *testing.T) {
	frame := newFrame(t, 200, 200)
	// 10x15 的实心矩形（轮廓尺寸），左上角 (50,50)
	fillRect(&frame, image.Rect(50, 50, 61, 66), pureRed)

	blobs, err := LocateBlobs(frame, MonsterProfile())
	if err != nil {
		t.Fatalf("颜色定位失败: %v", err)
	}
	if len(blobs) != 1 {
		t.Fatalf("应检测到 1 个怪物, 实际 %d", len(blobs))
	}

	b := blobs[0]
	want := Point{X: 55, Y: 57}
	if abs(b.Center.X-want.X) > 1 || abs(b.Center.Y-want.Y) > 1 {
		t.Errorf("中心应约为 %s, 实际 %s", want, b.Center)
	}
	if b.Area < 100 {
		t.Errorf("面积应 >= 100, 实际 %.0f", b.Area)
	}
	if b.Confidence <= 0 || b.Confidence > 1 {
		t.Errorf("置信度应在 (0,1], 实际 %.3f", b.Confidence)
	}
	if b.Label != "monster_hp" {
		t.Errorf("标签应为 monster_hp, 实际 %s", b.Label)
	}
	t.Logf("怪物: %+v", b)
}

func TestLocateBlobsTwoHueIntervals(t *testing.T) {
	frame := newFrame(t, 200, 200)
	fillRect(&frame, image.Rect(20, 20, 40, 40), pureRed)
	fillRect(&frame, image.Rect(120, 120, 140, 140), deepRed)

	blobs, err := LocateBlobs(frame, MonsterProfile())
	if err != nil {
		t.Fatalf("颜色定位失败: %v", err)
	}
	if len(blobs) != 2 {
		t.Fatalf("两段红色区间应各检测到一个, 实际 %d", len(blobs))
	}

	lowOnly := MonsterProfile()
	lowOnly.Ranges = lowOnly.Ranges[:1]
	blobs, err = LocateBlobs(frame, lowOnly)
	if err != nil {
		t.Fatalf("颜色定位失败: %v", err)
	}
	if len(blobs) != 1 || blobs[0].Center.X > 100 {
		t.Errorf("只有低色相区间时应只检测到左上角区域, 实际 %+v", blobs)
	}
}

func TestLocateBlobsAreaFilter(t *testing.T) {
	frame := newFrame(t, 200, 200)
	fillRect(&frame, image.Rect(10, 10, 16, 16), pureRed)     // 面积 25
	fillRect(&frame, image.Rect(100, 100, 130, 120), pureRed) // 面积 551

	blobs, err := LocateBlobs(frame, MonsterProfile())
	if err != nil {
		t.Fatalf("颜色定位失败: %v", err)
	}
	if len(blobs) != 1 {
		t.Fatalf("小区域应被过滤, 实际 %d 个", len(blobs))
	}

	bounded := MonsterProfile()
	bounded.MaxArea = 500
	blobs, _ = LocateBlobs(frame, bounded)
	if len(blobs) != 0 {
		t.Errorf("超过面积上限应被过滤, 实际 %d 个", len(blobs))
	}
}

func TestLocateBlobsEmptyFrame(t *testing.T) {
	frame := newFrame(t, 100, 100)
	for _, p := range []ColorProfile{MonsterProfile(), ItemProfile(), PlayerProfile()} {
		blobs, err := LocateBlobs(frame, p)
		if err != nil {
			t.Fatalf("%s 定位失败: %v", p.Name, err)
		}
		if len(blobs) != 0 {
			t.Errorf("%s 在全黑帧上不应有结果, 实际 %d", p.Name, len(blobs))
		}
	}

	empty := gocv.NewMat()
	defer empty.Close()
	if _, err := LocateBlobs(empty, MonsterProfile()); err == nil {
		t.Error("空帧应返回错误")
	}
}

func TestLocateBlobsItems(t *testing.T) {
	frame := newFrame(t, 200, 200)
	fillRect(&frame, image.Rect(60, 60, 72, 72), gold)

	blobs, err := LocateBlobs(frame, ItemProfile())
	if err != nil {
		t.Fatalf("颜色定位失败: %v", err)
	}
	if len(blobs) != 1 {
		t.Fatalf("应检测到 1 个物品, 实际 %d", len(blobs))
	}
	if abs(blobs[0].Center.X-66) > 1 || abs(blobs[0].Center.Y-66) > 1 {
		t.Errorf("物品中心错误: %s", blobs[0].Center)
	}
}

func TestLocatePlayer(t *testing.T) {
	frame := newFrame(t, 400, 400)
	// 名字标签 40x10，角色在标签底边下方 40 像素
	fillRect(&frame, image.Rect(180, 150, 220, 160), pureGreen)

	blob, ok, err := LocatePlayer(frame, PlayerProfile(), DefaultScoreWeights())
	if err != nil {
		t.Fatalf("定位角色失败: %v", err)
	}
	if !ok {
		t.Fatal("应找到角色")
	}
	want := Point{X: 200, Y: 200}
	if abs(blob.Center.X-want.X) > 1 || abs(blob.Center.Y-want.Y) > 1 {
		t.Errorf("角色位置应约为 %s, 实际 %s", want, blob.Center)
	}
}

func TestLocatePlayerRejectsShapes(t *testing.T) {
	tests := []struct {
		name string
		rect image.Rectangle
	}{
		{"square tag", image.Rect(180, 150, 200, 170)},
		{"too narrow", image.Rect(190, 150, 208, 155)},
		{"near edge", image.Rect(10, 20, 50, 30)},
		{"too large", image.Rect(100, 120, 300, 140)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := newFrame(t, 400, 400)
			fillRect(&frame, tt.rect, pureGreen)

			_, ok, err := LocatePlayer(frame, PlayerProfile(), DefaultScoreWeights())
			if err != nil {
				t.Fatalf("定位角色失败: %v", err)
			}
			if ok {
				t.Errorf("%s 不应被识别为角色", tt.name)
			}
		})
	}
}

func TestPickBest(t *testing.T) {
	blobs := []Blob{
		{Center: Point{X: 50, Y: 50}, Area: 100},
		{Center: Point{X: 200, Y: 200}, Area: 100},
		{Center: Point{X: 390, Y: 390}, Area: 300},
	}
	w := DefaultScoreWeights()

	best, ok := PickBest(blobs, 400, 400, w)
	if !ok {
		t.Fatal("应选出候选")
	}
	if best.Center != (Point{X: 390, Y: 390}) {
		t.Errorf("面积大的候选应胜出, 实际 %s", best.Center)
	}

	// 面积相同时离中心近的胜出
	best, _ = PickBest(blobs[:2], 400, 400, w)
	if best.Center != (Point{X: 200, Y: 200}) {
		t.Errorf("离中心近的候选应胜出, 实际 %s", best.Center)
	}

	// 得分不大于 0 的候选不选
	tiny := []Blob{{Center: Point{X: 0, Y: 0}, Area: 1}}
	if _, ok := PickBest(tiny, 400, 400, w); ok {
		t.Error("得分 <= 0 的候选不应被选中")
	}
	if _, ok := PickBest(nil, 400, 400, w); ok {
		t.Error("空候选不应被选中")
	}

	score := w.Score(blobs[0], 400, 400)
	want := 0.1*100 - 0.01*math.Hypot(150, 150)
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("Score = %.4f, 期望 %.4f", score, want)
	}
}

func TestColorProfileValidate(t *testing.T) {
	for _, p := range []ColorProfile{MonsterProfile(), ItemProfile(), PlayerProfile()} {
		if err := p.Validate(); err != nil {
			t.Errorf("默认配置 %s 应合法: %v", p.Name, err)
		}
	}

	bad := ItemProfile()
	bad.Ranges = nil
	if bad.Validate() == nil {
		t.Error("没有区间应报错")
	}

	bad = ItemProfile()
	bad.Ranges[0].Lower[0] = 50
	if bad.Validate() == nil {
		t.Error("下限大于上限应报错")
	}

	bad = PlayerProfile()
	bad.MaxArea = 10
	if bad.Validate() == nil {
		t.Error("面积区间倒置应报错")
	}
}

func TestHSVFrameReuse(t *testing.T) {
	frame := newFrame(t, 200, 200)
	fillRect(&frame, image.Rect(50, 50, 70, 70), pureRed)
	fillRect(&frame, image.Rect(120, 120, 135, 135), gold)

	hsv, err := NewHSVFrame(frame)
	if err != nil {
		t.Fatalf("转换 HSV 失败: %v", err)
	}
	defer hsv.Close()

	if n := len(hsv.Locate(MonsterProfile())); n != 1 {
		t.Errorf("应检测到 1 个怪物, 实际 %d", n)
	}
	if n := len(hsv.Locate(ItemProfile())); n != 1 {
		t.Errorf("应检测到 1 个物品, 实际 %d", n)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func BenchmarkLocateBlobs(b *testing.B) {
	frame := newNoiseFrame(b, 800, 600)
	p := MonsterProfile()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LocateBlobs(frame, p)
	}
}
