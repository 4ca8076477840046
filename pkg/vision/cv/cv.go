// Package cv 提供图像匹配与颜色定位功能
//
// 包含以下部分:
//   - 模板匹配 (Template Matching): 彩色 / 灰度两种表示的 TM_CCOEFF_NORMED
//   - 匹配校验 (Validator): 越界与亮度过滤
//   - 去重 (Suppress): 按置信度贪心抑制近邻匹配
//   - 颜色定位 (LocateBlobs): HSV 掩码 + 形态学 + 轮廓分析
//
// 基本用法:
//
//	store := cv.NewTemplateStore("templates")
//	store.LoadAll(cv.CategoryDoor, "door1.png", "door2.png")
//
//	cands, err := cv.MatchAll(frame, store.Templates(cv.CategoryDoor), cv.DefaultMatchOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doors := cv.Suppress(cands, 30)
//
//	blobs, err := cv.LocateBlobs(frame, cv.MonsterProfile())
package cv
