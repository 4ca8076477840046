package cv

import "sort"

// DefaultMinSeparation 默认去重距离（像素）
const DefaultMinSeparation = 30.0

// Suppress 按置信度贪心去重
// 每次取剩余置信度最高的候选，丢弃与其距离小于 minSeparation 的其它候选。
// 置信度相同时保持输入顺序，先出现的优先。
func Suppress(cands []MatchCandidate, minSeparation float64) []MatchCandidate {
	if len(cands) == 0 {
		return nil
	}

	sorted := make([]MatchCandidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	if minSeparation <= 0 {
		return sorted
	}

	kept := make([]MatchCandidate, 0, len(sorted))
	for _, candidate := range sorted {
		drop := false
		for _, existing := range kept {
			if candidate.Position.DistanceTo(existing.Position) < minSeparation {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, candidate)
		}
	}
	return kept
}
