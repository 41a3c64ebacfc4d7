package parser

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ResolveOptions 列名解析选项
type ResolveOptions struct {
	// Preferred 在精确/子串两档命中多个候选时优先返回的列名
	// （用于固定某合作方文件里反复出现的表头变体）
	Preferred string
	// FuzzyThreshold 模糊档最低相似度，零值取 0.65
	FuzzyThreshold float64
}

// ResolveColumn 把实际列标签映射到关键词组
// 命中顺序：规范化精确相等 → 子串包含 → 编辑距离相似度兜底；无命中返回 ("", false)
// 纯函数，整表只需按字段调用一次
func ResolveColumn(labels []string, keywords []string, opts ResolveOptions) (string, bool) {
	threshold := opts.FuzzyThreshold
	if threshold == 0 {
		threshold = 0.65
	}

	normLabels := make([]string, len(labels))
	for i, l := range labels {
		normLabels[i] = NormalizeLabel(l)
	}
	normKws := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if n := NormalizeLabel(kw); n != "" {
			normKws = append(normKws, n)
		}
	}

	// 第一档：规范化精确相等
	if label, ok := pickMatch(labels, normLabels, normKws, opts.Preferred, func(label, kw string) bool {
		return label == kw
	}); ok {
		return label, true
	}

	// 第二档：关键词是列名子串（两字符以下的关键词只参与精确档，避免误伤）
	if label, ok := pickMatch(labels, normLabels, normKws, opts.Preferred, func(label, kw string) bool {
		return len([]rune(kw)) >= 3 && strings.Contains(label, kw)
	}); ok {
		return label, true
	}

	// 第三档：模糊相似度兜底，取最高分且达到阈值的列
	best := ""
	bestRatio := 0.0
	for i, nl := range normLabels {
		if nl == "" {
			continue
		}
		for _, kw := range normKws {
			r := similarity(nl, kw)
			if r > bestRatio {
				best, bestRatio = labels[i], r
			}
		}
	}
	if bestRatio >= threshold {
		return best, true
	}
	return "", false
}

// pickMatch 按列序收集命中，preferred 在命中集合里则优先返回
func pickMatch(labels, normLabels, normKws []string, preferred string, match func(label, kw string) bool) (string, bool) {
	first := ""
	for i, nl := range normLabels {
		if nl == "" {
			continue
		}
		for _, kw := range normKws {
			if !match(nl, kw) {
				continue
			}
			if labels[i] == preferred {
				return preferred, true
			}
			if first == "" {
				first = labels[i]
			}
			break
		}
	}
	return first, first != ""
}

// similarity 规范化编辑距离相似度，1 为完全相同
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)
	return 1 - float64(dist)/float64(maxLen)
}
