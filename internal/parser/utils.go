package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	wsRe       = regexp.MustCompile(`[\s_]+`)
	digitRunRe = regexp.MustCompile(`\d{3,}`)
	digitsRe   = regexp.MustCompile(`\d+`)

	// 去重音：NFD 分解后去掉组合记号
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeLabel 规范化列名/关键词：小写、去重音、下划线与空白折叠为单个空格
func NormalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}
	s = wsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsBlank 单元格是否为空（空串、空白、NaN 占位）
func IsBlank(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return true
	}
	switch strings.ToLower(t) {
	case "nan", "n/a", "#n/a":
		return true
	}
	return false
}

// HasDigitRun 是否包含 3 位以上连续数字（数据行特征）
func HasDigitRun(s string) bool {
	return digitRunRe.MatchString(s)
}

// FirstDigits 提取首个连续数字串并转为非负整数，无数字返回 0
func FirstDigits(s string) int {
	m := digitsRe.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ContainsAny 规范化文本是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// alphaRatio 字母字符占比，用于“像名称不像代码”的启发式
func alphaRatio(s string) float64 {
	if s == "" {
		return 0
	}
	letters := 0
	total := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}
