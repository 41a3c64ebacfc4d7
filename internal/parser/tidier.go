package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// 自动生成的占位表头（导出工具常见的 Unnamed: 3 / Column1 之类）
var placeholderLabelRe = regexp.MustCompile(`(?i)^(unnamed|column|col|field)[\s_:.]*\d*$`)

// 首列空置率阈值：达到即视为装饰性前导列整列去掉
const leadingBlankThreshold = 0.95

// Tidy 把一个 (表头, 数据行) 块清理成良构表
// 清理后没有任何列或任何行时返回 nil
func Tidy(block Block) *TidiedTable {
	width := len(block.Header)
	for _, row := range block.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 || len(block.Rows) == 0 {
		return nil
	}

	// 整列全空的列去掉
	var keep []int
	for col := 0; col < width; col++ {
		blank := true
		for _, row := range block.Rows {
			if col < len(row) && !IsBlank(row[col]) {
				blank = false
				break
			}
		}
		if !blank {
			keep = append(keep, col)
		}
	}
	if len(keep) == 0 {
		return nil
	}

	// 前导装饰列：首列空置率 ≥95% 时反复去掉
	for len(keep) > 0 {
		col := keep[0]
		blanks := 0
		for _, row := range block.Rows {
			if col >= len(row) || IsBlank(row[col]) {
				blanks++
			}
		}
		if float64(blanks)/float64(len(block.Rows)) < leadingBlankThreshold {
			break
		}
		keep = keep[1:]
	}
	if len(keep) == 0 {
		return nil
	}

	labels := assignLabels(block.Header, keep)

	// 行转映射，裁剪单元格空白，整行全空的行去掉
	// 被剔除的空行不影响保留行的原始行号
	var rows []map[string]string
	var rowNos []int
	for idx, row := range block.Rows {
		m := make(map[string]string, len(keep))
		blank := true
		for i, col := range keep {
			val := ""
			if col < len(row) {
				val = strings.TrimSpace(row[col])
			}
			if !IsBlank(val) {
				blank = false
			}
			m[labels[i]] = val
		}
		if blank {
			continue
		}
		rows = append(rows, m)
		rowNos = append(rowNos, block.HeaderRow+idx+2)
	}
	if len(rows) == 0 {
		return nil
	}

	return &TidiedTable{
		Labels:    labels,
		Rows:      rows,
		RowNos:    rowNos,
		HeaderRow: block.HeaderRow,
	}
}

// assignLabels 为保留列分配唯一非空标签
// 表头为空或是占位模式时合成 col_N；冲突追加数字后缀直到唯一
func assignLabels(header []string, keep []int) []string {
	labels := make([]string, 0, len(keep))
	used := make(map[string]struct{}, len(keep))

	for _, col := range keep {
		label := ""
		if col < len(header) {
			label = strings.TrimSpace(header[col])
		}
		if IsBlank(label) || placeholderLabelRe.MatchString(label) {
			label = fmt.Sprintf("col_%d", col+1)
		}

		unique := label
		for n := 2; ; n++ {
			if _, ok := used[unique]; !ok {
				break
			}
			unique = fmt.Sprintf("%s_%d", label, n)
		}
		used[unique] = struct{}{}
		labels = append(labels, unique)
	}
	return labels
}
