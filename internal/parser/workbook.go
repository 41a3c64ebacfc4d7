package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// LoadWorkbook 从内存字节流加载工作簿，返回各 sheet 的原始网格
// 容器格式按 文件名提示 → xlsx → 旧版 xls → CSV 兜底 的顺序嗅探；
// 单个 sheet 解析失败只跳过该 sheet，全部失败返回空序列
func LoadWorkbook(data []byte, filename string) []SheetGrid {
	if len(data) == 0 {
		return nil
	}

	if looksLikeCSV(filename, data) {
		return loadCSV(data)
	}

	if grids := loadXLSX(data); len(grids) > 0 {
		return grids
	}
	if grids := loadLegacyXLS(data); len(grids) > 0 {
		return grids
	}

	// 整个容器打不开时，按单 sheet 无类型表再试一次
	return loadCSV(data)
}

// looksLikeCSV 根据文件名与内容判断是否按 CSV 解析
func looksLikeCSV(filename string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".txt":
		return true
	case ".xlsx", ".xlsm", ".xls":
		return false
	}
	// xlsx 是 zip 容器（PK），xls 是 OLE2 容器（D0 CF）
	if len(data) >= 2 && data[0] == 'P' && data[1] == 'K' {
		return false
	}
	if len(data) >= 2 && data[0] == 0xD0 && data[1] == 0xCF {
		return false
	}
	return true
}

// loadCSV 按单 sheet 无类型表解析，所有单元格按文本读取
func loadCSV(data []byte) []SheetGrid {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil || len(rows) == 0 {
		return nil
	}
	return []SheetGrid{{Name: "Sheet1", Rows: rows}}
}

// sniffDelimiter 从首行统计候选分隔符出现次数
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best := ','
	bestCount := bytes.Count(line, []byte{','})
	if n := bytes.Count(line, []byte{';'}); n > bestCount {
		best, bestCount = ';', n
	}
	if n := bytes.Count(line, []byte{'\t'}); n > bestCount {
		best = '\t'
	}
	return best
}

// loadXLSX 解析现代 xlsx 容器，逐 sheet 读取
func loadXLSX(data []byte) []SheetGrid {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	defer f.Close()

	var grids []SheetGrid
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil || len(rows) == 0 {
			continue // 坏 sheet 跳过
		}
		grids = append(grids, SheetGrid{Name: sheetName, Rows: rows})
	}
	return grids
}

// loadLegacyXLS 解析旧版 xls 容器
// xlsReader 只接受文件路径，先落临时文件再读
func loadLegacyXLS(data []byte) []SheetGrid {
	tmp, err := os.CreateTemp("", "mouhab2b_*.xls")
	if err != nil {
		return nil
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil
	}
	tmp.Close()

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil
	}

	var grids []SheetGrid
	for i := 0; ; i++ {
		sheet, err := book.GetSheet(i)
		if err != nil || sheet == nil {
			break
		}
		var rows [][]string
		for _, xlsRow := range sheet.GetRows() {
			var vals []string
			for _, col := range xlsRow.GetCols() {
				vals = append(vals, col.GetString())
			}
			rows = append(rows, vals)
		}
		if len(rows) == 0 {
			continue
		}
		grids = append(grids, SheetGrid{Name: fmt.Sprintf("Sheet%d", i+1), Rows: rows})
	}
	return grids
}
