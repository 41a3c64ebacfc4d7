package model

import "time"

// 行级跳过原因（非致命，整批继续）
const (
	SkipMissingReference = "missing reference"
	SkipUnknownMovement  = "undetermined movement type"
	SkipDuplicateRef     = "duplicate reference"
	SkipStoreError       = "store error"
)

// SkipEntry 单行跳过记录
type SkipEntry struct {
	RowNo       int    `json:"rowNo"`
	SourceSheet string `json:"sourceSheet"`
	Reason      string `json:"reason"`
}

// RunReport 单次导入的运行报告
// 除两类整文件致命错误外，导入总是“完成并逐行汇报”
type RunReport struct {
	Filename  string            `json:"filename"`
	BatchID   string            `json:"batchId"`
	Sheets    int               `json:"sheets"`
	Blocks    int               `json:"blocks"`
	Created   []string          `json:"created"`
	Updated   []string          `json:"updated"`
	Skipped   []SkipEntry       `json:"skipped"`
	Snapshots []*BookingDossier `json:"snapshots,omitempty"`
	Duration  time.Duration     `json:"duration"`
}

// TotalRows 参与处理的总行数
func (r *RunReport) TotalRows() int {
	return len(r.Created) + len(r.Updated) + len(r.Skipped)
}
