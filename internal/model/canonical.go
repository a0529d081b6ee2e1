package model

import "time"

// RawTable 原始表格（表头 + 数据行，单元格均为文本）
type RawTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len 数据行数
func (t RawTable) Len() int {
	return len(t.Rows)
}

// CanonicalRow 统一口径的门店日销售记录
//
// 创建后不再修改；DailyDelta = SalesComparison - SalesBaseline，不做任何舍入。
type CanonicalRow struct {
	RowNo int `json:"rowNo"` // 源表行号（含表头，从 1 开始）

	Store string    `json:"store"`
	Date  time.Time `json:"date"`

	QtyBaseline     float64 `json:"qtyBaseline"`     // 基准年销量（LY）
	SalesBaseline   float64 `json:"salesBaseline"`   // 基准年销售额（LY）
	QtyComparison   float64 `json:"qtyComparison"`   // 对比年销量（CY）
	SalesComparison float64 `json:"salesComparison"` // 对比年销售额（CY）

	DailyDelta float64 `json:"dailyDelta"`
}

// HasDate 是否带有日期
func (r CanonicalRow) HasDate() bool {
	return !r.Date.IsZero()
}
