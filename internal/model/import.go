package model

import "time"

// Dataset 一次导入形成的数据集（一个文件 = 一个数据集）
type Dataset struct {
	ID             string    `json:"id"`
	Period         string    `json:"period"` // 统计口径，如 "Christmas (20–25 Dec)" / "Full December"
	Filename       string    `json:"filename"`
	FileHash       string    `json:"fileHash"`
	BaselineYear   int       `json:"baselineYear"`
	ComparisonYear int       `json:"comparisonYear"`
	LFLRows        int       `json:"lflRows"`
	HORows         int       `json:"hoRows"`
	ClosedRows     int       `json:"closedRows"`
	NewRows        int       `json:"newRows"`
	ImportedAt     time.Time `json:"importedAt"`
}

// TotalRows 数据集总行数
func (d *Dataset) TotalRows() int {
	return d.LFLRows + d.HORows + d.ClosedRows + d.NewRows
}

// SetRowCount 按类别记录行数
func (d *Dataset) SetRowCount(kind SheetKind, n int) {
	switch kind {
	case SheetKindLFL:
		d.LFLRows = n
	case SheetKindHO:
		d.HORows = n
	case SheetKindClosed:
		d.ClosedRows = n
	case SheetKindNew:
		d.NewRows = n
	}
}

// HasKind 数据集是否包含该类别的数据
func (d *Dataset) HasKind(kind SheetKind) bool {
	switch kind {
	case SheetKindLFL:
		return d.LFLRows > 0
	case SheetKindHO:
		return d.HORows > 0
	case SheetKindClosed:
		return d.ClosedRows > 0
	case SheetKindNew:
		return d.NewRows > 0
	}
	return false
}

// ImportLog 导入日志
type ImportLog struct {
	ID             int64      `json:"id"`
	DatasetID      string     `json:"datasetId"`
	Filename       string     `json:"filename"`
	FileSize       int64      `json:"fileSize"`
	FileHash       string     `json:"fileHash"`
	Status         string     `json:"status"` // processing/success/reused/failed
	TotalSheets    int        `json:"totalSheets"`
	ImportedSheets int        `json:"importedSheets"`
	SkippedSheets  int        `json:"skippedSheets"`
	TotalRows      int        `json:"totalRows"`
	ImportedRows   int        `json:"importedRows"`
	ErrorRows      int        `json:"errorRows"`
	ErrorMessage   string     `json:"errorMessage"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt"`
}
