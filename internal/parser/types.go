package parser

import (
	"time"

	"yoyboard/internal/model"
)

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName  string          `json:"sheetName"`
	Kind       model.SheetKind `json:"kind"`
	Confidence float64         `json:"confidence"` // 置信度 0-1
	ByName     bool            `json:"byName"`     // 是否由 Sheet 名判定
}

// ParseResult 单个 Sheet 的解析结果
type ParseResult struct {
	SheetName    string          `json:"sheetName"`
	Kind         model.SheetKind `json:"kind"`
	Status       string          `json:"status"` // imported/skipped/error
	ImportedRows int             `json:"importedRows"`
	ErrorRows    int             `json:"errorRows"`
	Errors       []string        `json:"errors,omitempty"`
	Duration     time.Duration   `json:"duration"`
}

// ImportReport 导入报告
type ImportReport struct {
	DatasetID      string        `json:"datasetId"`
	Period         string        `json:"period"`
	Filename       string        `json:"filename"`
	Reused         bool          `json:"reused"` // 相同内容已导入过，直接复用
	TotalSheets    int           `json:"totalSheets"`
	ImportedSheets int           `json:"importedSheets"`
	SkippedSheets  int           `json:"skippedSheets"`
	TotalRows      int           `json:"totalRows"`
	ImportedRows   int           `json:"importedRows"`
	ErrorRows      int           `json:"errorRows"`
	Duration       time.Duration `json:"duration"`
	Sheets         []ParseResult `json:"sheets"`
}
