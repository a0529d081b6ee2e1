package parser

import (
	"regexp"
	"strings"

	"yoyboard/internal/model"
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// SheetRecognizer Sheet 类别识别器
type SheetRecognizer struct {
	schema Schema
}

// NewSheetRecognizer 创建识别器；schema 用于按表头兜底识别同店表
func NewSheetRecognizer(schema Schema) *SheetRecognizer {
	return &SheetRecognizer{schema: schema}
}

// Recognize 识别 Sheet 类别
func (r *SheetRecognizer) Recognize(sheetName string, columnNames []string) SheetRecognitionResult {
	if kind := kindByName(sheetName); kind != model.SheetKindUnknown {
		return SheetRecognitionResult{
			SheetName:  sheetName,
			Kind:       kind,
			Confidence: 1,
			ByName:     true,
		}
	}

	// 单 Sheet 文件（CSV 或只导出了同店表）：表头满足同店口径即视为同店
	if _, err := r.schema.Resolve(columnNames, RequiredRoles(model.SheetKindLFL)); err == nil {
		return SheetRecognitionResult{
			SheetName:  sheetName,
			Kind:       model.SheetKindLFL,
			Confidence: 0.6,
		}
	}

	return SheetRecognitionResult{
		SheetName: sheetName,
		Kind:      model.SheetKindUnknown,
	}
}

// kindByName 按 Sheet 名称关键词判定类别
func kindByName(sheetName string) model.SheetKind {
	name := strings.ToLower(NormalizeColumnName(sheetName))
	words := make(map[string]bool)
	for _, w := range wordRe.FindAllString(name, -1) {
		words[w] = true
	}

	switch {
	case words["lfl"] || strings.Contains(name, "like"):
		return model.SheetKindLFL
	case words["ho"] || strings.Contains(name, "head office"):
		return model.SheetKindHO
	case words["closed"]:
		return model.SheetKindClosed
	case words["new"]:
		return model.SheetKindNew
	}
	return model.SheetKindUnknown
}
