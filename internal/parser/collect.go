package parser

import (
	"errors"
	"fmt"
	"time"

	"yoyboard/internal/model"
)

// Sheet 处理状态
const (
	SheetImported = "imported"
	SheetSkipped  = "skipped"
	SheetError    = "error"
)

// ErrNoLFLSheet 工作簿中没有同店表
var ErrNoLFLSheet = errors.New("no like-for-like sheet found")

// SheetOutcome 单个 Sheet 的识别与归一化结果
type SheetOutcome struct {
	Sheet       Sheet
	Recognition SheetRecognitionResult
	Status      string // imported/skipped/error
	Reason      string // 跳过或出错原因
	Rows        []model.CanonicalRow
	Mapping     ColumnMapping
	Err         error
	Duration    time.Duration
}

// Fatal 同店表出错时整个工作簿作废
func (o SheetOutcome) Fatal() bool {
	return o.Err != nil && o.Recognition.Kind == model.SheetKindLFL
}

// CollectHooks 逐 Sheet 回调，均可为 nil
type CollectHooks struct {
	OnStart func(Sheet)
	OnDone  func(SheetOutcome)
}

// CollectSheets 识别并归一化工作簿中的每个 Sheet，按类别汇总记录
//
// 无法识别或类别重复的 Sheet 跳过；其他类别出错时记为 error 并继续。
// 同店表出错直接返回该错误（SchemaError.Sheet 已填写），没有同店表时返回 ErrNoLFLSheet。
func CollectSheets(wb *Workbook, schema Schema, hooks CollectHooks) (map[model.SheetKind][]model.CanonicalRow, error) {
	recognizer := NewSheetRecognizer(schema)
	rows := make(map[model.SheetKind][]model.CanonicalRow)

	for _, sheet := range wb.Sheets {
		if hooks.OnStart != nil {
			hooks.OnStart(sheet)
		}
		outcome := collectSheet(recognizer, schema, sheet, rows)
		if hooks.OnDone != nil {
			hooks.OnDone(outcome)
		}
		if outcome.Fatal() {
			return nil, outcome.Err
		}
		if outcome.Status == SheetImported {
			rows[outcome.Recognition.Kind] = outcome.Rows
		}
	}

	if _, ok := rows[model.SheetKindLFL]; !ok {
		return nil, ErrNoLFLSheet
	}
	return rows, nil
}

func collectSheet(recognizer *SheetRecognizer, schema Schema, sheet Sheet, seen map[model.SheetKind][]model.CanonicalRow) SheetOutcome {
	start := time.Now()
	outcome := SheetOutcome{
		Sheet:       sheet,
		Recognition: recognizer.Recognize(sheet.Name, sheet.Table.Columns),
	}
	kind := outcome.Recognition.Kind

	switch {
	case kind == model.SheetKindUnknown:
		outcome.Status = SheetSkipped
		outcome.Reason = "无法识别的 Sheet 类别"
	case seen[kind] != nil:
		outcome.Status = SheetSkipped
		outcome.Reason = fmt.Sprintf("重复的 %s Sheet", kind.Label())
	default:
		rows, err := Normalize(sheet.Table, schema, kind)
		switch {
		case err == nil:
			outcome.Status = SheetImported
			outcome.Rows = rows
			outcome.Mapping, _ = schema.Resolve(sheet.Table.Columns, RequiredRoles(kind))
		case kind != model.SheetKindLFL && errors.Is(err, ErrEmptyTable):
			outcome.Status = SheetSkipped
			outcome.Reason = "没有数据行"
		default:
			var schemaErr *SchemaError
			if errors.As(err, &schemaErr) {
				schemaErr.Sheet = sheet.Name
			}
			outcome.Status = SheetError
			outcome.Reason = err.Error()
			outcome.Err = err
		}
	}

	outcome.Duration = time.Since(start)
	return outcome
}
