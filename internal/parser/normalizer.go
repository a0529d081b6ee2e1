package parser

import (
	"errors"
	"fmt"
	"strings"

	"yoyboard/internal/model"
)

// ErrEmptyTable 表格没有数据行
var ErrEmptyTable = errors.New("table has no data rows")

// RowError 单行数据无效
type RowError struct {
	Row    int    `json:"row"`    // 源表行号（含表头）
	Column string `json:"column"` // 原始列名
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d, column %q: %s (value %q)", e.Row, e.Column, e.Reason, e.Value)
}

// Normalize 将原始表格转换为统一口径记录
//
// 先完成列识别（失败直接返回 *SchemaError），再逐行转换；输出与输入等长且保持顺序。
// 纯函数，不修改入参。
func Normalize(table model.RawTable, schema Schema, kind model.SheetKind) ([]model.CanonicalRow, error) {
	if table.Len() == 0 {
		return nil, ErrEmptyTable
	}

	required := RequiredRoles(kind)
	mapping, err := schema.Resolve(table.Columns, required)
	if err != nil {
		return nil, err
	}

	requiredSet := make(map[Role]bool, len(required))
	for _, r := range required {
		requiredSet[r] = true
	}

	rows := make([]model.CanonicalRow, 0, table.Len())
	for i, raw := range table.Rows {
		row, err := normalizeRow(raw, i+2, table.Columns, mapping, requiredSet)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeRow(raw []string, rowNo int, columns []string, mapping ColumnMapping, required map[Role]bool) (model.CanonicalRow, error) {
	row := model.CanonicalRow{RowNo: rowNo}

	cell := func(role Role) (string, string, bool) {
		idx, ok := mapping[role]
		if !ok {
			return "", "", false
		}
		if idx >= len(raw) {
			return "", columns[idx], true
		}
		return raw[idx], columns[idx], true
	}

	if value, col, ok := cell(RoleStore); ok {
		// 门店标识原样保留，"A" 与 "A " 是不同门店
		row.Store = value
		if strings.TrimSpace(value) == "" && required[RoleStore] {
			return row, &RowError{Row: rowNo, Column: col, Value: value, Reason: "store is empty"}
		}
	}

	if value, col, ok := cell(RoleDate); ok {
		blank := strings.TrimSpace(value) == ""
		if !blank || required[RoleDate] {
			date, err := parseDate(value)
			if err != nil {
				return row, &RowError{Row: rowNo, Column: col, Value: value, Reason: err.Error()}
			}
			row.Date = date
		}
	}

	amounts := []struct {
		role   Role
		target *float64
	}{
		{RoleQtyBaseline, &row.QtyBaseline},
		{RoleSalesBaseline, &row.SalesBaseline},
		{RoleQtyComparison, &row.QtyComparison},
		{RoleSalesComparison, &row.SalesComparison},
	}
	for _, a := range amounts {
		value, col, ok := cell(a.role)
		if !ok {
			continue
		}
		v, err := parseAmount(value)
		if err != nil {
			return row, &RowError{Row: rowNo, Column: col, Value: value, Reason: "invalid number"}
		}
		*a.target = v
	}

	row.DailyDelta = row.SalesComparison - row.SalesBaseline
	return row, nil
}
