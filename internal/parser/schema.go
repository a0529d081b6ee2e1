package parser

import (
	"fmt"
	"sort"
	"strings"

	"yoyboard/internal/model"
)

// ResolveMode 列识别模式
type ResolveMode string

const (
	ModeFixed   ResolveMode = "fixed"   // 列名精确匹配
	ModePattern ResolveMode = "pattern" // 金额类型关键词 + 年份
)

// Role 统一口径字段
type Role string

const (
	RoleStore           Role = "Store"
	RoleDate            Role = "Date"
	RoleQtyBaseline     Role = "Qty_Baseline"
	RoleSalesBaseline   Role = "Sales_Baseline"
	RoleQtyComparison   Role = "Qty_Comparison"
	RoleSalesComparison Role = "Sales_Comparison"
)

// AllRoles 全部字段（按输出顺序）
var AllRoles = []Role{
	RoleStore,
	RoleDate,
	RoleQtyBaseline,
	RoleSalesBaseline,
	RoleQtyComparison,
	RoleSalesComparison,
}

var (
	qtyMarkers    = []string{"qty", "quantity"}
	amountMarkers = []string{"amount", "amt", "sale value", "sales value"}
)

// 默认列名（与门店 YOY 报表一致）
const (
	DefaultStoreColumn        = "Site"
	DefaultDateColumn         = "Date"
	DefaultQtyColumnFormat    = "Net Sale Qty - %d"
	DefaultAmountColumnFormat = "Net Sale Amount - %d"
)

// Schema 列识别规则
type Schema struct {
	Mode               ResolveMode `json:"mode"`
	BaselineYear       int         `json:"baselineYear"`
	ComparisonYear     int         `json:"comparisonYear"`
	StoreColumn        string      `json:"storeColumn"`
	DateColumn         string      `json:"dateColumn"`
	QtyColumnFormat    string      `json:"qtyColumnFormat"`
	AmountColumnFormat string      `json:"amountColumnFormat"`
}

// Fingerprint 识别规则的稳定标识；规则不同则同一文件的归一化结果可能不同
func (s Schema) Fingerprint() string {
	return fmt.Sprintf("%s|%d|%d|%s|%s|%s|%s",
		s.Mode, s.BaselineYear, s.ComparisonYear,
		s.StoreColumn, s.DateColumn, s.QtyColumnFormat, s.AmountColumnFormat)
}

// DefaultSchema 默认识别规则（固定列名）
func DefaultSchema(baselineYear, comparisonYear int) Schema {
	return Schema{
		Mode:               ModeFixed,
		BaselineYear:       baselineYear,
		ComparisonYear:     comparisonYear,
		StoreColumn:        DefaultStoreColumn,
		DateColumn:         DefaultDateColumn,
		QtyColumnFormat:    DefaultQtyColumnFormat,
		AmountColumnFormat: DefaultAmountColumnFormat,
	}
}

// ColumnMapping 字段 -> 列索引
type ColumnMapping map[Role]int

// Has 是否已映射
func (m ColumnMapping) Has(role Role) bool {
	_, ok := m[role]
	return ok
}

// Describe 输出 字段 -> 原始列名（用于 sheets_meta 追溯）
func (m ColumnMapping) Describe(columns []string) map[string]string {
	out := make(map[string]string, len(m))
	for role, idx := range m {
		if idx < len(columns) {
			out[string(role)] = columns[idx]
		}
	}
	return out
}

// SchemaError 必填字段缺失或列识别有歧义
type SchemaError struct {
	Sheet     string              `json:"sheet,omitempty"`
	Missing   []string            `json:"missing,omitempty"`
	Ambiguous map[string][]string `json:"ambiguous,omitempty"`
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Ambiguous) > 0 {
		keys := make([]string, 0, len(e.Ambiguous))
		for k := range e.Ambiguous {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("ambiguous column for %s: %s", k, strings.Join(e.Ambiguous[k], " | ")))
		}
	}
	msg := strings.Join(parts, "; ")
	if e.Sheet != "" {
		return fmt.Sprintf("sheet %q: %s", e.Sheet, msg)
	}
	return msg
}

// RequiredRoles 各类别 Sheet 的必填字段
func RequiredRoles(kind model.SheetKind) []Role {
	switch kind {
	case model.SheetKindHO:
		return []Role{RoleSalesBaseline, RoleSalesComparison}
	case model.SheetKindClosed:
		return []Role{RoleStore, RoleSalesBaseline}
	case model.SheetKindNew:
		return []Role{RoleStore, RoleSalesComparison}
	default:
		return AllRoles
	}
}

// ColumnName 固定列名模式下字段对应的列名
func (s Schema) ColumnName(role Role) string {
	switch role {
	case RoleStore:
		return s.StoreColumn
	case RoleDate:
		return s.DateColumn
	case RoleQtyBaseline:
		return fmt.Sprintf(s.QtyColumnFormat, s.BaselineYear)
	case RoleSalesBaseline:
		return fmt.Sprintf(s.AmountColumnFormat, s.BaselineYear)
	case RoleQtyComparison:
		return fmt.Sprintf(s.QtyColumnFormat, s.ComparisonYear)
	case RoleSalesComparison:
		return fmt.Sprintf(s.AmountColumnFormat, s.ComparisonYear)
	}
	return ""
}

// Resolve 将表头解析为字段映射
//
// required 中任一字段缺失或有多个候选列时返回 *SchemaError，且不返回部分映射；
// 非必填字段能唯一识别时一并映射，否则忽略。
func (s Schema) Resolve(columns []string, required []Role) (ColumnMapping, error) {
	mapping := make(ColumnMapping)
	schemaErr := &SchemaError{}

	requiredSet := make(map[Role]struct{}, len(required))
	for _, r := range required {
		requiredSet[r] = struct{}{}
	}

	for _, role := range AllRoles {
		candidates := s.candidates(role, columns)
		_, isRequired := requiredSet[role]

		switch len(candidates) {
		case 1:
			mapping[role] = candidates[0]
		case 0:
			if isRequired {
				schemaErr.Missing = append(schemaErr.Missing, s.describeRole(role))
			}
		default:
			if isRequired {
				if schemaErr.Ambiguous == nil {
					schemaErr.Ambiguous = make(map[string][]string)
				}
				names := make([]string, 0, len(candidates))
				for _, idx := range candidates {
					names = append(names, columns[idx])
				}
				schemaErr.Ambiguous[string(role)] = names
			}
		}
	}

	if len(schemaErr.Missing) > 0 || len(schemaErr.Ambiguous) > 0 {
		return nil, schemaErr
	}
	return mapping, nil
}

// candidates 返回字段的候选列索引
func (s Schema) candidates(role Role, columns []string) []int {
	var out []int

	// 门店、日期始终按固定列名识别
	if s.Mode != ModePattern || role == RoleStore || role == RoleDate {
		want := s.ColumnName(role)
		for idx, col := range columns {
			if strings.TrimSpace(col) == want {
				out = append(out, idx)
			}
		}
		return out
	}

	year := s.BaselineYear
	if role == RoleQtyComparison || role == RoleSalesComparison {
		year = s.ComparisonYear
	}
	isQty := role == RoleQtyBaseline || role == RoleQtyComparison

	for idx, col := range columns {
		name := strings.ToLower(NormalizeColumnName(col))
		if !ContainsYear(name, year) {
			continue
		}
		hasQty := ContainsAny(name, qtyMarkers)
		if isQty && hasQty {
			out = append(out, idx)
			continue
		}
		if !isQty && !hasQty && ContainsAny(name, amountMarkers) {
			out = append(out, idx)
		}
	}
	return out
}

// describeRole 缺失字段的可读描述
func (s Schema) describeRole(role Role) string {
	if s.Mode != ModePattern || role == RoleStore || role == RoleDate {
		return s.ColumnName(role)
	}
	year := s.BaselineYear
	if role == RoleQtyComparison || role == RoleSalesComparison {
		year = s.ComparisonYear
	}
	marker := "amount"
	if role == RoleQtyBaseline || role == RoleQtyComparison {
		marker = "qty"
	}
	return fmt.Sprintf("%s (%s + %d)", role, marker, year)
}
