package model

// SheetKind 工作表类别
type SheetKind string

const (
	SheetKindLFL     SheetKind = "lfl"    // 同店（Like-for-Like）
	SheetKindHO      SheetKind = "ho"     // 总部
	SheetKindClosed  SheetKind = "closed" // 已关闭门店
	SheetKindNew     SheetKind = "new"    // 新开门店
	SheetKindUnknown SheetKind = "unknown"
)

// SheetKinds 可导入的类别（按处理顺序）
var SheetKinds = []SheetKind{SheetKindLFL, SheetKindHO, SheetKindClosed, SheetKindNew}

// Label 展示名称
func (k SheetKind) Label() string {
	switch k {
	case SheetKindLFL:
		return "YOY – Like-to-Like Stores (LFL)"
	case SheetKindHO:
		return "YOY of HO"
	case SheetKindClosed:
		return "Closed Stores"
	case SheetKindNew:
		return "New Stores"
	default:
		return "Unknown"
	}
}

// ParseSheetKind 解析类别字符串，无法识别时返回 SheetKindUnknown
func ParseSheetKind(s string) SheetKind {
	for _, k := range SheetKinds {
		if string(k) == s {
			return k
		}
	}
	return SheetKindUnknown
}

// SheetMeta 工作表导入元信息（sheets_meta 表）
type SheetMeta struct {
	DatasetID    string    `json:"datasetId"`
	ImportLogID  int64     `json:"importLogId"`
	SheetName    string    `json:"sheetName"`
	SheetKind    SheetKind `json:"sheetKind"`
	TotalRows    int       `json:"totalRows"`
	TotalColumns int       `json:"totalColumns"`
	ImportedRows int       `json:"importedRows"`
	ColumnsJSON  string    `json:"columnsJson"`
	MappingJSON  string    `json:"mappingJson"`
	Status       string    `json:"status"` // imported/skipped/error
	ErrorMessage string    `json:"errorMessage"`
}
