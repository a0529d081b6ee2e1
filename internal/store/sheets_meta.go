package store

import (
	"encoding/json"
	"fmt"

	"yoyboard/internal/model"
)

// InsertSheetMeta 写入 Sheet 元信息（用于追溯列识别结果）
func (s *Store) InsertSheetMeta(meta model.SheetMeta) error {
	_, err := s.db.Exec(`
		INSERT INTO sheets_meta (
			dataset_id, import_log_id,
			sheet_name, sheet_kind,
			total_rows, total_columns, imported_rows,
			columns_json, mapping_json,
			status, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		meta.DatasetID, meta.ImportLogID,
		meta.SheetName, string(meta.SheetKind),
		meta.TotalRows, meta.TotalColumns, meta.ImportedRows,
		meta.ColumnsJSON, meta.MappingJSON,
		meta.Status, meta.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sheets_meta: %w", err)
	}
	return nil
}

// ListSheetMeta 数据集的 Sheet 元信息（按导入顺序）
func (s *Store) ListSheetMeta(datasetID string) ([]model.SheetMeta, error) {
	rows, err := s.db.Query(`
		SELECT dataset_id, import_log_id, sheet_name, sheet_kind,
			total_rows, total_columns, imported_rows,
			columns_json, mapping_json, status, error_message
		FROM sheets_meta
		WHERE dataset_id = ?
		ORDER BY id
	`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sheets_meta: %w", err)
	}
	defer rows.Close()

	metas := make([]model.SheetMeta, 0)
	for rows.Next() {
		var m model.SheetMeta
		var kind string
		if err := rows.Scan(
			&m.DatasetID, &m.ImportLogID, &m.SheetName, &kind,
			&m.TotalRows, &m.TotalColumns, &m.ImportedRows,
			&m.ColumnsJSON, &m.MappingJSON, &m.Status, &m.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sheets_meta: %w", err)
		}
		m.SheetKind = model.ParseSheetKind(kind)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// BuildJSON 序列化列名、列映射等元信息，失败时返回 fallback
func BuildJSON(v interface{}, fallback string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(b)
}
