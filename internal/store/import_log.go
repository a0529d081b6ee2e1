package store

import (
	"database/sql"
	"fmt"

	"yoyboard/internal/model"
)

// 导入状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusSuccess    = "success"
	ImportStatusReused     = "reused"
	ImportStatusFailed     = "failed"
)

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(filename, filePath string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (filename, file_path, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, ?)
	`, filename, filePath, fileSize, fileHash, ImportStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(id int64, datasetID string, totalSheets, importedSheets, skippedSheets, totalRows, importedRows, errorRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			dataset_id = ?,
			total_sheets = ?,
			imported_sheets = ?,
			skipped_sheets = ?,
			total_rows = ?,
			imported_rows = ?,
			error_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, datasetID, totalSheets, importedSheets, skippedSheets, totalRows, importedRows, errorRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs 最近的导入日志（倒序）
func (s *Store) ListImportLogs(limit int) ([]model.ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, dataset_id, filename, file_size, file_hash, status,
			total_sheets, imported_sheets, skipped_sheets, total_rows, imported_rows, error_rows,
			error_message, created_at, completed_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.ImportLog, 0)
	for rows.Next() {
		var l model.ImportLog
		var completedAt sql.NullTime
		if err := rows.Scan(
			&l.ID, &l.DatasetID, &l.Filename, &l.FileSize, &l.FileHash, &l.Status,
			&l.TotalSheets, &l.ImportedSheets, &l.SkippedSheets, &l.TotalRows, &l.ImportedRows, &l.ErrorRows,
			&l.ErrorMessage, &l.CreatedAt, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			l.CompletedAt = &t
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
