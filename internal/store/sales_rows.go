package store

import (
	"database/sql"
	"fmt"
	"time"

	"yoyboard/internal/model"
)

const saleDateLayout = "2006-01-02"

// insertSalesRows 批量写入某类别的记录
func insertSalesRows(db execer, datasetID string, kind model.SheetKind, rows []model.CanonicalRow) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := db.Prepare(`
		INSERT INTO sales_rows (
			dataset_id, sheet_kind, row_no, store, sale_date,
			qty_baseline, sales_baseline, qty_comparison, sales_comparison, daily_delta
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		var date sql.NullString
		if r.HasDate() {
			date = sql.NullString{String: r.Date.Format(saleDateLayout), Valid: true}
		}
		_, err := stmt.Exec(
			datasetID, string(kind), r.RowNo, r.Store, date,
			r.QtyBaseline, r.SalesBaseline, r.QtyComparison, r.SalesComparison, r.DailyDelta,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sales row %d: %w", r.RowNo, err)
		}
	}
	return nil
}

// GetSalesRows 按写入顺序读取数据集某类别的记录
func (s *Store) GetSalesRows(datasetID string, kind model.SheetKind) ([]model.CanonicalRow, error) {
	rows, err := s.db.Query(`
		SELECT row_no, store, sale_date,
			qty_baseline, sales_baseline, qty_comparison, sales_comparison, daily_delta
		FROM sales_rows
		WHERE dataset_id = ? AND sheet_kind = ?
		ORDER BY id
	`, datasetID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query sales rows: %w", err)
	}
	defer rows.Close()

	result := make([]model.CanonicalRow, 0)
	for rows.Next() {
		var r model.CanonicalRow
		var date sql.NullString
		if err := rows.Scan(
			&r.RowNo, &r.Store, &date,
			&r.QtyBaseline, &r.SalesBaseline, &r.QtyComparison, &r.SalesComparison, &r.DailyDelta,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		if date.Valid {
			t, err := time.Parse(saleDateLayout, date.String)
			if err != nil {
				return nil, fmt.Errorf("invalid sale_date %q: %w", date.String, err)
			}
			r.Date = t
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
