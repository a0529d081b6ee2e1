package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"yoyboard/internal/model"
)

const datasetColumns = `id, period, filename, file_hash, baseline_year, comparison_year,
	lfl_rows, ho_rows, closed_rows, new_rows, imported_at`

// SaveDataset 在同一事务中写入数据集及其全部记录
//
// ds.ID 为空时自动生成；同 file_hash 的旧数据集需先删除或使用 ReplaceDataset。
func (s *Store) SaveDataset(ds *model.Dataset, rows map[model.SheetKind][]model.CanonicalRow) error {
	return s.withTx(func(tx *sql.Tx) error {
		return saveDataset(tx, ds, rows)
	})
}

// ReplaceDataset 在同一事务中删除 oldID 并写入新数据集
//
// oldID 是当前数据集时，新数据集接替为当前数据集。任一步失败时旧数据保持不变。
func (s *Store) ReplaceDataset(oldID string, ds *model.Dataset, rows map[model.SheetKind][]model.CanonicalRow) error {
	return s.withTx(func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRow("SELECT value FROM config WHERE key = ?", configCurrentDataset).Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to read current dataset: %w", err)
		}

		if err := deleteDataset(tx, oldID); err != nil {
			return err
		}
		if err := saveDataset(tx, ds, rows); err != nil {
			return err
		}
		if current == oldID {
			return setConfig(tx, configCurrentDataset, ds.ID)
		}
		return nil
	})
}

func saveDataset(db execer, ds *model.Dataset, rows map[model.SheetKind][]model.CanonicalRow) error {
	if err := createDataset(db, ds); err != nil {
		return err
	}
	for _, kind := range model.SheetKinds {
		if err := insertSalesRows(db, ds.ID, kind, rows[kind]); err != nil {
			return err
		}
	}
	return nil
}

func createDataset(db execer, ds *model.Dataset) error {
	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}
	if ds.ImportedAt.IsZero() {
		ds.ImportedAt = time.Now()
	}
	_, err := db.Exec(`
		INSERT INTO datasets (`+datasetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ds.ID, ds.Period, ds.Filename, ds.FileHash, ds.BaselineYear, ds.ComparisonYear,
		ds.LFLRows, ds.HORows, ds.ClosedRows, ds.NewRows, ds.ImportedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetDataset 按 ID 获取数据集
func (s *Store) GetDataset(id string) (*model.Dataset, error) {
	row := s.db.QueryRow("SELECT "+datasetColumns+" FROM datasets WHERE id = ?", id)
	return scanDataset(row)
}

// FindDatasetByHash 按文件内容哈希查找数据集（相同内容只导入一次）
func (s *Store) FindDatasetByHash(hash string) (*model.Dataset, error) {
	row := s.db.QueryRow("SELECT "+datasetColumns+" FROM datasets WHERE file_hash = ?", hash)
	return scanDataset(row)
}

// ListDatasets 按导入时间倒序列出数据集
func (s *Store) ListDatasets() ([]*model.Dataset, error) {
	rows, err := s.db.Query("SELECT " + datasetColumns + " FROM datasets ORDER BY imported_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	datasets := make([]*model.Dataset, 0)
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

// DeleteDataset 删除数据集及其记录、Sheet 元信息
func (s *Store) DeleteDataset(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		return deleteDataset(tx, id)
	})
}

func deleteDataset(db execer, id string) error {
	res, err := db.Exec("DELETE FROM datasets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := db.Exec("DELETE FROM sales_rows WHERE dataset_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete sales rows: %w", err)
	}
	if _, err := db.Exec("DELETE FROM sheets_meta WHERE dataset_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete sheets meta: %w", err)
	}
	if _, err := db.Exec("DELETE FROM config WHERE key = ? AND value = ?", configCurrentDataset, id); err != nil {
		return fmt.Errorf("failed to reset current dataset: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(row rowScanner) (*model.Dataset, error) {
	var ds model.Dataset
	var importedAt string
	err := row.Scan(
		&ds.ID, &ds.Period, &ds.Filename, &ds.FileHash, &ds.BaselineYear, &ds.ComparisonYear,
		&ds.LFLRows, &ds.HORows, &ds.ClosedRows, &ds.NewRows, &importedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan dataset: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, importedAt); err == nil {
		ds.ImportedAt = t
	}
	return &ds, nil
}
