package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const configCurrentDataset = "current_dataset"

// GetConfig 获取配置项，不存在时返回 ErrNotFound
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("config key %s: %w", key, ErrNotFound)
		}
		return "", err
	}
	return value, nil
}

// GetConfigFloat 获取浮点数配置项
func (s *Store) GetConfigFloat(key string) (float64, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(value, 64)
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	return setConfig(s.db, key, value)
}

func setConfig(db execer, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// SetConfigFloat 设置浮点数配置项
func (s *Store) SetConfigFloat(key string, value float64) error {
	return s.SetConfig(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// GetAllConfig 获取所有配置项
func (s *Store) GetAllConfig() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		config[key] = value
	}

	return config, rows.Err()
}

// GetCurrentDataset 当前选中的数据集 ID，未选择时返回 ErrNotFound
func (s *Store) GetCurrentDataset() (string, error) {
	return s.GetConfig(configCurrentDataset)
}

// SetCurrentDataset 选中数据集
func (s *Store) SetCurrentDataset(id string) error {
	if _, err := s.GetDataset(id); err != nil {
		return err
	}
	return s.SetConfig(configCurrentDataset, id)
}
