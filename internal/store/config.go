package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

const (
	configKeySeason         = "season"
	configKeyLastImportTime = "last_import_time"
)

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("config key not found: %s", key)
		}
		return "", err
	}
	return value, nil
}

// GetConfigInt 获取整数配置项
func (s *Store) GetConfigInt(key string) (int, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// SetConfigInt 设置整数配置项
func (s *Store) SetConfigInt(key string, value int) error {
	return s.SetConfig(key, strconv.Itoa(value))
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

// GetSeason 获取当前朝觐季（回历年）
func (s *Store) GetSeason() (int, error) {
	season, err := s.GetConfigInt(configKeySeason)
	if err != nil {
		return 0, fmt.Errorf("failed to get season: %w", err)
	}
	return season, nil
}

// SetSeason 设置当前朝觐季
func (s *Store) SetSeason(season int) error {
	return s.SetConfigInt(configKeySeason, season)
}

// MarkImported 记录最后导入时间
func (s *Store) MarkImported(at time.Time) error {
	return s.SetConfig(configKeyLastImportTime, at.UTC().Format(time.RFC3339))
}

// LastImportTime 最后导入时间，未导入过返回零值
func (s *Store) LastImportTime() time.Time {
	v, err := s.GetConfig(configKeyLastImportTime)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
