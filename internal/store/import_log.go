package store

import "fmt"

// ImportLog 导入日志
type ImportLog struct {
	ID             int64  `json:"id"`
	Filename       string `json:"filename"`
	Status         string `json:"status"`
	TotalSheets    int    `json:"totalSheets"`
	ImportedSheets int    `json:"importedSheets"`
	TotalRows      int    `json:"totalRows"`
	ImportedRows   int    `json:"importedRows"`
	ErrorRows      int    `json:"errorRows"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(filename, filePath string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (filename, file_path, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, 'processing')
	`, filename, filePath, fileSize, fileHash)
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
func (s *Store) UpdateImportLog(id int64, totalSheets, importedSheets, skippedSheets, totalRows, importedRows, errorRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
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
	`, totalSheets, importedSheets, skippedSheets, totalRows, importedRows, errorRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs 最近的导入日志（按时间倒序）
func (s *Store) ListImportLogs(limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, filename, status, total_sheets, imported_sheets, total_rows, imported_rows, error_rows, error_message, created_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query import logs failed: %w", err)
	}
	defer rows.Close()

	var out []ImportLog
	for rows.Next() {
		var it ImportLog
		if err := rows.Scan(&it.ID, &it.Filename, &it.Status, &it.TotalSheets, &it.ImportedSheets,
			&it.TotalRows, &it.ImportedRows, &it.ErrorRows, &it.ErrorMessage, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan import log failed: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import logs failed: %w", err)
	}
	return out, nil
}
