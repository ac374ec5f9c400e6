package store

import (
	"encoding/json"
	"fmt"
)

// SheetMeta 单个 Sheet 的导入元信息
type SheetMeta struct {
	ID           int64    `json:"id"`
	ImportLogID  int64    `json:"importLogId"`
	SheetName    string   `json:"sheetName"`
	SheetType    string   `json:"sheetType"`
	Confidence   float64  `json:"confidence"`
	ImportedRows int      `json:"importedRows"`
	FallbackRows int      `json:"fallbackRows"`
	EmptyRows    int      `json:"emptyRows"`
	ErrorRows    int      `json:"errorRows"`
	Columns      []string `json:"columns"`
	Status       string   `json:"status"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}

// InsertSheetMeta 写入 Sheet 元信息（用于追溯与容错）
func (s *Store) InsertSheetMeta(meta SheetMeta) error {
	_, err := s.db.Exec(`
		INSERT INTO sheets_meta (
			import_log_id, sheet_name, sheet_type, confidence,
			imported_rows, fallback_rows, empty_rows, error_rows,
			columns_json, status, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		meta.ImportLogID, meta.SheetName, meta.SheetType, meta.Confidence,
		meta.ImportedRows, meta.FallbackRows, meta.EmptyRows, meta.ErrorRows,
		buildColumnsJSON(meta.Columns), meta.Status, meta.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sheets_meta: %w", err)
	}
	return nil
}

// ListSheetMeta 查询某次导入的 Sheet 元信息（按写入顺序）
func (s *Store) ListSheetMeta(importLogID int64) ([]SheetMeta, error) {
	rows, err := s.db.Query(`
		SELECT id, import_log_id, sheet_name, sheet_type, confidence,
			imported_rows, fallback_rows, empty_rows, error_rows,
			columns_json, status, error_message
		FROM sheets_meta
		WHERE import_log_id = ?
		ORDER BY id ASC
	`, importLogID)
	if err != nil {
		return nil, fmt.Errorf("query sheets_meta failed: %w", err)
	}
	defer rows.Close()

	out := []SheetMeta{}
	for rows.Next() {
		var m SheetMeta
		var columnsJSON string
		if err := rows.Scan(&m.ID, &m.ImportLogID, &m.SheetName, &m.SheetType, &m.Confidence,
			&m.ImportedRows, &m.FallbackRows, &m.EmptyRows, &m.ErrorRows,
			&columnsJSON, &m.Status, &m.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan sheets_meta failed: %w", err)
		}
		if err := json.Unmarshal([]byte(columnsJSON), &m.Columns); err != nil || m.Columns == nil {
			m.Columns = []string{}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sheets_meta failed: %w", err)
	}
	return out, nil
}

// buildColumnsJSON 将列名序列化为 JSON
func buildColumnsJSON(columns []string) string {
	if len(columns) == 0 {
		return "[]"
	}
	b, err := json.Marshal(columns)
	if err != nil {
		return "[]"
	}
	return string(b)
}
