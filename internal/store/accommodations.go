package store

import (
	"database/sql"
	"fmt"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// ReplaceAccommodations 用新目录整体替换住宿表，seq 记录拼接顺序
func (s *Store) ReplaceAccommodations(records []model.AccommodationRecord) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM accommodations"); err != nil {
			return fmt.Errorf("failed to clear accommodations: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO accommodations (id, seq, name, location, category, capacity)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, r := range records {
			if r.ID == "" {
				continue
			}
			if _, err := stmt.Exec(r.ID, i, r.Name, r.Location, string(r.Category), r.Capacity); err != nil {
				return fmt.Errorf("failed to insert accommodation %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

// ListAccommodations 按拼接顺序读取住宿目录
func (s *Store) ListAccommodations() ([]model.AccommodationRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, name, location, category, capacity
		FROM accommodations
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query accommodations failed: %w", err)
	}
	defer rows.Close()

	var out []model.AccommodationRecord
	for rows.Next() {
		var r model.AccommodationRecord
		var category string
		if err := rows.Scan(&r.ID, &r.Name, &r.Location, &category, &r.Capacity); err != nil {
			return nil, fmt.Errorf("scan accommodation failed: %w", err)
		}
		r.Category = model.AccommodationCategory(category)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accommodations failed: %w", err)
	}
	return out, nil
}

// CountAccommodations 住宿目录条目数
func (s *Store) CountAccommodations() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM accommodations").Scan(&n); err != nil {
		return 0, fmt.Errorf("count accommodations failed: %w", err)
	}
	return n, nil
}
