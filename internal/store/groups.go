package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// ErrGroupNotFound 团组不存在
var ErrGroupNotFound = errors.New("group not found")

// GroupQueryOptions 团组查询选项
type GroupQueryOptions struct {
	Status      *model.GroupStatus
	Movement    *model.Movement
	Destination *string
	Keyword     string // 团组名/组织方模糊匹配
	Limit       int
	Offset      int
}

const groupColumns = `id, group_name, organizer_name, destination, movement, total_pilgrims,
	travel_date, flight_number, status, allocation_source, row_no, source_sheet, source_file,
	created_at, confirmed_at`

// BatchInsertGroups 批量插入团组及其分配
func (s *Store) BatchInsertGroups(groups []*model.PilgrimGroup) error {
	if len(groups) == 0 {
		return nil
	}

	return s.withTx(func(tx *sql.Tx) error {
		return insertGroups(tx, groups)
	})
}

func insertGroups(tx *sql.Tx, groups []*model.PilgrimGroup) error {
	stmt, err := tx.Prepare(`
		INSERT INTO pilgrim_groups (
			id, group_name, organizer_name, destination, movement, total_pilgrims,
			travel_date, flight_number, status, allocation_source, row_no, source_sheet, source_file,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, g := range groups {
		createdAt := g.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		status := g.Status
		if status == "" {
			status = model.GroupStatusDraft
		}
		if _, err := stmt.Exec(
			g.ID, g.GroupName, g.OrganizerName, g.Destination, string(g.Movement), g.TotalPilgrims,
			g.TravelDate, g.FlightNumber, string(status), string(g.Source), g.RowNo, g.SourceSheet, g.SourceFile,
			createdAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		if err := insertAssignments(tx, g.ID, g.Assignments); err != nil {
			return err
		}
	}
	return nil
}

func insertAssignments(tx *sql.Tx, groupID string, assignments []model.ResolvedAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT INTO group_assignments (
			group_id, position, accommodation_id, accommodation_name, pilgrims_assigned, contract_number
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare assignment statement: %w", err)
	}
	defer stmt.Close()

	for i, a := range assignments {
		if _, err := stmt.Exec(groupID, i, a.AccommodationID, a.AccommodationName, a.PilgrimsAssigned, a.ContractNumber); err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}
	return nil
}

// ReplaceAssignments 覆盖团组的分配列表
func (s *Store) ReplaceAssignments(groupID string, assignments []model.ResolvedAssignment) error {
	return s.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow("SELECT COUNT(1) FROM pilgrim_groups WHERE id = ?", groupID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check group: %w", err)
		}
		if exists == 0 {
			return ErrGroupNotFound
		}

		if _, err := tx.Exec("DELETE FROM group_assignments WHERE group_id = ?", groupID); err != nil {
			return fmt.Errorf("failed to clear assignments: %w", err)
		}
		return insertAssignments(tx, groupID, assignments)
	})
}

// ConfirmGroup 确认团组分配
func (s *Store) ConfirmGroup(groupID string, at time.Time) error {
	res, err := s.db.Exec(`
		UPDATE pilgrim_groups SET status = ?, confirmed_at = ? WHERE id = ?
	`, string(model.GroupStatusConfirmed), at.UTC(), groupID)
	if err != nil {
		return fmt.Errorf("failed to confirm group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm group: %w", err)
	}
	if n == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// DeleteAllGroups 清空团组（导入时可选）
func (s *Store) DeleteAllGroups() error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM group_assignments"); err != nil {
			return fmt.Errorf("failed to clear assignments: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM pilgrim_groups"); err != nil {
			return fmt.Errorf("failed to clear groups: %w", err)
		}
		return nil
	})
}

// GetGroup 获取单个团组（含分配）
func (s *Store) GetGroup(id string) (*model.PilgrimGroup, error) {
	row := s.db.QueryRow("SELECT "+groupColumns+" FROM pilgrim_groups WHERE id = ?", id)
	g, err := scanGroup(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	assignments, err := s.listAssignments(id)
	if err != nil {
		return nil, err
	}
	g.Assignments = assignments
	return g, nil
}

// ListGroups 按条件查询团组（含分配）
func (s *Store) ListGroups(opts GroupQueryOptions) ([]*model.PilgrimGroup, error) {
	where, args := buildGroupWhere(opts)
	query := "SELECT " + groupColumns + " FROM pilgrim_groups" + where + " ORDER BY created_at ASC, row_no ASC"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query groups failed: %w", err)
	}
	defer rows.Close()

	var out []*model.PilgrimGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups failed: %w", err)
	}

	for _, g := range out {
		assignments, err := s.listAssignments(g.ID)
		if err != nil {
			return nil, err
		}
		g.Assignments = assignments
	}
	return out, nil
}

// CountGroups 按条件统计团组数
func (s *Store) CountGroups(opts GroupQueryOptions) (int, error) {
	where, args := buildGroupWhere(opts)
	var n int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM pilgrim_groups"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count groups failed: %w", err)
	}
	return n, nil
}

func buildGroupWhere(opts GroupQueryOptions) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if opts.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*opts.Status))
	}
	if opts.Movement != nil {
		conds = append(conds, "movement = ?")
		args = append(args, string(*opts.Movement))
	}
	if opts.Destination != nil {
		conds = append(conds, "LOWER(destination) = LOWER(?)")
		args = append(args, *opts.Destination)
	}
	if kw := strings.TrimSpace(opts.Keyword); kw != "" {
		conds = append(conds, "(group_name LIKE ? OR organizer_name LIKE ?)")
		args = append(args, "%"+kw+"%", "%"+kw+"%")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) listAssignments(groupID string) ([]model.ResolvedAssignment, error) {
	rows, err := s.db.Query(`
		SELECT accommodation_id, accommodation_name, pilgrims_assigned, contract_number
		FROM group_assignments
		WHERE group_id = ?
		ORDER BY position ASC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query assignments failed: %w", err)
	}
	defer rows.Close()

	out := []model.ResolvedAssignment{}
	for rows.Next() {
		var a model.ResolvedAssignment
		if err := rows.Scan(&a.AccommodationID, &a.AccommodationName, &a.PilgrimsAssigned, &a.ContractNumber); err != nil {
			return nil, fmt.Errorf("scan assignment failed: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments failed: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGroup(row rowScanner) (*model.PilgrimGroup, error) {
	var (
		g           model.PilgrimGroup
		movement    string
		status      string
		source      string
		confirmedAt sql.NullTime
	)
	if err := row.Scan(
		&g.ID, &g.GroupName, &g.OrganizerName, &g.Destination, &movement, &g.TotalPilgrims,
		&g.TravelDate, &g.FlightNumber, &status, &source, &g.RowNo, &g.SourceSheet, &g.SourceFile,
		&g.CreatedAt, &confirmedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan group failed: %w", err)
	}
	g.Movement = model.Movement(movement)
	g.Status = model.GroupStatus(status)
	g.Source = model.AllocationSource(source)
	if confirmedAt.Valid {
		t := confirmedAt.Time
		g.ConfirmedAt = &t
	}
	return &g, nil
}
