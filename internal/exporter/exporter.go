package exporter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/allocation"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/store"
)

const (
	groupsSheet      = "Groups"
	assignmentsSheet = "Assignments"
	catalogSheet     = "Accommodations"
)

var (
	groupHeaders = []interface{}{
		"Group ID", "Group Name", "Organizer", "Movement", "Destination", "Travel Date", "Flight No",
		"Total Pilgrims", "Assigned Pilgrims", "Allocation Source", "Status",
	}
	assignmentHeaders = []interface{}{
		"Group ID", "Group Name", "Accommodation ID", "Accommodation Name", "Pilgrims Assigned", "Contract No",
	}
	catalogHeaders = []interface{}{
		"ID", "Name", "Location", "Category", "Capacity",
	}
)

// Exporter 团组分配导出器
type Exporter struct {
	store *store.Store
}

// NewExporter 创建导出器
func NewExporter(store *store.Store) *Exporter {
	return &Exporter{store: store}
}

// ExportOptions 导出选项
type ExportOptions struct {
	Status         *model.GroupStatus
	Movement       *model.Movement
	IncludeCatalog bool
}

// Export 导出 Excel；导出前对分配做 ID 回填（只影响导出内容，不写库）
func (e *Exporter) Export(opts ExportOptions, progress func(ProgressEvent)) (*excelize.File, error) {
	reportProgress(progress, 5, StageLoadGroups)
	groups, err := e.store.ListGroups(store.GroupQueryOptions{
		Status:   opts.Status,
		Movement: opts.Movement,
	})
	if err != nil {
		return nil, fmt.Errorf("读取团组失败: %w", err)
	}

	records, err := e.store.ListAccommodations()
	if err != nil {
		return nil, fmt.Errorf("读取住宿目录失败: %w", err)
	}
	cat := allocation.StaticCatalog(records)

	reportProgress(progress, 20, StageBackfill)
	for _, g := range groups {
		allocation.Backfill(g.Assignments, cat)
	}

	var catalogRecords []model.AccommodationRecord
	if opts.IncludeCatalog {
		catalogRecords = records
	}
	f, err := BuildWorkbook(groups, catalogRecords, scaleProgress(progress, 20, 95))
	if err != nil {
		return nil, err
	}

	reportProgress(progress, 100, StageDone)
	return f, nil
}

// BuildWorkbook 生成团组/分配工作簿；catalog 为空时不输出目录表
func BuildWorkbook(groups []*model.PilgrimGroup, catalog []model.AccommodationRecord, progress func(ProgressEvent)) (*excelize.File, error) {
	f := excelize.NewFile()
	ok := false
	defer func() {
		if !ok {
			_ = f.Close()
		}
	}()

	if err := f.SetSheetName("Sheet1", groupsSheet); err != nil {
		return nil, fmt.Errorf("创建团组表失败: %w", err)
	}
	if _, err := f.NewSheet(assignmentsSheet); err != nil {
		return nil, fmt.Errorf("创建分配表失败: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("创建样式失败: %w", err)
	}

	if err := writeRow(f, groupsSheet, 1, groupHeaders); err != nil {
		return nil, err
	}
	if err := writeRow(f, assignmentsSheet, 1, assignmentHeaders); err != nil {
		return nil, err
	}

	assignRow := 2
	for i, g := range groups {
		if err := writeRow(f, groupsSheet, i+2, []interface{}{
			g.ID, g.GroupName, g.OrganizerName, string(g.Movement), g.Destination, g.TravelDate, g.FlightNumber,
			g.TotalPilgrims, g.AssignedPilgrims(), string(g.Source), string(g.Status),
		}); err != nil {
			return nil, err
		}
		for _, a := range g.Assignments {
			if err := writeRow(f, assignmentsSheet, assignRow, []interface{}{
				g.ID, g.GroupName, a.AccommodationID, a.AccommodationName, a.PilgrimsAssigned, a.ContractNumber,
			}); err != nil {
				return nil, err
			}
			assignRow++
		}
		if len(groups) > 0 {
			reportProgress(progress, (i+1)*90/len(groups), StageWriteGroups)
		}
	}

	sheets := []struct {
		name    string
		columns int
	}{
		{groupsSheet, len(groupHeaders)},
		{assignmentsSheet, len(assignmentHeaders)},
	}

	if len(catalog) > 0 {
		if _, err := f.NewSheet(catalogSheet); err != nil {
			return nil, fmt.Errorf("创建目录表失败: %w", err)
		}
		if err := writeRow(f, catalogSheet, 1, catalogHeaders); err != nil {
			return nil, err
		}
		for i, r := range catalog {
			if err := writeRow(f, catalogSheet, i+2, []interface{}{
				r.ID, r.Name, r.Location, string(r.Category), r.Capacity,
			}); err != nil {
				return nil, err
			}
		}
		sheets = append(sheets, struct {
			name    string
			columns int
		}{catalogSheet, len(catalogHeaders)})
	}

	for _, s := range sheets {
		lastCol, _ := excelize.ColumnNumberToName(s.columns)
		if err := f.SetCellStyle(s.name, "A1", lastCol+"1", headerStyle); err != nil {
			return nil, fmt.Errorf("设置表头样式失败: %w", err)
		}
		if err := f.SetColWidth(s.name, "A", lastCol, 18); err != nil {
			return nil, fmt.Errorf("设置列宽失败: %w", err)
		}
	}

	reportProgress(progress, 100, StageWritten)
	f.SetActiveSheet(0)
	ok = true
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("写入 %s 第 %d 行失败: %w", sheet, row, err)
	}
	return nil
}

// FileName 导出文件名
func FileName(prefix string, season int) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "groups"
	}
	if season > 0 {
		return fmt.Sprintf("%s_%d.xlsx", prefix, season)
	}
	return prefix + ".xlsx"
}
