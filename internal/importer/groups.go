package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/allocation"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/parser"
)

// GroupSource 团组来源信息
type GroupSource struct {
	SheetName string
	SheetType parser.SheetType
	FileName  string
}

// DroppedSegment 被丢弃的住宿片段
type DroppedSegment struct {
	RowNo   int    `json:"rowNo"`
	Segment string `json:"segment"`
}

// BuildResult 一张表的团组构建结果
type BuildResult struct {
	Groups       []*model.PilgrimGroup
	FallbackRows int
	EmptyRows    int
	Dropped      []DroppedSegment
}

// BuildGroups 将表格行转换为团组并执行住宿分配
func BuildGroups(rows []parser.Row, cat allocation.Catalog, src GroupSource, opts allocation.Options) BuildResult {
	var out BuildResult
	now := time.Now()

	for _, row := range rows {
		res := allocation.Allocate(row.Record, cat, opts)
		n := res.Row

		movement := src.SheetType.Movement()
		if mv := strings.ToLower(strings.TrimSpace(derefString(n.Movement))); mv != "" {
			if strings.HasPrefix(mv, "dep") {
				movement = model.MovementDeparture
			} else if strings.HasPrefix(mv, "arr") {
				movement = model.MovementArrival
			}
		}

		destination := strings.TrimSpace(derefString(n.Destination))
		if destination == "" {
			destination = opts.DefaultDestination
		}

		group := &model.PilgrimGroup{
			ID:            uuid.NewString(),
			GroupName:     strings.TrimSpace(derefString(n.GroupName)),
			OrganizerName: strings.TrimSpace(derefString(n.Organizer)),
			Destination:   destination,
			Movement:      movement,
			TotalPilgrims: derefInt(n.TotalPilgrims),
			TravelDate:    strings.TrimSpace(derefString(n.TravelDate)),
			FlightNumber:  strings.TrimSpace(derefString(n.FlightNumber)),
			Status:        model.GroupStatusDraft,
			Source:        res.Source,
			Assignments:   res.Assignments,
			RowNo:         row.RowNo,
			SourceSheet:   src.SheetName,
			SourceFile:    src.FileName,
			CreatedAt:     now,
		}
		if group.GroupName == "" {
			group.GroupName = fmt.Sprintf("%s #%d", src.SheetName, row.RowNo)
		}
		// 未给总人数时以明确分配合计为准
		if group.TotalPilgrims == 0 {
			group.TotalPilgrims = group.AssignedPilgrims()
		}

		switch res.Source {
		case model.AllocationFallback:
			out.FallbackRows++
		case model.AllocationNone:
			out.EmptyRows++
		}
		for _, seg := range res.Dropped {
			out.Dropped = append(out.Dropped, DroppedSegment{RowNo: row.RowNo, Segment: seg})
		}
		out.Groups = append(out.Groups, group)
	}

	return out
}

// PreviewFile 只解析与分配，不写库（用于命令行试算）
func PreviewFile(path string, cat allocation.Catalog, opts ImportOptions) ([]*model.PilgrimGroup, *parser.ImportReport, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	start := time.Now()
	report := &parser.ImportReport{
		Filename: opts.sourceName(),
		Sheets:   []parser.ParseResult{},
	}
	recognizer := parser.NewSheetRecognizer()
	reader := parser.NewRowReader(file)

	var groups []*model.PilgrimGroup
	for _, sheetName := range file.GetSheetList() {
		report.TotalSheets++

		headers, err := reader.Headers(sheetName)
		if err != nil || len(headers) == 0 {
			report.Sheets = append(report.Sheets, parser.ParseResult{SheetName: sheetName, SheetType: parser.SheetTypeUnknown, Status: "error", Errors: []string{headerError(err)}})
			continue
		}
		recognition := recognizer.Recognize(sheetName, headers)
		if recognition.SheetType != parser.SheetTypeArrivals && recognition.SheetType != parser.SheetTypeDepartures {
			report.SkippedSheets++
			report.Sheets = append(report.Sheets, parser.ParseResult{SheetName: sheetName, SheetType: recognition.SheetType, Status: "skipped"})
			continue
		}

		rows, err := reader.ReadSheet(sheetName)
		if err != nil {
			report.Sheets = append(report.Sheets, parser.ParseResult{SheetName: sheetName, SheetType: recognition.SheetType, Status: "error", Errors: []string{err.Error()}})
			continue
		}

		built := BuildGroups(rows, cat, GroupSource{SheetName: sheetName, SheetType: recognition.SheetType, FileName: opts.sourceName()}, opts.allocationOptions())
		groups = append(groups, built.Groups...)

		report.ImportedSheets++
		report.ImportedRows += len(built.Groups)
		report.TotalRows += len(built.Groups)
		report.Sheets = append(report.Sheets, parser.ParseResult{
			SheetName:    sheetName,
			SheetType:    recognition.SheetType,
			Status:       "imported",
			ImportedRows: len(built.Groups),
			FallbackRows: built.FallbackRows,
			EmptyRows:    built.EmptyRows,
		})
	}
	report.Duration = time.Since(start)

	return groups, report, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
