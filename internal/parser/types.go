package parser

import (
	"time"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// SheetType Sheet 类型
type SheetType string

const (
	SheetTypeArrivals   SheetType = "arrivals"
	SheetTypeDepartures SheetType = "departures"
	SheetTypeSummary    SheetType = "summary"
	SheetTypeUnknown    SheetType = "unknown"
)

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName  string    `json:"sheetName"`
	SheetType  SheetType `json:"sheetType"`
	Confidence float64   `json:"confidence"` // 置信度 0-1
}

// Row 一行数据及其 Excel 行号
type Row struct {
	RowNo  int                  `json:"rowNo"`
	Record model.RawInputRecord `json:"record"`
}

// ParseResult 解析结果
type ParseResult struct {
	SheetName    string        `json:"sheetName"`
	SheetType    SheetType     `json:"sheetType"`
	Confidence   float64       `json:"confidence"`
	Columns      []string      `json:"columns,omitempty"`
	Status       string        `json:"status"` // imported/skipped/error
	ImportedRows int           `json:"importedRows"`
	FallbackRows int           `json:"fallbackRows"` // 按目的地回退分配的行数
	EmptyRows    int           `json:"emptyRows"`    // 没有产生任何分配的行数
	ErrorRows    int           `json:"errorRows"`
	Errors       []string      `json:"errors,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// ImportReport 导入报告
type ImportReport struct {
	ImportLogID    int64         `json:"importLogId,omitempty"`
	Filename       string        `json:"filename"`
	TotalSheets    int           `json:"totalSheets"`
	ImportedSheets int           `json:"importedSheets"`
	SkippedSheets  int           `json:"skippedSheets"`
	TotalRows      int           `json:"totalRows"`
	ImportedRows   int           `json:"importedRows"`
	ErrorRows      int           `json:"errorRows"`
	Duration       time.Duration `json:"duration"`
	Sheets         []ParseResult `json:"sheets"`
}
