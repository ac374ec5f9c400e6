package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// RowReader 将工作表读为键值行
type RowReader struct {
	file *excelize.File
}

// NewRowReader 创建读取器
func NewRowReader(file *excelize.File) *RowReader {
	return &RowReader{file: file}
}

// Headers 读取表头行
func (p *RowReader) Headers(sheetName string) ([]string, error) {
	rows, err := p.file.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return rows.Columns()
}

// ReadSheet 读取整张表，第一行为表头；空单元格不写入记录，整行为空时跳过
func (p *RowReader) ReadSheet(sheetName string) ([]Row, error) {
	rows, err := p.file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet has no data rows")
	}

	keys := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		keys[i] = HeaderKey(h)
	}

	var out []Row
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		record := toRecord(keys, rows[rowIdx])
		if len(record) == 0 {
			continue
		}
		out = append(out, Row{RowNo: rowIdx + 1, Record: record})
	}
	return out, nil
}

func toRecord(keys []string, cells []string) model.RawInputRecord {
	record := model.RawInputRecord{}
	for colIdx, key := range keys {
		if key == "" || colIdx >= len(cells) {
			continue
		}
		value := strings.TrimSpace(cells[colIdx])
		if value == "" {
			continue
		}
		// 同名表头以第一列为准
		if _, exists := record[key]; exists {
			continue
		}
		record[key] = value
	}
	return record
}
