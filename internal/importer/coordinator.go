package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/allocation"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/catalog"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/parser"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/store"
)

// Coordinator 导入协调器
type Coordinator struct {
	store      *store.Store
	recognizer *parser.SheetRecognizer
}

// NewCoordinator 创建导入协调器
func NewCoordinator(store *store.Store) *Coordinator {
	return &Coordinator{
		store:      store,
		recognizer: parser.NewSheetRecognizer(),
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath           string
	SourceName         string // 原始文件名，为空时取 FilePath 的文件名
	ClearExisting      bool   // 是否清空现有团组
	DefaultDestination string // 行内无目的地时用于回退分配
	DisableFallback    bool   // 关闭按目的地平均分配
}

func (o ImportOptions) sourceName() string {
	if o.SourceName != "" {
		return o.SourceName
	}
	return filepath.Base(o.FilePath)
}

func (o ImportOptions) allocationOptions() allocation.Options {
	return allocation.Options{
		DisableFallback:    o.DisableFallback,
		DefaultDestination: o.DefaultDestination,
	}
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/sheet_start/warning/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// ImportContext 导入上下文
type ImportContext struct {
	FilePath     string
	File         *excelize.File
	Catalog      *catalog.Catalog
	StartTime    time.Time
	Report       *parser.ImportReport
	ProgressChan chan ProgressEvent
	Log          *zap.Logger
	ImportLogID  int64
}

// Import 执行导入，返回进度通道
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(opts, progressChan)
	}()

	return progressChan
}

// doImport 执行导入逻辑
func (c *Coordinator) doImport(opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()
	log := zap.L().With(zap.String("file", opts.sourceName()))

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "start",
		Message: "开始导入 Excel 文件",
		Data: map[string]string{
			"filename": opts.sourceName(),
		},
		Timestamp: time.Now(),
	})

	fail := func(msg string, err error) {
		log.Error(msg, zap.Error(err))
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("%s: %v", msg, err),
			Timestamp: time.Now(),
		})
	}

	cat, err := c.loadCatalog()
	if err != nil {
		fail("加载住宿目录失败", err)
		return
	}

	file, err := excelize.OpenFile(opts.FilePath)
	if err != nil {
		fail("打开文件失败", err)
		return
	}
	defer file.Close()

	var fileSize int64
	if fi, err := os.Stat(opts.FilePath); err == nil {
		fileSize = fi.Size()
	}
	logID, err := c.store.CreateImportLog(opts.sourceName(), opts.FilePath, fileSize, "")
	if err != nil {
		fail("创建导入日志失败", err)
		return
	}

	if opts.ClearExisting {
		if err := c.store.DeleteAllGroups(); err != nil {
			fail("清空团组失败", err)
			_ = c.store.UpdateImportLog(logID, 0, 0, 0, 0, 0, 0, "error", err.Error())
			return
		}
	}

	ctx := &ImportContext{
		FilePath:     opts.FilePath,
		File:         file,
		Catalog:      cat,
		StartTime:    startTime,
		ProgressChan: progressChan,
		Log:          log,
		ImportLogID:  logID,
		Report: &parser.ImportReport{
			ImportLogID: logID,
			Filename:    opts.sourceName(),
			Sheets:      []parser.ParseResult{},
		},
	}

	sheetList := file.GetSheetList()
	ctx.Report.TotalSheets = len(sheetList)

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("发现 %d 个 Sheet，住宿目录 %d 条", len(sheetList), cat.Len()),
		Data: map[string]interface{}{
			"total_sheets":   len(sheetList),
			"catalog_length": cat.Len(),
		},
		Timestamp: time.Now(),
	})

	for _, sheetName := range sheetList {
		c.processSheet(ctx, sheetName, opts)
	}

	ctx.Report.Duration = time.Since(startTime)

	status := "done"
	if ctx.Report.ImportedSheets == 0 {
		status = "empty"
	}
	r := ctx.Report
	if err := c.store.UpdateImportLog(logID, r.TotalSheets, r.ImportedSheets, r.SkippedSheets, r.TotalRows, r.ImportedRows, r.ErrorRows, status, ""); err != nil {
		log.Warn("更新导入日志失败", zap.Error(err))
	}
	if err := c.store.MarkImported(time.Now()); err != nil {
		log.Warn("记录导入时间失败", zap.Error(err))
	}

	log.Info("导入完成",
		zap.Int("imported_sheets", r.ImportedSheets),
		zap.Int("imported_rows", r.ImportedRows),
		zap.Duration("duration", r.Duration))

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   "导入完成",
		Data:      ctx.Report,
		Timestamp: time.Now(),
	})
}

// loadCatalog 从数据库读取住宿目录
func (c *Coordinator) loadCatalog() (*catalog.Catalog, error) {
	records, err := c.store.ListAccommodations()
	if err != nil {
		return nil, err
	}
	return catalog.FromRecords(records), nil
}

// processSheet 处理单个 Sheet
func (c *Coordinator) processSheet(ctx *ImportContext, sheetName string, opts ImportOptions) {
	sheetStartTime := time.Now()

	c.sendProgress(ctx.ProgressChan, ProgressEvent{
		Type:    "sheet_start",
		Message: fmt.Sprintf("正在解析 Sheet: %s", sheetName),
		Data: map[string]string{
			"sheet_name": sheetName,
		},
		Timestamp: time.Now(),
	})

	reader := parser.NewRowReader(ctx.File)
	headers, err := reader.Headers(sheetName)
	if err != nil || len(headers) == 0 {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			SheetType: parser.SheetTypeUnknown,
			Status:    "error",
			Errors:    []string{headerError(err)},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	recognition := c.recognizer.Recognize(sheetName, headers)

	c.sendProgress(ctx.ProgressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("Sheet \"%s\" 识别为: %s (置信度: %.2f)", sheetName, recognition.SheetType, recognition.Confidence),
		Data: map[string]interface{}{
			"sheet_name": sheetName,
			"sheet_type": string(recognition.SheetType),
			"confidence": recognition.Confidence,
		},
		Timestamp: time.Now(),
	})

	switch recognition.SheetType {
	case parser.SheetTypeArrivals, parser.SheetTypeDepartures:
		c.processGroups(ctx, reader, recognition, headers, opts)
	case parser.SheetTypeSummary:
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName:  sheetName,
			SheetType:  parser.SheetTypeSummary,
			Confidence: recognition.Confidence,
			Columns:    headers,
			Status:     "skipped",
			Duration:   time.Since(sheetStartTime),
		})
		c.sendProgress(ctx.ProgressChan, ProgressEvent{
			Type:      "info",
			Message:   fmt.Sprintf("跳过汇总表: %s", sheetName),
			Timestamp: time.Now(),
		})
	default:
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName:  sheetName,
			SheetType:  parser.SheetTypeUnknown,
			Confidence: recognition.Confidence,
			Columns:    headers,
			Status:     "skipped",
			Errors:     []string{"无法识别 Sheet 类型"},
			Duration:   time.Since(sheetStartTime),
		})
		c.sendProgress(ctx.ProgressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("无法识别 Sheet: %s (置信度过低)", sheetName),
			Timestamp: time.Now(),
		})
	}
}

// processGroups 解析团组表并写入分配
func (c *Coordinator) processGroups(ctx *ImportContext, reader *parser.RowReader, recognition parser.SheetRecognitionResult, headers []string, opts ImportOptions) {
	sheetStartTime := time.Now()
	sheetName := recognition.SheetName
	sheetType := recognition.SheetType
	base := parser.ParseResult{
		SheetName:  sheetName,
		SheetType:  sheetType,
		Confidence: recognition.Confidence,
		Columns:    headers,
	}

	rows, err := reader.ReadSheet(sheetName)
	if err != nil {
		result := base
		result.Status = "error"
		result.Errors = []string{err.Error()}
		result.Duration = time.Since(sheetStartTime)
		c.recordSheetResult(ctx, result)
		return
	}

	built := BuildGroups(rows, ctx.Catalog, GroupSource{
		SheetName: sheetName,
		SheetType: sheetType,
		FileName:  opts.sourceName(),
	}, opts.allocationOptions())

	for _, d := range built.Dropped {
		ctx.Log.Debug("未能解析的住宿片段",
			zap.String("sheet", sheetName),
			zap.Int("row", d.RowNo),
			zap.String("segment", d.Segment))
	}

	if err := c.store.BatchInsertGroups(built.Groups); err != nil {
		result := base
		result.Status = "error"
		result.ErrorRows = len(built.Groups)
		result.Errors = []string{fmt.Sprintf("写入团组失败: %v", err)}
		result.Duration = time.Since(sheetStartTime)
		c.recordSheetResult(ctx, result)
		return
	}

	if built.EmptyRows > 0 {
		c.sendProgress(ctx.ProgressChan, ProgressEvent{
			Type:    "warning",
			Message: fmt.Sprintf("Sheet \"%s\" 有 %d 个团组没有住宿分配", sheetName, built.EmptyRows),
			Data: map[string]interface{}{
				"sheet_name": sheetName,
				"empty_rows": built.EmptyRows,
			},
			Timestamp: time.Now(),
		})
	}

	result := base
	result.Status = "imported"
	result.ImportedRows = len(built.Groups)
	result.FallbackRows = built.FallbackRows
	result.EmptyRows = built.EmptyRows
	result.Duration = time.Since(sheetStartTime)
	c.recordSheetResult(ctx, result)
}

// recordSheetResult 记录 Sheet 处理结果
// headerError 表头读取失败或 Sheet 为空时的错误说明
func headerError(err error) string {
	if err != nil {
		return fmt.Sprintf("读取 Sheet 失败: %v", err)
	}
	return "Sheet 没有表头行"
}

func (c *Coordinator) recordSheetResult(ctx *ImportContext, result parser.ParseResult) {
	ctx.Report.Sheets = append(ctx.Report.Sheets, result)

	if result.Status == "imported" {
		ctx.Report.ImportedSheets++
		ctx.Report.ImportedRows += result.ImportedRows
	} else if result.Status == "skipped" {
		ctx.Report.SkippedSheets++
	}

	if result.ErrorRows > 0 {
		ctx.Report.ErrorRows += result.ErrorRows
	}

	ctx.Report.TotalRows += result.ImportedRows + result.ErrorRows

	if ctx.ImportLogID == 0 {
		return
	}
	meta := store.SheetMeta{
		ImportLogID:  ctx.ImportLogID,
		SheetName:    result.SheetName,
		SheetType:    string(result.SheetType),
		Confidence:   result.Confidence,
		ImportedRows: result.ImportedRows,
		FallbackRows: result.FallbackRows,
		EmptyRows:    result.EmptyRows,
		ErrorRows:    result.ErrorRows,
		Columns:      result.Columns,
		Status:       result.Status,
		ErrorMessage: strings.Join(result.Errors, "; "),
	}
	if err := c.store.InsertSheetMeta(meta); err != nil {
		ctx.Log.Warn("写入 Sheet 元信息失败", zap.String("sheet", result.SheetName), zap.Error(err))
	}
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
