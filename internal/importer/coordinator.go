package importer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/op/go-logging"
	"yoyboard/internal/model"
	"yoyboard/internal/parser"
	"yoyboard/internal/store"
)

var log = logging.MustGetLogger("importer")

// 事件类型
const (
	EventStart      = "start"
	EventInfo       = "info"
	EventSheetStart = "sheet_start"
	EventSheetDone  = "sheet_done"
	EventWarning    = "warning"
	EventError      = "error"
	EventDone       = "done"
)

// Sheet 处理状态
const (
	SheetImported = parser.SheetImported
	SheetSkipped  = parser.SheetSkipped
	SheetError    = parser.SheetError
)

// ErrNoLFLSheet 工作簿中没有同店表
var ErrNoLFLSheet = parser.ErrNoLFLSheet

// Coordinator 导入协调器
type Coordinator struct {
	store  *store.Store
	schema parser.Schema
}

// NewCoordinator 创建导入协调器
func NewCoordinator(store *store.Store, schema parser.Schema) *Coordinator {
	return &Coordinator{
		store:  store,
		schema: schema,
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath        string
	Filename        string         // 展示用文件名，默认取 FilePath 的文件名
	Period          string         // 统计口径
	Force           bool           // 相同内容已导入时仍重新导入（替换旧数据集）
	SelectAsCurrent bool           // 导入后设为当前数据集
	Schema          *parser.Schema // 覆盖默认列识别规则
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/info/sheet_start/sheet_done/warning/error/done
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Err       error       `json:"-"`       // error 事件的原始错误
	Timestamp time.Time   `json:"timestamp"`
}

// ImportContext 导入上下文
type ImportContext struct {
	Opts         ImportOptions
	Schema       parser.Schema
	StartTime    time.Time
	Report       *parser.ImportReport
	ProgressChan chan ProgressEvent
	LogID        int64

	rows  map[model.SheetKind][]model.CanonicalRow
	metas []model.SheetMeta
}

// Import 执行导入，返回进度通道；通道在 done 或 error 事件后关闭
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
	if opts.Filename == "" {
		opts.Filename = filepath.Base(opts.FilePath)
	}
	ctx := &ImportContext{
		Opts:         opts,
		Schema:       c.schema,
		StartTime:    time.Now(),
		ProgressChan: progressChan,
		Report: &parser.ImportReport{
			Period:   opts.Period,
			Filename: opts.Filename,
			Sheets:   []parser.ParseResult{},
		},
	}
	if opts.Schema != nil {
		ctx.Schema = *opts.Schema
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventStart,
		Message: "开始导入文件",
		Data: map[string]string{
			"filename": opts.Filename,
		},
		Timestamp: time.Now(),
	})

	data, err := os.ReadFile(opts.FilePath)
	if err != nil {
		c.fail(ctx, fmt.Errorf("读取文件失败: %w", err))
		return
	}
	hash := datasetKey(data, ctx.Schema)

	existing, err := c.store.FindDatasetByHash(hash)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		c.fail(ctx, fmt.Errorf("查询数据集失败: %w", err))
		return
	}
	if existing != nil && !opts.Force {
		c.reuse(ctx, existing, int64(len(data)))
		return
	}

	ctx.LogID, err = c.store.CreateImportLog(opts.Filename, opts.FilePath, int64(len(data)), hash)
	if err != nil {
		c.fail(ctx, err)
		return
	}

	workbook, err := parser.ReadWorkbook(bytes.NewReader(data), opts.Filename)
	if err != nil {
		c.fail(ctx, fmt.Errorf("打开文件失败: %w", err))
		return
	}
	ctx.Report.TotalSheets = len(workbook.Sheets)

	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("发现 %d 个 Sheet", len(workbook.Sheets)),
		Data: map[string]interface{}{
			"total_sheets": len(workbook.Sheets),
		},
		Timestamp: time.Now(),
	})

	rows, err := parser.CollectSheets(workbook, ctx.Schema, parser.CollectHooks{
		OnStart: func(sheet parser.Sheet) {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      EventSheetStart,
				Message:   fmt.Sprintf("正在解析 Sheet: %s", sheet.Name),
				Data:      map[string]string{"sheet_name": sheet.Name},
				Timestamp: time.Now(),
			})
		},
		OnDone: func(outcome parser.SheetOutcome) {
			c.recordSheet(ctx, outcome)
		},
	})
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.rows = rows

	ds := &model.Dataset{
		Period:         opts.Period,
		Filename:       opts.Filename,
		FileHash:       hash,
		BaselineYear:   ctx.Schema.BaselineYear,
		ComparisonYear: ctx.Schema.ComparisonYear,
	}
	for kind, rows := range ctx.rows {
		ds.SetRowCount(kind, len(rows))
	}
	if existing != nil {
		if err := c.store.ReplaceDataset(existing.ID, ds, ctx.rows); err != nil {
			c.fail(ctx, fmt.Errorf("替换旧数据集失败: %w", err))
			return
		}
		log.Infof("replaced dataset %s (%s) with %s", existing.ID, existing.Filename, ds.ID)
	} else if err := c.store.SaveDataset(ds, ctx.rows); err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.Report.DatasetID = ds.ID

	for _, meta := range ctx.metas {
		meta.DatasetID = ds.ID
		if err := c.store.InsertSheetMeta(meta); err != nil {
			log.Warningf("sheet meta not saved: %v", err)
		}
	}

	if opts.SelectAsCurrent {
		if err := c.store.SetCurrentDataset(ds.ID); err != nil {
			log.Warningf("select dataset %s: %v", ds.ID, err)
		}
	}

	ctx.Report.Duration = time.Since(ctx.StartTime)
	r := ctx.Report
	if err := c.store.UpdateImportLog(ctx.LogID, ds.ID, r.TotalSheets, r.ImportedSheets, r.SkippedSheets, r.TotalRows, r.ImportedRows, r.ErrorRows, store.ImportStatusSuccess, ""); err != nil {
		log.Warningf("import log not updated: %v", err)
	}

	log.Infof("imported %s as dataset %s: %d rows in %d sheets", opts.Filename, ds.ID, r.ImportedRows, r.ImportedSheets)
	c.finish(progressChan, ProgressEvent{
		Type:      EventDone,
		Message:   "导入完成",
		Data:      ctx.Report,
		Timestamp: time.Now(),
	})
}

// datasetKey 数据集去重键：文件内容 + 列识别规则
//
// 同一文件换用不同的识别模式或对比年份时会生成新的数据集。
func datasetKey(data []byte, schema parser.Schema) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(schema.Fingerprint()))
	return hex.EncodeToString(h.Sum(nil))
}

// recordSheet 记录单个 Sheet 的处理结果（报告、Sheet 元信息、进度事件）
func (c *Coordinator) recordSheet(ctx *ImportContext, outcome parser.SheetOutcome) {
	sheet := outcome.Sheet
	kind := outcome.Recognition.Kind

	if outcome.Fatal() {
		var schemaErr *parser.SchemaError
		if errors.As(outcome.Err, &schemaErr) {
			if years := parser.ExtractYears(sheet.Table.Columns); len(years) > 0 {
				c.warn(ctx, fmt.Sprintf("表头中的年份: %v，当前对比年份: %d/%d", years, ctx.Schema.BaselineYear, ctx.Schema.ComparisonYear))
			}
		}
		return
	}

	result := parser.ParseResult{
		SheetName: sheet.Name,
		Kind:      kind,
		Status:    outcome.Status,
		Duration:  outcome.Duration,
	}
	meta := model.SheetMeta{
		ImportLogID:  ctx.LogID,
		SheetName:    sheet.Name,
		SheetKind:    kind,
		Status:       outcome.Status,
		ErrorMessage: outcome.Reason,
		TotalRows:    sheet.Table.Len(),
		TotalColumns: len(sheet.Table.Columns),
		ColumnsJSON:  store.BuildJSON(sheet.Table.Columns, "[]"),
		MappingJSON:  "{}",
	}
	ctx.Report.TotalRows += sheet.Table.Len()

	switch outcome.Status {
	case SheetImported:
		meta.MappingJSON = store.BuildJSON(outcome.Mapping.Describe(sheet.Table.Columns), "{}")
		meta.ImportedRows = len(outcome.Rows)
		result.ImportedRows = len(outcome.Rows)
		ctx.Report.ImportedSheets++
		ctx.Report.ImportedRows += len(outcome.Rows)
	case SheetSkipped:
		result.Errors = append(result.Errors, outcome.Reason)
		ctx.Report.SkippedSheets++
		c.warn(ctx, fmt.Sprintf("跳过 Sheet %s: %s", sheet.Name, outcome.Reason))
	case SheetError:
		result.Errors = append(result.Errors, outcome.Reason)
		result.ErrorRows = sheet.Table.Len()
		ctx.Report.ErrorRows += sheet.Table.Len()
		ctx.Report.SkippedSheets++
		c.warn(ctx, outcome.Reason)
	}

	ctx.Report.Sheets = append(ctx.Report.Sheets, result)
	ctx.metas = append(ctx.metas, meta)

	c.sendProgress(ctx.ProgressChan, ProgressEvent{
		Type:      EventSheetDone,
		Message:   fmt.Sprintf("Sheet %s: %s", sheet.Name, result.Status),
		Data:      result,
		Timestamp: time.Now(),
	})
}

// reuse 相同内容已导入，直接返回已有数据集
func (c *Coordinator) reuse(ctx *ImportContext, ds *model.Dataset, size int64) {
	logID, err := c.store.CreateImportLog(ctx.Opts.Filename, ctx.Opts.FilePath, size, ds.FileHash)
	if err == nil {
		err = c.store.UpdateImportLog(logID, ds.ID, 0, 0, 0, ds.TotalRows(), 0, 0, store.ImportStatusReused, "")
	}
	if err != nil {
		log.Warningf("import log not written: %v", err)
	}
	if ctx.Opts.SelectAsCurrent {
		if err := c.store.SetCurrentDataset(ds.ID); err != nil {
			log.Warningf("select dataset %s: %v", ds.ID, err)
		}
	}

	ctx.Report.DatasetID = ds.ID
	ctx.Report.Reused = true
	ctx.Report.Period = ds.Period
	ctx.Report.TotalRows = ds.TotalRows()
	ctx.Report.Duration = time.Since(ctx.StartTime)

	log.Infof("%s already imported as dataset %s", ctx.Opts.Filename, ds.ID)
	c.finish(ctx.ProgressChan, ProgressEvent{
		Type:      EventDone,
		Message:   "文件内容未变化，复用已有数据集",
		Data:      ctx.Report,
		Timestamp: time.Now(),
	})
}

// fail 中止导入：记录日志并发送 error 事件，不写入任何数据集
func (c *Coordinator) fail(ctx *ImportContext, err error) {
	if ctx.LogID > 0 {
		r := ctx.Report
		if uerr := c.store.UpdateImportLog(ctx.LogID, "", r.TotalSheets, r.ImportedSheets, r.SkippedSheets, r.TotalRows, r.ImportedRows, r.ErrorRows, store.ImportStatusFailed, err.Error()); uerr != nil {
			log.Warningf("import log not updated: %v", uerr)
		}
	}

	log.Errorf("import %s failed: %v", ctx.Opts.Filename, err)

	var data interface{}
	var schemaErr *parser.SchemaError
	var rowErr *parser.RowError
	switch {
	case errors.As(err, &schemaErr):
		data = schemaErr
	case errors.As(err, &rowErr):
		data = rowErr
	}
	c.finish(ctx.ProgressChan, ProgressEvent{
		Type:      EventError,
		Message:   err.Error(),
		Data:      data,
		Err:       err,
		Timestamp: time.Now(),
	})
}

func (c *Coordinator) warn(ctx *ImportContext, message string) {
	c.sendProgress(ctx.ProgressChan, ProgressEvent{
		Type:      EventWarning,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// sendProgress 发送进度事件，通道已满时丢弃
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}

// finish 发送终止事件（done/error），阻塞直到被接收
func (c *Coordinator) finish(ch chan ProgressEvent, event ProgressEvent) {
	ch <- event
}

// Wait 消费全部事件，返回导入报告或终止错误
func Wait(ch <-chan ProgressEvent) (*parser.ImportReport, error) {
	var report *parser.ImportReport
	var err error
	for evt := range ch {
		switch evt.Type {
		case EventDone:
			report, _ = evt.Data.(*parser.ImportReport)
		case EventError:
			err = evt.Err
			if err == nil {
				err = errors.New(evt.Message)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, errors.New("import finished without report")
	}
	return report, nil
}
