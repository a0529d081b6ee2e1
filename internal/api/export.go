package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"yoyboard/internal/exporter"
	"yoyboard/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9]+`)

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// exportFilename 导出文件名，如 yoy-action-table-christmas-20-25-dec.xlsx
func exportFilename(ds *model.Dataset, ext string) string {
	slug := strings.Trim(strings.ToLower(unsafeFilenameRe.ReplaceAllString(ds.Period, "-")), "-")
	if slug == "" {
		slug = ds.ID
		if len(slug) > 8 {
			slug = slug[:8]
		}
	}
	return fmt.Sprintf("yoy-action-table-%s.%s", slug, ext)
}

func buildContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", filename, url.PathEscape(filename))
}

// Export 导出 Excel
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	ds, err := h.dataset(c)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := h.exporter.Export(exporter.ExportOptions{
		DatasetID: ds.ID,
		Period:    ds.Period,
		Dataset:   ds,
	})
	if err != nil {
		respondError(c, fmt.Errorf("导出失败: %w", err))
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", buildContentDisposition(exportFilename(ds, "xlsx")))
	c.Header("Content-Type", xlsxContentType)
	if err := file.Write(c.Writer); err != nil {
		log.Errorf("write export: %v", err)
	}
}

// ExportCSV 导出行动表 CSV
// GET /api/export/csv
func (h *Handler) ExportCSV(c *gin.Context) {
	ds, err := h.dataset(c)
	if err != nil {
		respondError(c, err)
		return
	}
	summaries, err := h.calc.Summaries(ds.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(exportFilename(ds, "csv")))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	if err := exporter.WriteCSV(c.Writer, summaries); err != nil {
		log.Errorf("write csv export: %v", err)
	}
}

// ExportStream 导出 Excel（SSE 进度 + 完成后提供下载地址）
// POST /api/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	ds, err := h.dataset(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	send := func(event exportProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send(exportProgressEvent{
		Type:      "start",
		Message:   "开始导出",
		Data:      map[string]any{"datasetId": ds.ID},
		Timestamp: time.Now(),
	})

	progressFn := func(p exporter.ProgressEvent) {
		send(exportProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      p,
			Timestamp: time.Now(),
		})
	}

	file, err := h.exporter.Export(exporter.ExportOptions{
		DatasetID: ds.ID,
		Period:    ds.Period,
		Dataset:   ds,
		Progress:  progressFn,
	})
	if err != nil {
		send(exportProgressEvent{
			Type:      "error",
			Message:   "导出失败: " + err.Error(),
			Data:      map[string]any{},
			Timestamp: time.Now(),
		})
		return
	}
	defer file.Close()

	dir := h.opts.ExportDir
	if dir == "" {
		dir = os.TempDir()
	}
	tempPath := filepath.Join(dir, fmt.Sprintf("yoyboard_export_%d_%d.xlsx", time.Now().UnixNano(), os.Getpid()))
	if err := file.SaveAs(tempPath); err != nil {
		send(exportProgressEvent{
			Type:      "error",
			Message:   "写入导出文件失败: " + err.Error(),
			Data:      map[string]any{},
			Timestamp: time.Now(),
		})
		_ = os.Remove(tempPath)
		return
	}

	token := h.downloads.put(tempPath, exportFilename(ds, "xlsx"), 10*time.Minute)
	send(exportProgressEvent{
		Type:    "done",
		Message: "导出完成",
		Data: map[string]any{
			"percent":     100,
			"downloadUrl": "/api/export/download/" + token,
		},
		Timestamp: time.Now(),
	})
}

// DownloadExport 下载导出的 Excel 文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	item, ok := h.downloads.take(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}
	defer os.Remove(item.filePath)

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(item.filename))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)
}
