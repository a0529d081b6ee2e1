package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"yoyboard/internal/importer"
	"yoyboard/internal/parser"
)

// Import 导入工作簿
// POST /api/import
//
// multipart 字段：file（必填）、period、force、select、mode（fixed/pattern）。
// Accept: text/event-stream 时以 SSE 推送进度，否则返回 JSON 报告；
// 列识别失败或数据行无效返回 422。
func (h *Handler) Import(c *gin.Context) {
	uploadedFile, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	cfg := h.config()
	schema := cfg.ParserSchema()
	if mode := c.PostForm("mode"); mode != "" {
		m := parser.ResolveMode(mode)
		if m != parser.ModeFixed && m != parser.ModePattern {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid mode %q", mode)})
			return
		}
		schema.Mode = m
	}

	uploadDir := h.opts.UploadDir
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	savedPath := filepath.Join(uploadDir, fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(uploadedFile.Filename)))
	if err := c.SaveUploadedFile(uploadedFile, savedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}
	if h.opts.UploadDir == "" {
		defer os.Remove(savedPath)
	}

	period := c.DefaultPostForm("period", cfg.Business.Period)
	force, _ := strconv.ParseBool(c.DefaultPostForm("force", "false"))
	selectCurrent, _ := strconv.ParseBool(c.DefaultPostForm("select", "true"))

	coordinator := importer.NewCoordinator(h.store, schema)
	progressChan := coordinator.Import(importer.ImportOptions{
		FilePath:        savedPath,
		Filename:        uploadedFile.Filename,
		Period:          period,
		Force:           force,
		SelectAsCurrent: selectCurrent,
	})

	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		streamImport(c, progressChan)
		return
	}

	report, err := importer.Wait(progressChan)
	if err != nil {
		respondImportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func streamImport(c *gin.Context, progressChan <-chan importer.ProgressEvent) {
	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// respondImportError 列识别/数据行错误返回 422，其余按 respondError
func respondImportError(c *gin.Context, err error) {
	var schemaErr *parser.SchemaError
	var rowErr *parser.RowError
	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     err.Error(),
			"sheet":     schemaErr.Sheet,
			"missing":   schemaErr.Missing,
			"ambiguous": schemaErr.Ambiguous,
		})
	case errors.As(err, &rowErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"row":   rowErr,
		})
	case errors.Is(err, importer.ErrNoLFLSheet), errors.Is(err, parser.ErrEmptyTable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, parser.ErrUnsupportedFormat):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	default:
		respondError(c, err)
	}
}

// ListImports 导入日志
// GET /api/imports?limit=20
func (h *Handler) ListImports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	logs, err := h.store.ListImportLogs(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}
