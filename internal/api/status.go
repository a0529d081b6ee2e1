package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"yoyboard/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool           `json:"initialized"` // 是否已有数据集
	CurrentDataset *model.Dataset `json:"currentDataset"`
	DatasetCount   int            `json:"datasetCount"`
	BaselineYear   int            `json:"baselineYear"`
	ComparisonYear int            `json:"comparisonYear"`
	SpikeThreshold float64        `json:"spikeThreshold"`
	LastImportTime *time.Time     `json:"lastImportTime"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	cfg := h.config()
	resp := StatusResponse{
		BaselineYear:   cfg.Business.BaselineYear,
		ComparisonYear: cfg.Business.ComparisonYear,
		SpikeThreshold: h.calc.Thresholds().SpikeThreshold,
	}

	datasets, err := h.store.ListDatasets()
	if err != nil {
		respondError(c, err)
		return
	}
	resp.DatasetCount = len(datasets)
	resp.Initialized = len(datasets) > 0

	ds, err := h.dataset(c)
	switch {
	case err == nil:
		resp.CurrentDataset = ds
	case errors.Is(err, errNoDataset):
	default:
		log.Warningf("status: resolve current dataset: %v", err)
	}

	if logs, err := h.store.ListImportLogs(1); err == nil && len(logs) > 0 {
		t := logs[0].CreatedAt
		resp.LastImportTime = &t
	}

	c.JSON(http.StatusOK, resp)
}
