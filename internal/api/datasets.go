package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"yoyboard/internal/model"
	"yoyboard/internal/store"
)

type datasetsResponse struct {
	Current string           `json:"current"`
	Items   []*model.Dataset `json:"items"`
}

// ListDatasets 数据集列表（最近导入在前）
// GET /api/datasets
func (h *Handler) ListDatasets(c *gin.Context) {
	items, err := h.store.ListDatasets()
	if err != nil {
		respondError(c, err)
		return
	}

	current, err := h.store.GetCurrentDataset()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, datasetsResponse{
		Current: current,
		Items:   items,
	})
}

type selectDatasetRequest struct {
	ID string `json:"id" binding:"required"`
}

// SelectDataset 切换当前数据集（影响：看板/导出的默认数据集）
// POST /api/datasets/select
func (h *Handler) SelectDataset(c *gin.Context) {
	var req selectDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	if err := h.store.SetCurrentDataset(req.ID); err != nil {
		respondError(c, err)
		return
	}
	ds, err := h.store.GetDataset(req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

// DeleteDataset 删除数据集及其全部记录
// DELETE /api/datasets/:id
func (h *Handler) DeleteDataset(c *gin.Context) {
	if err := h.store.DeleteDataset(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSheets 数据集各 Sheet 的导入信息
// GET /api/datasets/:id/sheets
func (h *Handler) ListSheets(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.GetDataset(id); err != nil {
		respondError(c, err)
		return
	}
	metas, err := h.store.ListSheetMeta(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": metas})
}
