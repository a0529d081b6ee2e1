package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"yoyboard/internal/model"
)

// withDataset 解析数据集后执行 fn，并以 JSON 返回结果
//
// 每次请求都从记录重新计算，不缓存汇总结果。
func (h *Handler) withDataset(c *gin.Context, fn func(ds *model.Dataset) (interface{}, error)) {
	ds, err := h.dataset(c)
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := fn(ds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSummaries 门店同比汇总（不适用的指标为 null）
// GET /api/summaries
func (h *Handler) GetSummaries(c *gin.Context) {
	h.withDataset(c, func(ds *model.Dataset) (interface{}, error) {
		return h.calc.Summaries(ds.ID)
	})
}

type overviewResponse struct {
	Dataset  *model.Dataset `json:"dataset"`
	Overview model.Overview `json:"overview"`
}

// GetOverview 同店总览
// GET /api/overview
func (h *Handler) GetOverview(c *gin.Context) {
	h.withDataset(c, func(ds *model.Dataset) (interface{}, error) {
		ov, err := h.calc.Overview(ds.ID)
		if err != nil {
			return nil, err
		}
		return overviewResponse{Dataset: ds, Overview: ov}, nil
	})
}

// GetImpact 门店同比影响
// GET /api/impact
func (h *Handler) GetImpact(c *gin.Context) {
	h.withDataset(c, func(ds *model.Dataset) (interface{}, error) {
		return h.calc.Impact(ds.ID)
	})
}

// GetHeatmap 日同比差额热力图
// GET /api/heatmap
func (h *Handler) GetHeatmap(c *gin.Context) {
	h.withDataset(c, func(ds *model.Dataset) (interface{}, error) {
		return h.calc.Heatmap(ds.ID)
	})
}

// GetShape 单店逐日走势
// GET /api/shape?store=
func (h *Handler) GetShape(c *gin.Context) {
	store := c.Query("store")
	if store == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 store 参数"})
		return
	}
	h.withDataset(c, func(ds *model.Dataset) (interface{}, error) {
		return h.calc.Shape(ds.ID, store)
	})
}

// GetValueVolume 价值-销量散点
// GET /api/value-volume
func (h *Handler) GetValueVolume(c *gin.Context) {
	h.withDataset(c, func(ds *model.Dataset) (interface{}, error) {
		return h.calc.ValueVolume(ds.ID)
	})
}

// GetHeadOffice 总部同比
// GET /api/head-office
func (h *Handler) GetHeadOffice(c *gin.Context) {
	h.withDataset(c, func(ds *model.Dataset) (interface{}, error) {
		return h.calc.HeadOffice(ds.ID)
	})
}

// GetClosedStores 闭店损失
// GET /api/closed-stores
func (h *Handler) GetClosedStores(c *gin.Context) {
	h.withDataset(c, func(ds *model.Dataset) (interface{}, error) {
		return h.calc.ClosedStores(ds.ID)
	})
}

// GetNewStores 新店贡献
// GET /api/new-stores
func (h *Handler) GetNewStores(c *gin.Context) {
	h.withDataset(c, func(ds *model.Dataset) (interface{}, error) {
		return h.calc.NewStores(ds.ID)
	})
}
