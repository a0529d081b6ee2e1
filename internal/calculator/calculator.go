package calculator

import (
	"fmt"
	"sync"

	"yoyboard/internal/model"
)

// RowSource 统一口径记录的来源（store.Store 实现）
type RowSource interface {
	GetSalesRows(datasetID string, kind model.SheetKind) ([]model.CanonicalRow, error)
}

// Calculator 按数据集计算看板数据；每次调用都从记录重新计算
type Calculator struct {
	source RowSource

	mu         sync.RWMutex
	thresholds Thresholds
}

// NewCalculator 创建计算器
func NewCalculator(source RowSource, th Thresholds) *Calculator {
	return &Calculator{
		source:     source,
		thresholds: th,
	}
}

// Thresholds 当前使用的阈值
func (c *Calculator) Thresholds() Thresholds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.thresholds
}

// SetThresholds 更新阈值（配置修改后调用）
func (c *Calculator) SetThresholds(th Thresholds) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thresholds = th
}

func (c *Calculator) rows(datasetID string, kind model.SheetKind) ([]model.CanonicalRow, error) {
	rows, err := c.source.GetSalesRows(datasetID, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s rows: %w", kind, err)
	}
	return rows, nil
}

// Summaries 同店门店汇总（按首次出现顺序）
func (c *Calculator) Summaries(datasetID string) ([]model.StoreSummary, error) {
	rows, err := c.rows(datasetID, model.SheetKindLFL)
	if err != nil {
		return nil, err
	}
	return Aggregate(rows, c.Thresholds()), nil
}

// Overview 同店总览
func (c *Calculator) Overview(datasetID string) (model.Overview, error) {
	summaries, err := c.Summaries(datasetID)
	if err != nil {
		return model.Overview{}, err
	}
	return Overview(summaries, c.Thresholds()), nil
}

// Impact 门店同比影响
func (c *Calculator) Impact(datasetID string) ([]model.ImpactRow, error) {
	summaries, err := c.Summaries(datasetID)
	if err != nil {
		return nil, err
	}
	return Impact(summaries, c.Thresholds()), nil
}

// Heatmap 日差额热力图
func (c *Calculator) Heatmap(datasetID string) (model.Heatmap, error) {
	rows, err := c.rows(datasetID, model.SheetKindLFL)
	if err != nil {
		return model.Heatmap{}, err
	}
	return Heatmap(rows), nil
}

// Shape 单店走势
func (c *Calculator) Shape(datasetID, store string) ([]model.ShapePoint, error) {
	rows, err := c.rows(datasetID, model.SheetKindLFL)
	if err != nil {
		return nil, err
	}
	return Shape(rows, store), nil
}

// ValueVolume 价值-销量散点
func (c *Calculator) ValueVolume(datasetID string) ([]model.ValueVolumePoint, error) {
	summaries, err := c.Summaries(datasetID)
	if err != nil {
		return nil, err
	}
	return ValueVolume(summaries), nil
}

// HeadOffice 总部同比
func (c *Calculator) HeadOffice(datasetID string) (model.HeadOfficeTotals, error) {
	rows, err := c.rows(datasetID, model.SheetKindHO)
	if err != nil {
		return model.HeadOfficeTotals{}, err
	}
	return HeadOffice(rows), nil
}

// ClosedStores 闭店损失
func (c *Calculator) ClosedStores(datasetID string) (model.ClosedStoresImpact, error) {
	rows, err := c.rows(datasetID, model.SheetKindClosed)
	if err != nil {
		return model.ClosedStoresImpact{}, err
	}
	return ClosedStores(rows), nil
}

// NewStores 新店贡献
func (c *Calculator) NewStores(datasetID string) (model.NewStoresContribution, error) {
	rows, err := c.rows(datasetID, model.SheetKindNew)
	if err != nil {
		return model.NewStoresContribution{}, err
	}
	return NewStores(rows), nil
}
