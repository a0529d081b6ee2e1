package model

import "time"

// Overview 同店总览（CEO Verdict 卡片）
type Overview struct {
	StoreCount     int             `json:"storeCount"`
	SalesBaseline  float64         `json:"salesBaseline"`
	SalesCompare   float64         `json:"salesComparison"`
	NetYOY         float64         `json:"netYoy"`
	YOYPct         float64         `json:"yoyPct"`
	PctImproved    float64         `json:"pctImproved"` // 百分数，0-100
	VerdictCounts  map[Verdict]int `json:"verdictCounts"`
	SpikeThreshold float64         `json:"spikeThreshold"`
}

// ImpactRow 门店同比影响（横向条形图）
type ImpactRow struct {
	Store       string   `json:"store"`
	YOYDelta    float64  `json:"yoyDelta"`
	SpikeIndex  *float64 `json:"spikeIndex"`
	Positive    bool     `json:"positive"`
	SpikeDriven bool     `json:"spikeDriven"`
}

// Heatmap 门店 × 日期 的日同比差额矩阵
type Heatmap struct {
	Stores []string     `json:"stores"`
	Dates  []time.Time  `json:"dates"`
	Labels []string     `json:"labels"` // 02-Jan
	Cells  [][]*float64 `json:"cells"`  // [store][date]，无数据为 nil
}

// ShapePoint 单店逐日 LY/CY 走势
type ShapePoint struct {
	Date            time.Time `json:"date"`
	SalesBaseline   float64   `json:"salesBaseline"`
	SalesComparison float64   `json:"salesComparison"`
	DailyDelta      float64   `json:"dailyDelta"`
}

// ValueVolumePoint 价值-销量散点
type ValueVolumePoint struct {
	Store     string  `json:"store"`
	QtyYOYPct float64 `json:"qtyYoyPct"`
	YOYPct    float64 `json:"yoyPct"`
	Verdict   Verdict `json:"verdict"`
}

// HeadOfficeTotals 总部同比
type HeadOfficeTotals struct {
	SalesBaseline   float64 `json:"salesBaseline"`
	SalesComparison float64 `json:"salesComparison"`
	NetYOY          float64 `json:"netYoy"`
}

// SiteTotal 单个站点的合计
type SiteTotal struct {
	Store string  `json:"store"`
	Sales float64 `json:"sales"`
}

// ClosedStoresImpact 闭店损失
type ClosedStoresImpact struct {
	RevenueLost float64     `json:"revenueLost"`
	Sites       []SiteTotal `json:"sites"`
}

// NewStoresContribution 新店贡献
type NewStoresContribution struct {
	TotalSales  float64     `json:"totalSales"`
	AvgPerStore float64     `json:"avgPerStore"`
	StoreCount  int         `json:"storeCount"`
	Sites       []SiteTotal `json:"sites"`
}
