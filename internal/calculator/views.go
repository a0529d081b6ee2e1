package calculator

import (
	"sort"
	"time"

	"yoyboard/internal/model"
)

// HeatmapDateLayout 热力图列标签格式
const HeatmapDateLayout = "02-Jan"

// Overview 同店总览
func Overview(summaries []model.StoreSummary, th Thresholds) model.Overview {
	ov := model.Overview{
		StoreCount:     len(summaries),
		VerdictCounts:  make(map[model.Verdict]int, len(model.Verdicts)),
		SpikeThreshold: th.SpikeThreshold,
	}
	for _, v := range model.Verdicts {
		ov.VerdictCounts[v] = 0
	}

	improved := 0
	for _, s := range summaries {
		ov.SalesBaseline += s.SalesBaselineTotal
		ov.SalesCompare += s.SalesComparisonTotal
		ov.VerdictCounts[s.Verdict]++
		if s.YOYPct > 0 {
			improved++
		}
	}
	ov.NetYOY = ov.SalesCompare - ov.SalesBaseline
	ov.YOYPct = calcRate(ov.SalesCompare, ov.SalesBaseline)
	if len(summaries) > 0 {
		ov.PctImproved = float64(improved) / float64(len(summaries)) * 100
	}
	return ov
}

// Impact 门店同比影响，按 YOYDelta 升序
func Impact(summaries []model.StoreSummary, th Thresholds) []model.ImpactRow {
	rows := make([]model.ImpactRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, model.ImpactRow{
			Store:       s.Store,
			YOYDelta:    s.YOYDelta,
			SpikeIndex:  s.SpikeIndex,
			Positive:    s.YOYDelta > 0,
			SpikeDriven: s.SpikeIndex != nil && *s.SpikeIndex > th.SpikeThreshold,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].YOYDelta < rows[j].YOYDelta
	})
	return rows
}

// Heatmap 门店 × 日期 的日差额矩阵；同店同日多行累加，无日期的行忽略
func Heatmap(rows []model.CanonicalRow) model.Heatmap {
	type cellKey struct {
		store string
		date  time.Time
	}
	cells := make(map[cellKey]float64)
	storeSet := make(map[string]struct{})
	dateSet := make(map[time.Time]struct{})

	for _, r := range rows {
		if !r.HasDate() {
			continue
		}
		cells[cellKey{r.Store, r.Date}] += r.DailyDelta
		storeSet[r.Store] = struct{}{}
		dateSet[r.Date] = struct{}{}
	}

	hm := model.Heatmap{
		Stores: make([]string, 0, len(storeSet)),
		Dates:  make([]time.Time, 0, len(dateSet)),
	}
	for s := range storeSet {
		hm.Stores = append(hm.Stores, s)
	}
	for d := range dateSet {
		hm.Dates = append(hm.Dates, d)
	}
	sort.Strings(hm.Stores)
	sort.Slice(hm.Dates, func(i, j int) bool { return hm.Dates[i].Before(hm.Dates[j]) })

	hm.Labels = make([]string, len(hm.Dates))
	for i, d := range hm.Dates {
		hm.Labels[i] = d.Format(HeatmapDateLayout)
	}

	hm.Cells = make([][]*float64, len(hm.Stores))
	for i, s := range hm.Stores {
		hm.Cells[i] = make([]*float64, len(hm.Dates))
		for j, d := range hm.Dates {
			if v, ok := cells[cellKey{s, d}]; ok {
				hm.Cells[i][j] = &v
			}
		}
	}
	return hm
}

// Shape 单店逐日走势，按日期升序
func Shape(rows []model.CanonicalRow, store string) []model.ShapePoint {
	points := make([]model.ShapePoint, 0)
	for _, r := range rows {
		if r.Store != store {
			continue
		}
		points = append(points, model.ShapePoint{
			Date:            r.Date,
			SalesBaseline:   r.SalesBaseline,
			SalesComparison: r.SalesComparison,
			DailyDelta:      r.DailyDelta,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// ValueVolume 价值-销量散点
func ValueVolume(summaries []model.StoreSummary) []model.ValueVolumePoint {
	points := make([]model.ValueVolumePoint, 0, len(summaries))
	for _, s := range summaries {
		points = append(points, model.ValueVolumePoint{
			Store:     s.Store,
			QtyYOYPct: s.QtyYOYPct,
			YOYPct:    s.YOYPct,
			Verdict:   s.Verdict,
		})
	}
	return points
}

// HeadOffice 总部同比合计
func HeadOffice(rows []model.CanonicalRow) model.HeadOfficeTotals {
	var t model.HeadOfficeTotals
	for _, r := range rows {
		t.SalesBaseline += r.SalesBaseline
		t.SalesComparison += r.SalesComparison
	}
	t.NetYOY = t.SalesComparison - t.SalesBaseline
	return t
}

// ClosedStores 闭店损失：基准年销售额合计，站点按损失降序
func ClosedStores(rows []model.CanonicalRow) model.ClosedStoresImpact {
	sites := siteTotals(rows, func(r model.CanonicalRow) float64 { return r.SalesBaseline })
	impact := model.ClosedStoresImpact{Sites: sites}
	for _, s := range sites {
		impact.RevenueLost += s.Sales
	}
	return impact
}

// NewStores 新店贡献：对比年销售额合计及单店均值
func NewStores(rows []model.CanonicalRow) model.NewStoresContribution {
	sites := siteTotals(rows, func(r model.CanonicalRow) float64 { return r.SalesComparison })
	c := model.NewStoresContribution{Sites: sites, StoreCount: len(sites)}
	for _, s := range sites {
		c.TotalSales += s.Sales
	}
	if c.StoreCount > 0 {
		c.AvgPerStore = c.TotalSales / float64(c.StoreCount)
	}
	return c
}

// siteTotals 按站点汇总，金额降序、同额按站点名升序
func siteTotals(rows []model.CanonicalRow, value func(model.CanonicalRow) float64) []model.SiteTotal {
	index := make(map[string]int)
	sites := make([]model.SiteTotal, 0)
	for _, r := range rows {
		i, ok := index[r.Store]
		if !ok {
			i = len(sites)
			index[r.Store] = i
			sites = append(sites, model.SiteTotal{Store: r.Store})
		}
		sites[i].Sales += value(r)
	}
	sort.SliceStable(sites, func(i, j int) bool {
		if sites[i].Sales != sites[j].Sales {
			return sites[i].Sales > sites[j].Sales
		}
		return sites[i].Store < sites[j].Store
	})
	return sites
}
