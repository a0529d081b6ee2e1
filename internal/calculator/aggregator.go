package calculator

import (
	"math"

	"yoyboard/internal/model"
)

// storeGroup 单店聚合中间结果
type storeGroup struct {
	store  string
	deltas []float64

	salesBaseline   float64
	salesComparison float64
	qtyBaseline     float64
	qtyComparison   float64
}

// Aggregate 按门店汇总并判定结论
//
// 门店按首次出现顺序输出；门店名精确匹配（区分大小写，不做裁剪）。
// 空输入返回空切片。
func Aggregate(rows []model.CanonicalRow, th Thresholds) []model.StoreSummary {
	groups := groupByStore(rows)

	summaries := make([]model.StoreSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, summarize(g, th))
	}
	return summaries
}

func groupByStore(rows []model.CanonicalRow) []*storeGroup {
	index := make(map[string]*storeGroup)
	var groups []*storeGroup

	for _, r := range rows {
		g, ok := index[r.Store]
		if !ok {
			g = &storeGroup{store: r.Store}
			index[r.Store] = g
			groups = append(groups, g)
		}
		g.salesBaseline += r.SalesBaseline
		g.salesComparison += r.SalesComparison
		g.qtyBaseline += r.QtyBaseline
		g.qtyComparison += r.QtyComparison
		g.deltas = append(g.deltas, r.DailyDelta)
	}
	return groups
}

func summarize(g *storeGroup, th Thresholds) model.StoreSummary {
	s := model.StoreSummary{
		Store:                g.store,
		Days:                 len(g.deltas),
		SalesBaselineTotal:   g.salesBaseline,
		SalesComparisonTotal: g.salesComparison,
		QtyBaselineTotal:     g.qtyBaseline,
		QtyComparisonTotal:   g.qtyComparison,
	}

	s.MaxDailyDelta, s.MinDailyDelta = g.deltas[0], g.deltas[0]
	for _, d := range g.deltas[1:] {
		if d > s.MaxDailyDelta {
			s.MaxDailyDelta = d
		}
		if d < s.MinDailyDelta {
			s.MinDailyDelta = d
		}
	}
	s.AvgDailyDelta = mean(g.deltas)
	s.StddevDailyDelta = sampleStddev(g.deltas, s.AvgDailyDelta)

	s.YOYDelta = s.SalesComparisonTotal - s.SalesBaselineTotal
	s.YOYPct = calcRate(s.SalesComparisonTotal, s.SalesBaselineTotal)
	s.QtyYOYPct = calcRate(s.QtyComparisonTotal, s.QtyBaselineTotal)

	if s.AvgDailyDelta > 0 {
		s.SpikeIndex = ratio(s.MaxDailyDelta, s.AvgDailyDelta)
	}
	if s.AvgDailyDelta != 0 && s.StddevDailyDelta != nil {
		s.VolatilityIndex = ratio(*s.StddevDailyDelta, math.Abs(s.AvgDailyDelta))
	}

	s.Verdict = Classify(VerdictInput{
		YOYPct:     s.YOYPct,
		QtyYOYPct:  s.QtyYOYPct,
		SpikeIndex: s.SpikeIndex,
	}, th)
	s.VerdictLabel = s.Verdict.Label()
	return s
}
