package model

// Verdict 门店执行结论
type Verdict string

const (
	VerdictDeclined           Verdict = "DECLINED"
	VerdictImprovedForced     Verdict = "IMPROVED_FORCED"
	VerdictImprovedControlled Verdict = "IMPROVED_CONTROLLED"
	VerdictPriceDrivenRisk    Verdict = "PRICE_DRIVEN_RISK"
	VerdictUnclassified       Verdict = "UNCLASSIFIED"
)

// Verdicts 全部结论（按规则优先级）
var Verdicts = []Verdict{
	VerdictDeclined,
	VerdictImprovedForced,
	VerdictImprovedControlled,
	VerdictPriceDrivenRisk,
	VerdictUnclassified,
}

// Label 展示名称（与看板、导出保持一致）
func (v Verdict) Label() string {
	switch v {
	case VerdictDeclined:
		return "DECLINED"
	case VerdictImprovedForced:
		return "IMPROVED – FORCED"
	case VerdictImprovedControlled:
		return "IMPROVED – CONTROLLED"
	case VerdictPriceDrivenRisk:
		return "PRICE-DRIVEN RISK"
	default:
		return "UNCLASSIFIED"
	}
}

// StoreSummary 门店同比汇总
//
// 可为 nil 的指标表示“不适用”，不能按 0 处理：
//   - StddevDailyDelta: 样本数 < 2
//   - SpikeIndex: AvgDailyDelta <= 0
//   - VolatilityIndex: AvgDailyDelta == 0 或标准差不可用
type StoreSummary struct {
	Store string `json:"store"`
	Days  int    `json:"days"`

	SalesBaselineTotal   float64 `json:"salesBaselineTotal"`
	SalesComparisonTotal float64 `json:"salesComparisonTotal"`
	QtyBaselineTotal     float64 `json:"qtyBaselineTotal"`
	QtyComparisonTotal   float64 `json:"qtyComparisonTotal"`

	MaxDailyDelta    float64  `json:"maxDailyDelta"`
	MinDailyDelta    float64  `json:"minDailyDelta"`
	AvgDailyDelta    float64  `json:"avgDailyDelta"`
	StddevDailyDelta *float64 `json:"stddevDailyDelta"`

	YOYDelta        float64  `json:"yoyDelta"`
	YOYPct          float64  `json:"yoyPct"`
	QtyYOYPct       float64  `json:"qtyYoyPct"`
	SpikeIndex      *float64 `json:"spikeIndex"`
	VolatilityIndex *float64 `json:"volatilityIndex"`

	Verdict      Verdict `json:"verdict"`
	VerdictLabel string  `json:"verdictLabel"`
}
