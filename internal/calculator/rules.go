package calculator

import (
	"yoyboard/internal/model"
)

// DefaultSpikeThreshold 冲量判定阈值：最大单日差额 / 平均单日差额
const DefaultSpikeThreshold = 1.8

// Thresholds 结论判定阈值
type Thresholds struct {
	SpikeThreshold float64 `json:"spikeThreshold" toml:"spike_threshold"`
}

// DefaultThresholds 默认阈值
func DefaultThresholds() Thresholds {
	return Thresholds{SpikeThreshold: DefaultSpikeThreshold}
}

// VerdictInput 结论判定所需的指标
type VerdictInput struct {
	YOYPct     float64
	QtyYOYPct  float64
	SpikeIndex *float64
}

// VerdictRule 结论规则
type VerdictRule struct {
	Verdict model.Verdict
	Match   func(in VerdictInput, th Thresholds) bool
}

// VerdictRules 按优先级排列的结论规则，命中第一条即返回
var VerdictRules = []VerdictRule{
	{
		Verdict: model.VerdictDeclined,
		Match: func(in VerdictInput, _ Thresholds) bool {
			return in.YOYPct < 0
		},
	},
	{
		// 少数异常大日拉动的增长
		Verdict: model.VerdictImprovedForced,
		Match: func(in VerdictInput, th Thresholds) bool {
			return in.SpikeIndex != nil && *in.SpikeIndex > th.SpikeThreshold
		},
	},
	{
		Verdict: model.VerdictImprovedControlled,
		Match: func(in VerdictInput, _ Thresholds) bool {
			return in.YOYPct > 0 && in.QtyYOYPct >= 0
		},
	},
	{
		// 量跌价涨
		Verdict: model.VerdictPriceDrivenRisk,
		Match: func(in VerdictInput, _ Thresholds) bool {
			return in.YOYPct > 0 && in.QtyYOYPct < 0
		},
	},
}

// Classify 按规则表判定结论，未命中任何规则返回 UNCLASSIFIED
func Classify(in VerdictInput, th Thresholds) model.Verdict {
	for _, rule := range VerdictRules {
		if rule.Match(in, th) {
			return rule.Verdict
		}
	}
	return model.VerdictUnclassified
}
