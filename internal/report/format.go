package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NA 不适用指标的展示值
const NA = "N/A"

// FormatMoney 金额：₹ + 千分位，取整
func FormatMoney(v float64) string {
	return formatGrouped(v, 0, "₹")
}

// FormatAmount 带千分位的数值
func FormatAmount(v float64, places int32) string {
	return formatGrouped(v, places, "")
}

// FormatPct 比率转百分数，保留一位小数（0.123 -> "12.3%"）
func FormatPct(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(1) + "%"
}

// FormatRatio 指数，保留两位小数
func FormatRatio(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatOptional 可为空的指数，nil 显示为 N/A
func FormatOptional(v *float64) string {
	if v == nil {
		return NA
	}
	return FormatRatio(*v)
}

// Round 按十进制四舍五入（远离零），避免二进制误差（2.675 -> 2.68）
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundPlain 四舍五入后的纯数字文本（CSV 使用）
func RoundPlain(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}

func formatGrouped(v float64, places int32, symbol string) string {
	d := decimal.NewFromFloat(v).Round(places)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	text := d.StringFixed(places)
	intPart, fracPart := text, ""
	if i := strings.IndexByte(text, '.'); i >= 0 {
		intPart, fracPart = text[:i], text[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + symbol + b.String() + fracPart
}
