package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"yoyboard/internal/model"
)

// ActionTableHeaders 门店行动表列名
var ActionTableHeaders = []string{
	"Store",
	"Sales LY",
	"Sales CY",
	"YOY Δ",
	"YOY %",
	"YOY Spike Index",
	"Qty YOY %",
	"Volatility Index",
	"Execution Verdict",
}

// ActionTableRows 门店行动表（展示格式）
func ActionTableRows(summaries []model.StoreSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Store,
			FormatMoney(s.SalesBaselineTotal),
			FormatMoney(s.SalesComparisonTotal),
			FormatMoney(s.YOYDelta),
			FormatPct(s.YOYPct),
			FormatOptional(s.SpikeIndex),
			FormatPct(s.QtyYOYPct),
			FormatOptional(s.VolatilityIndex),
			s.Verdict.Label(),
		})
	}
	return rows
}

// RenderTable 输出对齐的文本表格；首列左对齐，其余右对齐
func RenderTable(w io.Writer, headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if cw := runewidth.StringWidth(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(cells []string) string {
		var sb strings.Builder
		sb.WriteString("|")
		for i, width := range widths {
			content := ""
			if i < len(cells) {
				content = cells[i]
			}
			sb.WriteString(" ")
			if i == 0 {
				sb.WriteString(runewidth.FillRight(content, width))
			} else {
				sb.WriteString(runewidth.FillLeft(content, width))
			}
			sb.WriteString(" |")
		}
		return sb.String()
	}

	sep := make([]string, len(widths))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}

	lines := []string{line(headers), line(sep)}
	for _, row := range rows {
		lines = append(lines, line(row))
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// RenderOverview 输出总览指标
func RenderOverview(w io.Writer, ov model.Overview) error {
	rows := [][]string{
		{"Stores", fmt.Sprintf("%d", ov.StoreCount)},
		{"Total LY Sales", FormatMoney(ov.SalesBaseline)},
		{"Total CY Sales", FormatMoney(ov.SalesCompare)},
		{"Net YOY Impact", FormatMoney(ov.NetYOY)},
		{"YOY %", FormatPct(ov.YOYPct)},
		{"% Stores Improved", decimalPct(ov.PctImproved)},
	}
	for _, v := range model.Verdicts {
		rows = append(rows, []string{v.Label(), fmt.Sprintf("%d", ov.VerdictCounts[v])})
	}
	return RenderTable(w, []string{"Metric", "Value"}, rows)
}

// decimalPct 已是百分数的值（0-100）
func decimalPct(v float64) string {
	return FormatAmount(v, 1) + "%"
}
