package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/op/go-logging"
	"github.com/xuri/excelize/v2"
	"yoyboard/internal/calculator"
	"yoyboard/internal/model"
	"yoyboard/internal/report"
)

var log = logging.MustGetLogger("exporter")

// 工作表名称
const (
	SheetActionTable  = "Action Table"
	SheetOverview     = "Overview"
	SheetClosedStores = "Closed Stores"
	SheetNewStores    = "New Stores"
)

// Exporter 门店行动表导出器
type Exporter struct {
	calc *calculator.Calculator
}

// NewExporter 创建导出器
func NewExporter(calc *calculator.Calculator) *Exporter {
	return &Exporter{calc: calc}
}

// ExportOptions 导出选项
//
// Overview 等可选部分为 nil 时不生成对应工作表。
type ExportOptions struct {
	DatasetID string
	Period    string
	Dataset   *model.Dataset // 非 nil 时只导出数据集包含的分部

	Overview     *model.Overview
	HeadOffice   *model.HeadOfficeTotals
	ClosedStores *model.ClosedStoresImpact
	NewStores    *model.NewStoresContribution

	Progress func(ProgressEvent)
}

// Export 按数据集导出完整工作簿（行动表 + 总览 + 闭店/新店）
func (e *Exporter) Export(opts ExportOptions) (*excelize.File, error) {
	newProgressTracker(opts.Progress).stage(0, StageLoading)

	summaries, err := e.calc.Summaries(opts.DatasetID)
	if err != nil {
		return nil, err
	}
	overview, err := e.calc.Overview(opts.DatasetID)
	if err != nil {
		return nil, err
	}
	ho, err := e.calc.HeadOffice(opts.DatasetID)
	if err != nil {
		return nil, err
	}
	closed, err := e.calc.ClosedStores(opts.DatasetID)
	if err != nil {
		return nil, err
	}
	newStores, err := e.calc.NewStores(opts.DatasetID)
	if err != nil {
		return nil, err
	}

	opts.Overview = &overview
	if opts.includes(model.SheetKindHO) {
		opts.HeadOffice = &ho
	}
	if opts.includes(model.SheetKindClosed) {
		opts.ClosedStores = &closed
	}
	if opts.includes(model.SheetKindNew) {
		opts.NewStores = &newStores
	}
	return ExportXLSX(summaries, opts)
}

func (o ExportOptions) includes(kind model.SheetKind) bool {
	return o.Dataset == nil || o.Dataset.HasKind(kind)
}

// ExportCSV 按数据集导出行动表 CSV
func (e *Exporter) ExportCSV(w io.Writer, datasetID string) error {
	summaries, err := e.calc.Summaries(datasetID)
	if err != nil {
		return err
	}
	return WriteCSV(w, summaries)
}

type sheetStyles struct {
	header  int
	money   int
	percent int
	index   int
	title   int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var st sheetStyles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F3864"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return st, err
	}

	moneyFmt := "#,##0"
	if st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt}); err != nil {
		return st, err
	}
	pctFmt := "0.0%"
	if st.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt}); err != nil {
		return st, err
	}
	indexFmt := "0.00"
	if st.index, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &indexFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return st, err
	}
	if st.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}}); err != nil {
		return st, err
	}
	return st, nil
}

// ExportXLSX 生成行动表工作簿；不适用的指标写 N/A
func ExportXLSX(summaries []model.StoreSummary, opts ExportOptions) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetActionTable); err != nil {
		_ = f.Close()
		return nil, err
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create styles: %w", err)
	}

	progress := newProgressTracker(opts.Progress)
	progress.stage(actionTableStart, StageActionTable)
	if err := writeActionTable(f, styles, summaries, progress); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入 %s 失败: %w", SheetActionTable, err)
	}

	progress.stage(85, StageSummary)
	if opts.Overview != nil {
		if err := writeOverview(f, styles, opts); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("写入 %s 失败: %w", SheetOverview, err)
		}
	}
	if opts.ClosedStores != nil {
		err := writeSiteSheet(f, styles, SheetClosedStores, "Sales LY", opts.ClosedStores.Sites, "Revenue Lost", opts.ClosedStores.RevenueLost)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("写入 %s 失败: %w", SheetClosedStores, err)
		}
	}
	if opts.NewStores != nil {
		err := writeSiteSheet(f, styles, SheetNewStores, "Sales CY", opts.NewStores.Sites, "Total Contribution", opts.NewStores.TotalSales)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("写入 %s 失败: %w", SheetNewStores, err)
		}
	}

	f.SetActiveSheet(0)
	progress.stage(100, StageDone)
	log.Debugf("exported %d stores", len(summaries))
	return f, nil
}

func writeActionTable(f *excelize.File, styles sheetStyles, summaries []model.StoreSummary, progress *progressTracker) error {
	sheet := SheetActionTable

	header := make([]interface{}, len(report.ActionTableHeaders))
	for i, h := range report.ActionTableHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", styles.header); err != nil {
		return err
	}

	for i, s := range summaries {
		row := i + 2
		values := []interface{}{
			s.Store,
			report.Round(s.SalesBaselineTotal, 2),
			report.Round(s.SalesComparisonTotal, 2),
			report.Round(s.YOYDelta, 2),
			s.YOYPct,
			optionalCell(s.SpikeIndex),
			s.QtyYOYPct,
			optionalCell(s.VolatilityIndex),
			s.Verdict.Label(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}

		progress.stores(i+1, len(summaries))
	}

	if n := len(summaries); n > 0 {
		last := n + 1
		ranges := []struct {
			from, to string
			style    int
		}{
			{"B", "D", styles.money},
			{"E", "E", styles.percent},
			{"F", "F", styles.index},
			{"G", "G", styles.percent},
			{"H", "H", styles.index},
		}
		for _, r := range ranges {
			if err := f.SetCellStyle(sheet, fmt.Sprintf("%s2", r.from), fmt.Sprintf("%s%d", r.to, last), r.style); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "H", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "I", "I", 26); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

type overviewLine struct {
	label string
	value interface{}
	style int
}

func writeOverview(f *excelize.File, styles sheetStyles, opts ExportOptions) error {
	sheet := SheetOverview
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	title := "YOY Performance"
	if opts.Period != "" {
		title += " – " + opts.Period
	}
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", styles.title); err != nil {
		return err
	}

	ov := opts.Overview
	lines := []overviewLine{
		{"Stores", ov.StoreCount, 0},
		{"Total LY Sales", report.Round(ov.SalesBaseline, 2), styles.money},
		{"Total CY Sales", report.Round(ov.SalesCompare, 2), styles.money},
		{"Net YOY Impact", report.Round(ov.NetYOY, 2), styles.money},
		{"YOY %", ov.YOYPct, styles.percent},
		{"% Stores Improved", ov.PctImproved / 100, styles.percent},
		{"Spike Threshold", ov.SpikeThreshold, styles.index},
	}
	for _, v := range model.Verdicts {
		lines = append(lines, overviewLine{v.Label(), ov.VerdictCounts[v], 0})
	}
	if ho := opts.HeadOffice; ho != nil {
		lines = append(lines,
			overviewLine{"HO Sales LY", report.Round(ho.SalesBaseline, 2), styles.money},
			overviewLine{"HO Sales CY", report.Round(ho.SalesComparison, 2), styles.money},
			overviewLine{"HO Net YOY", report.Round(ho.NetYOY, 2), styles.money},
		)
	}
	if ns := opts.NewStores; ns != nil {
		lines = append(lines,
			overviewLine{"New Stores", ns.StoreCount, 0},
			overviewLine{"New Stores Sales", report.Round(ns.TotalSales, 2), styles.money},
			overviewLine{"Avg per New Store", report.Round(ns.AvgPerStore, 2), styles.money},
		)
	}
	if cs := opts.ClosedStores; cs != nil {
		lines = append(lines,
			overviewLine{"Closed Stores", len(cs.Sites), 0},
			overviewLine{"Revenue Lost", report.Round(cs.RevenueLost, 2), styles.money},
		)
	}

	header := []interface{}{"Metric", "Value"}
	if err := f.SetSheetRow(sheet, "A3", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A3", "B3", styles.header); err != nil {
		return err
	}

	for i, line := range lines {
		row := i + 4
		values := []interface{}{line.label, line.value}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		if line.style == 0 {
			continue
		}
		cell := fmt.Sprintf("B%d", row)
		if err := f.SetCellStyle(sheet, cell, cell, line.style); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 26)
}

func writeSiteSheet(f *excelize.File, styles sheetStyles, sheet, valueHeader string, sites []model.SiteTotal, totalLabel string, total float64) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"Site", valueHeader}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", styles.header); err != nil {
		return err
	}

	for i, site := range sites {
		values := []interface{}{site.Store, report.Round(site.Sales, 2)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	totalRow := len(sites) + 2
	totalValues := []interface{}{totalLabel, report.Round(total, 2)}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", totalRow), &totalValues); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("B%d", totalRow), styles.money); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}

// WriteCSV 行动表 CSV（金额保留两位小数，百分比为百分数）
func WriteCSV(w io.Writer, summaries []model.StoreSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(report.ActionTableHeaders); err != nil {
		return err
	}
	for _, s := range summaries {
		record := []string{
			s.Store,
			report.RoundPlain(s.SalesBaselineTotal, 2),
			report.RoundPlain(s.SalesComparisonTotal, 2),
			report.RoundPlain(s.YOYDelta, 2),
			report.RoundPlain(s.YOYPct*100, 2),
			optionalText(s.SpikeIndex),
			report.RoundPlain(s.QtyYOYPct*100, 2),
			optionalText(s.VolatilityIndex),
			s.Verdict.Label(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func optionalCell(v *float64) interface{} {
	if v == nil {
		return report.NA
	}
	return report.Round(*v, 4)
}

func optionalText(v *float64) string {
	if v == nil {
		return report.NA
	}
	return report.RoundPlain(*v, 4)
}
