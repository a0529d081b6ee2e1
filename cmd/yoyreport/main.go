// yoyreport 在终端输出门店同比行动表，可选导出 xlsx/csv。
//
//	yoyreport [-mode fixed|pattern] [-xlsx out.xlsx] [-csv out.csv] [-sample out.xlsx] file.xlsx
//
// 列识别失败或数据行无效时退出码为 2。
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	gologging "github.com/op/go-logging"

	"yoyboard/internal/calculator"
	"yoyboard/internal/config"
	"yoyboard/internal/exporter"
	"yoyboard/internal/logging"
	"yoyboard/internal/model"
	"yoyboard/internal/parser"
	"yoyboard/internal/report"
	"yoyboard/internal/sample"
)

var log = gologging.MustGetLogger("yoyreport")

// 退出码
const (
	exitOK     = 0
	exitError  = 1
	exitSchema = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	mode       string
	xlsxOut    string
	csvOut     string
	sampleOut  string
	seed       int64
	configPath string
	input      string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("yoyreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.mode, "mode", "", "列识别模式 fixed|pattern（默认取配置）")
	fs.StringVar(&opts.xlsxOut, "xlsx", "", "导出行动表 Excel")
	fs.StringVar(&opts.csvOut, "csv", "", "导出行动表 CSV")
	fs.StringVar(&opts.sampleOut, "sample", "", "生成样例工作簿")
	fs.Int64Var(&opts.seed, "seed", 2025, "样例数据随机种子")
	fs.StringVar(&opts.configPath, "config", "", "配置文件路径")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: yoyreport [-mode fixed|pattern] [-xlsx out.xlsx] [-csv out.csv] [-sample out.xlsx] file.xlsx")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return opts, errors.New("expected a single input file")
	}
	opts.input = fs.Arg(0)
	if opts.input == "" && opts.sampleOut == "" {
		fs.Usage()
		return opts, errors.New("missing input file")
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitError
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitError
	}
	if err := logging.InitWriter(stderr, cfg.Log.Level); err != nil {
		_ = logging.InitWriter(stderr, "INFO")
	}

	schema := cfg.ParserSchema()
	if opts.mode != "" {
		schema.Mode = parser.ResolveMode(opts.mode)
		if schema.Mode != parser.ModeFixed && schema.Mode != parser.ModePattern {
			fmt.Fprintf(stderr, "invalid -mode %q\n", opts.mode)
			return exitError
		}
	}

	if opts.sampleOut != "" {
		if err := writeSample(opts, cfg); err != nil {
			fmt.Fprintf(stderr, "write sample: %v\n", err)
			return exitError
		}
		fmt.Fprintf(stdout, "sample workbook written to %s\n", opts.sampleOut)
		if opts.input == "" {
			return exitOK
		}
	}

	rows, err := loadRows(opts.input, schema)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		var schemaErr *parser.SchemaError
		var rowErr *parser.RowError
		if errors.As(err, &schemaErr) || errors.As(err, &rowErr) || errors.Is(err, parser.ErrNoLFLSheet) {
			return exitSchema
		}
		return exitError
	}

	th := cfg.Thresholds()
	summaries := calculator.Aggregate(rows[model.SheetKindLFL], th)
	overview := calculator.Overview(summaries, th)
	ho := calculator.HeadOffice(rows[model.SheetKindHO])
	closed := calculator.ClosedStores(rows[model.SheetKindClosed])
	newStores := calculator.NewStores(rows[model.SheetKindNew])

	if err := printReport(stdout, cfg.Business.Period, overview, summaries, rows, ho, closed, newStores); err != nil {
		fmt.Fprintf(stderr, "write report: %v\n", err)
		return exitError
	}

	if opts.xlsxOut != "" {
		xopts := exporter.ExportOptions{Period: cfg.Business.Period, Overview: &overview}
		if len(rows[model.SheetKindHO]) > 0 {
			xopts.HeadOffice = &ho
		}
		if len(rows[model.SheetKindClosed]) > 0 {
			xopts.ClosedStores = &closed
		}
		if len(rows[model.SheetKindNew]) > 0 {
			xopts.NewStores = &newStores
		}
		if err := writeXLSX(opts.xlsxOut, summaries, xopts); err != nil {
			fmt.Fprintf(stderr, "export xlsx: %v\n", err)
			return exitError
		}
		log.Infof("action table written to %s", opts.xlsxOut)
	}
	if opts.csvOut != "" {
		if err := writeCSV(opts.csvOut, summaries); err != nil {
			fmt.Fprintf(stderr, "export csv: %v\n", err)
			return exitError
		}
		log.Infof("action table written to %s", opts.csvOut)
	}
	return exitOK
}

// loadRows 读取工作簿并按类别归一化；同店表出错或缺失时直接返回
func loadRows(path string, schema parser.Schema) (map[model.SheetKind][]model.CanonicalRow, error) {
	wb, err := parser.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}

	rows, err := parser.CollectSheets(wb, schema, parser.CollectHooks{
		OnDone: func(o parser.SheetOutcome) {
			switch o.Status {
			case parser.SheetSkipped:
				log.Debugf("skip sheet %q: %s", o.Sheet.Name, o.Reason)
			case parser.SheetError:
				if !o.Fatal() {
					log.Warningf("skip sheet %q: %s", o.Sheet.Name, o.Reason)
				}
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func printReport(
	w io.Writer,
	period string,
	overview model.Overview,
	summaries []model.StoreSummary,
	rows map[model.SheetKind][]model.CanonicalRow,
	ho model.HeadOfficeTotals,
	closed model.ClosedStoresImpact,
	newStores model.NewStoresContribution,
) error {
	fmt.Fprintf(w, "YOY Performance – %s\n\n", period)
	if err := report.RenderOverview(w, overview); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nStore Action Table")
	if err := report.RenderTable(w, report.ActionTableHeaders, report.ActionTableRows(summaries)); err != nil {
		return err
	}

	var segments [][]string
	if len(rows[model.SheetKindHO]) > 0 {
		segments = append(segments, []string{"Head Office Net YOY", report.FormatMoney(ho.NetYOY)})
	}
	if len(rows[model.SheetKindClosed]) > 0 {
		segments = append(segments, []string{fmt.Sprintf("Closed Stores Revenue Lost (%d)", len(closed.Sites)), report.FormatMoney(closed.RevenueLost)})
	}
	if len(rows[model.SheetKindNew]) > 0 {
		segments = append(segments,
			[]string{fmt.Sprintf("New Stores Contribution (%d)", newStores.StoreCount), report.FormatMoney(newStores.TotalSales)},
			[]string{"Avg per New Store", report.FormatMoney(newStores.AvgPerStore)},
		)
	}
	if len(segments) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nOther Segments")
	return report.RenderTable(w, []string{"Segment", "Value"}, segments)
}

func writeSample(opts options, cfg *config.AppConfig) error {
	sampleOpts := sample.DefaultOptions()
	sampleOpts.BaselineYear = cfg.Business.BaselineYear
	sampleOpts.ComparisonYear = cfg.Business.ComparisonYear

	f, err := sample.NewGenerator(opts.seed).Workbook(sampleOpts)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(opts.sampleOut)
}

func writeXLSX(path string, summaries []model.StoreSummary, opts exporter.ExportOptions) error {
	f, err := exporter.ExportXLSX(summaries, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func writeCSV(path string, summaries []model.StoreSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.WriteCSV(f, summaries); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
