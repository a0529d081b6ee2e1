package sample

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/xuri/excelize/v2"
	"yoyboard/internal/model"
	"yoyboard/internal/parser"
)

// Options 样例工作簿参数
type Options struct {
	BaselineYear   int
	ComparisonYear int
	Month          time.Month
	FirstDay       int
	LastDay        int

	Stores       int // 同店数量
	ClosedStores int
	NewStores    int
}

// DefaultOptions 圣诞周（12 月 20–25 日）的默认参数
func DefaultOptions() Options {
	return Options{
		BaselineYear:   2024,
		ComparisonYear: 2025,
		Month:          time.December,
		FirstDay:       20,
		LastDay:        25,
		Stores:         8,
		ClosedStores:   2,
		NewStores:      2,
	}
}

var (
	storeNames = []string{
		"Bandra", "Koramangala", "Connaught Place", "Indiranagar",
		"Powai", "Salt Lake", "Banjara Hills", "Anna Nagar",
		"Viman Nagar", "Gachibowli", "Andheri", "Whitefield",
	}
	closedNames = []string{"Old Market", "Lal Bagh", "Charminar", "Fort"}
	newNames    = []string{"Airport T2", "Noida Sector 18", "Hinjewadi", "Kochi Marine Drive"}
	departments = []string{"Apparel", "Home", "Beauty", "Grocery"}
)

// profile 门店走势类型，按顺序轮换以覆盖全部结论
type profile int

const (
	profileDeclined profile = iota
	profileSpike
	profileControlled
	profilePriceDriven
)

// Generator 样例数据生成器（同一 seed 生成相同数据）
type Generator struct {
	rng *rand.Rand
}

// NewGenerator 创建生成器
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Workbook 生成包含同店/总部/闭店/新店四个 Sheet 的工作簿，表头为默认固定列名
func (g *Generator) Workbook(opts Options) (*excelize.File, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", model.SheetKindLFL.Label()); err != nil {
		_ = f.Close()
		return nil, err
	}

	sheets := []struct {
		kind   model.SheetKind
		header []interface{}
		rows   [][]interface{}
	}{
		{model.SheetKindLFL, g.lflHeader(opts), g.lflRows(opts)},
		{model.SheetKindHO, g.hoHeader(opts), g.hoRows()},
		{model.SheetKindClosed, g.singleYearHeader(opts.BaselineYear), g.singleYearRows(opts, closedNames[:opts.ClosedStores], opts.BaselineYear)},
		{model.SheetKindNew, g.singleYearHeader(opts.ComparisonYear), g.singleYearRows(opts, newNames[:opts.NewStores], opts.ComparisonYear)},
	}

	for i, s := range sheets {
		name := s.kind.Label()
		if i > 0 {
			if _, err := f.NewSheet(name); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
		if err := writeRows(f, name, s.header, s.rows); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func (o Options) validate() error {
	if o.FirstDay < 1 || o.LastDay < o.FirstDay+1 || o.LastDay > 31 {
		return fmt.Errorf("invalid day range %d-%d", o.FirstDay, o.LastDay)
	}
	if o.Stores < 1 || o.Stores > len(storeNames) {
		return fmt.Errorf("stores must be between 1 and %d", len(storeNames))
	}
	if o.ClosedStores < 0 || o.ClosedStores > len(closedNames) {
		return fmt.Errorf("closed stores must be between 0 and %d", len(closedNames))
	}
	if o.NewStores < 0 || o.NewStores > len(newNames) {
		return fmt.Errorf("new stores must be between 0 and %d", len(newNames))
	}
	return nil
}

func (o Options) dates(year int) []time.Time {
	var dates []time.Time
	for d := o.FirstDay; d <= o.LastDay; d++ {
		dates = append(dates, time.Date(year, o.Month, d, 0, 0, 0, 0, time.UTC))
	}
	return dates
}

func (g *Generator) lflHeader(opts Options) []interface{} {
	return []interface{}{
		parser.DefaultStoreColumn,
		parser.DefaultDateColumn,
		fmt.Sprintf(parser.DefaultQtyColumnFormat, opts.BaselineYear),
		fmt.Sprintf(parser.DefaultAmountColumnFormat, opts.BaselineYear),
		fmt.Sprintf(parser.DefaultQtyColumnFormat, opts.ComparisonYear),
		fmt.Sprintf(parser.DefaultAmountColumnFormat, opts.ComparisonYear),
	}
}

func (g *Generator) lflRows(opts Options) [][]interface{} {
	dates := opts.dates(opts.BaselineYear)
	var rows [][]interface{}
	for i, store := range storeNames[:opts.Stores] {
		p := profile(i % 4)
		base := g.randomInRange(20000, 80000)
		price := g.randomInRange(250, 600)
		growth := g.growthFor(p)
		spikeDay := g.rng.Intn(len(dates))

		for d, date := range dates {
			// 季节性波动：使用正弦函数模拟
			seasonal := 1.0 + 0.1*math.Sin(float64(d)*math.Pi/3.0)
			amountLY := base * seasonal * (1.0 + (g.rng.Float64()-0.5)*0.1)
			qtyLY := math.Round(amountLY / price)

			amountFactor, qtyFactor := growth, growth
			switch p {
			case profileSpike:
				amountFactor = g.randomInRange(1.0, 1.03)
				if d == spikeDay {
					amountFactor = 1.8
				}
				qtyFactor = amountFactor
			case profilePriceDriven:
				qtyFactor = g.randomInRange(0.85, 0.92)
			default:
				amountFactor += (g.rng.Float64() - 0.5) * 0.02
				qtyFactor = amountFactor
			}

			rows = append(rows, []interface{}{
				store,
				date,
				qtyLY,
				roundTo(amountLY, 2),
				math.Round(qtyLY * qtyFactor),
				roundTo(amountLY*amountFactor, 2),
			})
		}
	}
	return rows
}

// growthFor 门店整体增长系数
func (g *Generator) growthFor(p profile) float64 {
	switch p {
	case profileDeclined:
		return g.randomInRange(0.8, 0.9)
	case profileControlled:
		return g.randomInRange(1.1, 1.15)
	case profilePriceDriven:
		return g.randomInRange(1.05, 1.12)
	default:
		return 1
	}
}

func (g *Generator) hoHeader(opts Options) []interface{} {
	return []interface{}{
		"Department",
		fmt.Sprintf(parser.DefaultAmountColumnFormat, opts.BaselineYear),
		fmt.Sprintf(parser.DefaultAmountColumnFormat, opts.ComparisonYear),
	}
}

func (g *Generator) hoRows() [][]interface{} {
	rows := make([][]interface{}, 0, len(departments))
	for _, dept := range departments {
		ly := g.randomInRange(100000, 400000)
		cy := ly * g.randomInRange(0.9, 1.2)
		rows = append(rows, []interface{}{dept, roundTo(ly, 2), roundTo(cy, 2)})
	}
	return rows
}

func (g *Generator) singleYearHeader(year int) []interface{} {
	return []interface{}{
		parser.DefaultStoreColumn,
		parser.DefaultDateColumn,
		fmt.Sprintf(parser.DefaultQtyColumnFormat, year),
		fmt.Sprintf(parser.DefaultAmountColumnFormat, year),
	}
}

func (g *Generator) singleYearRows(opts Options, sites []string, year int) [][]interface{} {
	var rows [][]interface{}
	for _, site := range sites {
		base := g.randomInRange(15000, 50000)
		price := g.randomInRange(250, 600)
		for _, date := range opts.dates(year) {
			amount := base * (1.0 + (g.rng.Float64()-0.5)*0.3)
			rows = append(rows, []interface{}{site, date, math.Round(amount / price), roundTo(amount, 2)})
		}
	}
	return rows
}

// randomInRange 在范围内生成随机数
func (g *Generator) randomInRange(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow10(digits)
	return math.Round(v*scale) / scale
}

func writeRows(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}
