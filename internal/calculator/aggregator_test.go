package calculator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yoyboard/internal/model"
	"yoyboard/internal/parser"
)

var day0 = time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)

func row(store string, day int, qtyLY, salesLY, qtyCY, salesCY float64) model.CanonicalRow {
	return model.CanonicalRow{
		Store:           store,
		Date:            day0.AddDate(0, 0, day),
		QtyBaseline:     qtyLY,
		SalesBaseline:   salesLY,
		QtyComparison:   qtyCY,
		SalesComparison: salesCY,
		DailyDelta:      salesCY - salesLY,
	}
}

func TestAggregateScenarioForcedSpike(t *testing.T) {
	t.Parallel()

	got := Aggregate([]model.CanonicalRow{
		row("A", 0, 10, 100, 10, 100),
		row("A", 1, 10, 100, 10, 400),
	}, DefaultThresholds())
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, 200.0, s.SalesBaselineTotal)
	assert.Equal(t, 500.0, s.SalesComparisonTotal)
	assert.Equal(t, 300.0, s.YOYDelta)
	assert.Equal(t, 1.5, s.YOYPct)
	assert.Equal(t, 300.0, s.MaxDailyDelta)
	assert.Equal(t, 0.0, s.MinDailyDelta)
	assert.Equal(t, 150.0, s.AvgDailyDelta)
	require.NotNil(t, s.SpikeIndex)
	assert.Equal(t, 2.0, *s.SpikeIndex)
	require.NotNil(t, s.StddevDailyDelta)
	assert.InDelta(t, math.Sqrt(45000), *s.StddevDailyDelta, 1e-9)
	require.NotNil(t, s.VolatilityIndex)
	assert.InDelta(t, math.Sqrt(45000)/150, *s.VolatilityIndex, 1e-12)
	assert.Equal(t, model.VerdictImprovedForced, s.Verdict)
	assert.Equal(t, "IMPROVED – FORCED", s.VerdictLabel)
	assert.Equal(t, 2, s.Days)
}

func TestAggregateScenarioControlledGrowth(t *testing.T) {
	t.Parallel()

	s := Aggregate([]model.CanonicalRow{
		row("B", 0, 25, 500, 27, 550),
		row("B", 1, 25, 500, 28, 550),
	}, DefaultThresholds())[0]

	assert.Equal(t, 0.10, s.YOYPct)
	assert.Equal(t, 0.10, s.QtyYOYPct)
	require.NotNil(t, s.SpikeIndex)
	assert.LessOrEqual(t, *s.SpikeIndex, DefaultSpikeThreshold)
	assert.Equal(t, model.VerdictImprovedControlled, s.Verdict)
}

func TestAggregateScenarioPriceDriven(t *testing.T) {
	t.Parallel()

	s := Aggregate([]model.CanonicalRow{
		row("C", 0, 25, 500, 20, 550),
		row("C", 1, 25, 500, 20, 550),
	}, DefaultThresholds())[0]

	assert.Equal(t, 0.10, s.YOYPct)
	assert.Equal(t, -0.20, s.QtyYOYPct)
	assert.Equal(t, model.VerdictPriceDrivenRisk, s.Verdict)
}

func TestAggregateScenarioDeclined(t *testing.T) {
	t.Parallel()

	s := Aggregate([]model.CanonicalRow{
		row("D", 0, 10, 400, 50, 300),
		row("D", 1, 10, 600, 50, 600),
	}, DefaultThresholds())[0]

	assert.Equal(t, -0.10, s.YOYPct)
	assert.Nil(t, s.SpikeIndex)
	assert.Equal(t, model.VerdictDeclined, s.Verdict)
}

func TestAggregateZeroBaseline(t *testing.T) {
	t.Parallel()

	s := Aggregate([]model.CanonicalRow{
		row("Z", 0, 0, 0, 5, 100),
		row("Z", 1, 0, 0, 5, 100),
	}, DefaultThresholds())[0]

	assert.Equal(t, 0.0, s.YOYPct)
	assert.Equal(t, 0.0, s.QtyYOYPct)
	assert.Equal(t, 200.0, s.YOYDelta)
	assert.False(t, math.IsNaN(s.YOYPct))
	assert.Equal(t, model.VerdictUnclassified, s.Verdict)
}

func TestAggregateUndefinedMetricsStayNil(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		rows           []model.CanonicalRow
		wantStddev     bool
		wantSpike      bool
		wantVolatility bool
	}{
		{
			name:       "single day",
			rows:       []model.CanonicalRow{row("S", 0, 1, 100, 1, 150)},
			wantSpike:  true,
			wantStddev: false,
		},
		{
			name:       "zero average",
			rows:       []model.CanonicalRow{row("S", 0, 1, 100, 1, 200), row("S", 1, 1, 200, 1, 100)},
			wantStddev: true,
		},
		{
			name:           "negative average",
			rows:           []model.CanonicalRow{row("S", 0, 1, 100, 1, 50), row("S", 1, 1, 100, 1, 90)},
			wantStddev:     true,
			wantVolatility: true,
		},
	}
	for _, tc := range cases {
		s := Aggregate(tc.rows, DefaultThresholds())[0]
		assert.Equal(t, tc.wantStddev, s.StddevDailyDelta != nil, "%s: stddev", tc.name)
		assert.Equal(t, tc.wantSpike, s.SpikeIndex != nil, "%s: spike", tc.name)
		assert.Equal(t, tc.wantVolatility, s.VolatilityIndex != nil, "%s: volatility", tc.name)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	t.Parallel()

	got := Aggregate(nil, DefaultThresholds())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestAggregateGroupsByExactStore(t *testing.T) {
	t.Parallel()

	got := Aggregate([]model.CanonicalRow{
		row("b", 0, 1, 1, 1, 1),
		row("A", 0, 1, 1, 1, 1),
		row("a", 0, 1, 1, 1, 1),
		row("A ", 0, 1, 1, 1, 1),
		row("A", 1, 1, 1, 1, 1),
	}, DefaultThresholds())

	stores := make([]string, 0, len(got))
	for _, s := range got {
		stores = append(stores, s.Store)
	}
	assert.Equal(t, []string{"b", "A", "a", "A "}, stores)
	assert.Equal(t, 2, got[1].Days)
}

func randomRows(seed int64, n int) []model.CanonicalRow {
	rng := rand.New(rand.NewSource(seed))
	stores := []string{"North", "South", "East", "West", "Mall"}
	rows := make([]model.CanonicalRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, row(
			stores[rng.Intn(len(stores))],
			rng.Intn(6),
			float64(rng.Intn(50)),
			float64(rng.Intn(10000)),
			float64(rng.Intn(50)),
			float64(rng.Intn(10000)),
		))
	}
	return rows
}

func TestAggregateIsPartition(t *testing.T) {
	t.Parallel()

	rows := randomRows(42, 200)
	var wantLY, wantCY float64
	for _, r := range rows {
		wantLY += r.SalesBaseline
		wantCY += r.SalesComparison
	}

	var gotLY, gotCY float64
	days := 0
	for _, s := range Aggregate(rows, DefaultThresholds()) {
		gotLY += s.SalesBaselineTotal
		gotCY += s.SalesComparisonTotal
		days += s.Days
		if s.SalesComparisonTotal-s.SalesBaselineTotal != s.YOYDelta {
			t.Fatalf("%s: YOYDelta mismatch", s.Store)
		}
	}
	assert.Equal(t, wantLY, gotLY)
	assert.Equal(t, wantCY, gotCY)
	assert.Equal(t, len(rows), days)
}

func TestAggregateIsIdempotent(t *testing.T) {
	t.Parallel()

	rows := randomRows(7, 120)
	first := Aggregate(rows, DefaultThresholds())
	second := Aggregate(rows, DefaultThresholds())
	assert.Equal(t, first, second)
}

func TestAggregateUsesConfiguredThreshold(t *testing.T) {
	t.Parallel()

	rows := []model.CanonicalRow{
		row("A", 0, 10, 100, 10, 100),
		row("A", 1, 10, 100, 10, 400),
	}
	s := Aggregate(rows, Thresholds{SpikeThreshold: 2.5})[0]
	assert.Equal(t, model.VerdictImprovedControlled, s.Verdict)
}

func TestAggregateNormalizedStoresAreNotTrimmed(t *testing.T) {
	t.Parallel()

	table := model.RawTable{
		Columns: []string{"Site", "Date", "Net Sale Qty - 2024", "Net Sale Amount - 2024", "Net Sale Qty - 2025", "Net Sale Amount - 2025"},
		Rows: [][]string{
			{"A", "2024-12-20", "1", "100", "1", "120"},
			{"A", "2024-12-21", "1", "100", "1", "120"},
			{"A ", "2024-12-22", "1", "100", "1", "120"},
		},
	}
	rows, err := parser.Normalize(table, parser.DefaultSchema(2024, 2025), model.SheetKindLFL)
	require.NoError(t, err)

	summaries := Aggregate(rows, DefaultThresholds())
	require.Len(t, summaries, 2)
	assert.Equal(t, "A", summaries[0].Store)
	assert.Equal(t, 2, summaries[0].Days)
	assert.Equal(t, "A ", summaries[1].Store)
	assert.Equal(t, 1, summaries[1].Days)
}
