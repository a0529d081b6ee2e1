package calculator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yoyboard/internal/model"
)

type memorySource map[model.SheetKind][]model.CanonicalRow

func (m memorySource) GetSalesRows(_ string, kind model.SheetKind) ([]model.CanonicalRow, error) {
	return m[kind], nil
}

type failingSource struct{}

func (failingSource) GetSalesRows(string, model.SheetKind) ([]model.CanonicalRow, error) {
	return nil, errors.New("boom")
}

func TestCalculatorLoadsRowsByKind(t *testing.T) {
	t.Parallel()

	c := NewCalculator(memorySource{
		model.SheetKindLFL:    viewRows(),
		model.SheetKindHO:     {{SalesBaseline: 10, SalesComparison: 15}},
		model.SheetKindClosed: {{Store: "X", SalesBaseline: 40}},
	}, DefaultThresholds())

	summaries, err := c.Summaries("ds")
	require.NoError(t, err)
	assert.Len(t, summaries, 3)

	ho, err := c.HeadOffice("ds")
	require.NoError(t, err)
	assert.Equal(t, 5.0, ho.NetYOY)

	closed, err := c.ClosedStores("ds")
	require.NoError(t, err)
	assert.Equal(t, 40.0, closed.RevenueLost)

	fresh, err := c.NewStores("ds")
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.StoreCount)
}

func TestCalculatorThresholdUpdate(t *testing.T) {
	t.Parallel()

	c := NewCalculator(memorySource{model.SheetKindLFL: viewRows()}, DefaultThresholds())
	impact, err := c.Impact("ds")
	require.NoError(t, err)
	assert.True(t, impact[2].SpikeDriven)

	c.SetThresholds(Thresholds{SpikeThreshold: 5})
	impact, err = c.Impact("ds")
	require.NoError(t, err)
	assert.False(t, impact[2].SpikeDriven)
	assert.Equal(t, 5.0, c.Thresholds().SpikeThreshold)
}

func TestCalculatorWrapsSourceErrors(t *testing.T) {
	t.Parallel()

	_, err := NewCalculator(failingSource{}, DefaultThresholds()).Overview("ds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load lfl rows")
}
