package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yoyboard/internal/model"
)

func TestCollectSheets(t *testing.T) {
	t.Parallel()

	wb := &Workbook{Sheets: []Sheet{
		{Name: "YOY – LFL", Table: lflTable([]string{"A", "2024-12-20", "1", "100", "2", "150"})},
		{Name: "LFL copy", Table: lflTable([]string{"B", "2024-12-20", "1", "10", "1", "10"})},
		{Name: "Closed Stores", Table: model.RawTable{Columns: []string{"Site"}, Rows: [][]string{{"Old Town"}}}},
		{Name: "New Stores", Table: model.RawTable{Columns: []string{"Site", "Net Sale Amount - 2025"}}},
		{Name: "Notes", Table: model.RawTable{Columns: []string{"free text"}}},
	}}

	var started []string
	var outcomes []SheetOutcome
	rows, err := CollectSheets(wb, DefaultSchema(2024, 2025), CollectHooks{
		OnStart: func(s Sheet) { started = append(started, s.Name) },
		OnDone:  func(o SheetOutcome) { outcomes = append(outcomes, o) },
	})
	require.NoError(t, err)

	assert.Len(t, started, 5)
	require.Len(t, outcomes, 5)
	assert.Equal(t, SheetImported, outcomes[0].Status)
	assert.True(t, outcomes[0].Mapping.Has(RoleSalesComparison))
	assert.Equal(t, SheetSkipped, outcomes[1].Status)
	assert.Equal(t, SheetError, outcomes[2].Status)
	assert.False(t, outcomes[2].Fatal())
	assert.Equal(t, SheetSkipped, outcomes[3].Status)
	assert.Equal(t, SheetSkipped, outcomes[4].Status)

	require.Len(t, rows[model.SheetKindLFL], 1)
	assert.Equal(t, "A", rows[model.SheetKindLFL][0].Store)
	_, hasClosed := rows[model.SheetKindClosed]
	assert.False(t, hasClosed)
}

func TestCollectSheetsLFLErrorAborts(t *testing.T) {
	t.Parallel()

	wb := &Workbook{Sheets: []Sheet{
		{Name: "LFL", Table: model.RawTable{
			Columns: []string{"Site", "Date", "Net Sale Amount - 2024", "Net Sale Amount - 2025"},
			Rows:    [][]string{{"A", "2024-12-20", "1", "2"}},
		}},
		{Name: "New Stores", Table: model.RawTable{Columns: []string{"Site", "Net Sale Amount - 2025"}, Rows: [][]string{{"X", "5"}}}},
	}}

	var outcomes []SheetOutcome
	_, err := CollectSheets(wb, DefaultSchema(2024, 2025), CollectHooks{
		OnDone: func(o SheetOutcome) { outcomes = append(outcomes, o) },
	})

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "LFL", schemaErr.Sheet)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Fatal())
}

func TestCollectSheetsWithoutLFL(t *testing.T) {
	t.Parallel()

	wb := &Workbook{Sheets: []Sheet{
		{Name: "Closed Stores", Table: model.RawTable{Columns: []string{"Site", "Net Sale Amount - 2024"}, Rows: [][]string{{"Old Town", "5000"}}}},
	}}
	_, err := CollectSheets(wb, DefaultSchema(2024, 2025), CollectHooks{})
	assert.True(t, errors.Is(err, ErrNoLFLSheet))
}
