package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yoyboard/internal/model"
)

var lflHeaders = []string{
	"Site",
	"Date",
	"Net Sale Qty - 2024",
	"Net Sale Amount - 2024",
	"Net Sale Qty - 2025",
	"Net Sale Amount - 2025",
}

func TestResolveFixedDefaults(t *testing.T) {
	t.Parallel()

	mapping, err := DefaultSchema(2024, 2025).Resolve(lflHeaders, RequiredRoles(model.SheetKindLFL))
	require.NoError(t, err)
	for i, role := range AllRoles {
		assert.Equal(t, i, mapping[role], "role %s", role)
	}
}

func TestResolveFixedTrimsHeaders(t *testing.T) {
	t.Parallel()

	headers := append([]string(nil), lflHeaders...)
	headers[0] = "  Site "
	_, err := DefaultSchema(2024, 2025).Resolve(headers, RequiredRoles(model.SheetKindLFL))
	require.NoError(t, err)
}

func TestResolveFixedMissingColumns(t *testing.T) {
	t.Parallel()

	headers := []string{"Site", "Date", "Net Sale Qty - 2024", "Net Sale Amount - 2024"}
	mapping, err := DefaultSchema(2024, 2025).Resolve(headers, RequiredRoles(model.SheetKindLFL))
	require.Error(t, err)
	assert.Nil(t, mapping)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"Net Sale Qty - 2025", "Net Sale Amount - 2025"}, schemaErr.Missing)
	assert.Empty(t, schemaErr.Ambiguous)
}

func TestResolveFixedDuplicateHeaderIsAmbiguous(t *testing.T) {
	t.Parallel()

	headers := append(append([]string(nil), lflHeaders...), "Site")
	_, err := DefaultSchema(2024, 2025).Resolve(headers, RequiredRoles(model.SheetKindLFL))

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"Site", "Site"}, schemaErr.Ambiguous[string(RoleStore)])
}

func TestResolvePattern(t *testing.T) {
	t.Parallel()

	schema := DefaultSchema(2024, 2025)
	schema.Mode = ModePattern
	headers := []string{"Site", "Date", "QTY 2024", "Sales Amount (2024)", "Quantity 2025", "Sale Value 2025"}

	mapping, err := schema.Resolve(headers, RequiredRoles(model.SheetKindLFL))
	require.NoError(t, err)
	assert.Equal(t, 2, mapping[RoleQtyBaseline])
	assert.Equal(t, 3, mapping[RoleSalesBaseline])
	assert.Equal(t, 4, mapping[RoleQtyComparison])
	assert.Equal(t, 5, mapping[RoleSalesComparison])
}

func TestResolvePatternQtyColumnNeverMatchesAmount(t *testing.T) {
	t.Parallel()

	schema := DefaultSchema(2024, 2025)
	schema.Mode = ModePattern

	// "Net Sale Qty" 不能被当作金额列
	mapping, err := schema.Resolve(lflHeaders, RequiredRoles(model.SheetKindLFL))
	require.NoError(t, err)
	assert.Equal(t, 3, mapping[RoleSalesBaseline])
	assert.Equal(t, 5, mapping[RoleSalesComparison])
}

func TestResolvePatternAmbiguous(t *testing.T) {
	t.Parallel()

	schema := DefaultSchema(2024, 2025)
	schema.Mode = ModePattern
	headers := append(append([]string(nil), lflHeaders...), "Gross Amount 2024")

	_, err := schema.Resolve(headers, RequiredRoles(model.SheetKindLFL))

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"Net Sale Amount - 2024", "Gross Amount 2024"}, schemaErr.Ambiguous[string(RoleSalesBaseline)])
	assert.Contains(t, schemaErr.Error(), "ambiguous column for Sales_Baseline")
}

func TestResolvePatternYearTokenIsExact(t *testing.T) {
	t.Parallel()

	schema := DefaultSchema(2024, 2025)
	schema.Mode = ModePattern
	headers := []string{"Site", "Date", "Qty 20245", "Amount 2024", "Qty 2025", "Amount 2025"}

	_, err := schema.Resolve(headers, RequiredRoles(model.SheetKindLFL))

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"Qty_Baseline (qty + 2024)"}, schemaErr.Missing)
}

func TestRequiredRolesByKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind    model.SheetKind
		headers []string
	}{
		{model.SheetKindHO, []string{"Net Sale Amount - 2024", "Net Sale Amount - 2025"}},
		{model.SheetKindClosed, []string{"Site", "Net Sale Amount - 2024"}},
		{model.SheetKindNew, []string{"Site", "Net Sale Amount - 2025"}},
	}
	for _, tc := range cases {
		mapping, err := DefaultSchema(2024, 2025).Resolve(tc.headers, RequiredRoles(tc.kind))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.kind, err)
		}
		if len(mapping) != len(tc.headers) {
			t.Fatalf("%s: mapping=%v", tc.kind, mapping)
		}
	}
}

func TestSchemaErrorMessageIncludesSheet(t *testing.T) {
	t.Parallel()

	err := &SchemaError{Sheet: "LFL", Missing: []string{"Site"}}
	assert.Equal(t, `sheet "LFL": missing required columns: Site`, err.Error())
}

func TestSchemaFingerprint(t *testing.T) {
	base := DefaultSchema(2024, 2025)
	assert.Equal(t, base.Fingerprint(), DefaultSchema(2024, 2025).Fingerprint())

	pattern := base
	pattern.Mode = ModePattern
	assert.NotEqual(t, base.Fingerprint(), pattern.Fingerprint())

	years := DefaultSchema(2023, 2024)
	assert.NotEqual(t, base.Fingerprint(), years.Fingerprint())
}
