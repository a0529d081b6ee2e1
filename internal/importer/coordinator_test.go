package importer

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"yoyboard/internal/model"
	"yoyboard/internal/parser"
	"yoyboard/internal/store"
)

var lflHeader = []interface{}{"Site", "Date", "Net Sale Qty - 2024", "Net Sale Amount - 2024", "Net Sale Qty - 2025", "Net Sale Amount - 2025"}

type sheetSpec struct {
	name string
	rows [][]interface{}
}

func writeWorkbook(t *testing.T, sheets ...sheetSpec) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range s.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "december.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func fullWorkbook(t *testing.T) string {
	return writeWorkbook(t,
		sheetSpec{"YOY – Like-to-Like Stores (LFL)", [][]interface{}{
			lflHeader,
			{"A", "2024-12-20", 10, 100, 10, 100},
			{"A", "2024-12-21", 10, 100, 10, 400},
			{"B", "2024-12-20", 5, 500, 6, 550},
		}},
		sheetSpec{"YOY OF HO", [][]interface{}{
			{"Net Sale Amount - 2024", "Net Sale Amount - 2025"},
			{1000, 1200},
		}},
		sheetSpec{"Closed Stores", [][]interface{}{
			{"Site", "Net Sale Amount - 2024"},
			{"Old Town", 5000},
		}},
		sheetSpec{"New Stores", [][]interface{}{
			{"Site", "Net Sale Amount - 2025"},
			{"Airport", 700},
		}},
		sheetSpec{"Notes", [][]interface{}{{"free text"}}},
	)
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "yoyboard.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestImportWorkbook(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	coordinator := NewCoordinator(st, parser.DefaultSchema(2024, 2025))

	var types []string
	var report *parser.ImportReport
	for evt := range coordinator.Import(ImportOptions{FilePath: fullWorkbook(t), Period: "Christmas", SelectAsCurrent: true}) {
		types = append(types, evt.Type)
		switch evt.Type {
		case EventError:
			t.Fatalf("import error event: %s", evt.Message)
		case EventDone:
			report = evt.Data.(*parser.ImportReport)
		}
	}

	if types[0] != EventStart || types[len(types)-1] != EventDone {
		t.Fatalf("unexpected event order: %v", types)
	}
	if report.TotalSheets != 5 || report.ImportedSheets != 4 || report.SkippedSheets != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.ImportedRows != 6 {
		t.Fatalf("imported rows=%d", report.ImportedRows)
	}

	ds, err := st.GetDataset(report.DatasetID)
	if err != nil {
		t.Fatalf("get dataset: %v", err)
	}
	if ds.LFLRows != 3 || ds.HORows != 1 || ds.ClosedRows != 1 || ds.NewRows != 1 || ds.Period != "Christmas" {
		t.Fatalf("unexpected dataset: %+v", ds)
	}

	current, err := st.GetCurrentDataset()
	if err != nil || current != ds.ID {
		t.Fatalf("current dataset=%q err=%v", current, err)
	}

	metas, err := st.ListSheetMeta(ds.ID)
	if err != nil {
		t.Fatalf("list sheet meta: %v", err)
	}
	if len(metas) != 5 || metas[4].Status != SheetSkipped {
		t.Fatalf("unexpected metas: %+v", metas)
	}
	if metas[0].MappingJSON == "{}" {
		t.Fatalf("lfl mapping not recorded")
	}

	rows, err := st.GetSalesRows(ds.ID, model.SheetKindLFL)
	if err != nil || len(rows) != 3 || rows[1].DailyDelta != 300 {
		t.Fatalf("unexpected rows: %+v err=%v", rows, err)
	}
}

func TestImportSameContentIsReused(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	coordinator := NewCoordinator(st, parser.DefaultSchema(2024, 2025))
	path := fullWorkbook(t)

	first, err := Wait(coordinator.Import(ImportOptions{FilePath: path}))
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := Wait(coordinator.Import(ImportOptions{FilePath: path}))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !second.Reused || second.DatasetID != first.DatasetID {
		t.Fatalf("expected reuse of %s, got %+v", first.DatasetID, second)
	}

	forced, err := Wait(coordinator.Import(ImportOptions{FilePath: path, Force: true}))
	if err != nil {
		t.Fatalf("forced import: %v", err)
	}
	if forced.Reused || forced.DatasetID == first.DatasetID {
		t.Fatalf("expected a new dataset, got %+v", forced)
	}

	datasets, err := st.ListDatasets()
	if err != nil || len(datasets) != 1 {
		t.Fatalf("datasets=%d err=%v", len(datasets), err)
	}

	logs, err := st.ListImportLogs(10)
	if err != nil || len(logs) != 3 || logs[1].Status != store.ImportStatusReused {
		t.Fatalf("unexpected import logs: %+v err=%v", logs, err)
	}
}

func TestForcedReimportKeepsCurrentSelection(t *testing.T) {
	t.Parallel()

	for _, selectAsCurrent := range []bool{false, true} {
		st := newStore(t)
		coordinator := NewCoordinator(st, parser.DefaultSchema(2024, 2025))
		path := fullWorkbook(t)

		first, err := Wait(coordinator.Import(ImportOptions{FilePath: path, SelectAsCurrent: true}))
		if err != nil {
			t.Fatalf("first import: %v", err)
		}
		forced, err := Wait(coordinator.Import(ImportOptions{FilePath: path, Force: true, SelectAsCurrent: selectAsCurrent}))
		if err != nil {
			t.Fatalf("forced import (select=%v): %v", selectAsCurrent, err)
		}
		if forced.DatasetID == first.DatasetID {
			t.Fatalf("select=%v: expected a new dataset id", selectAsCurrent)
		}

		current, err := st.GetCurrentDataset()
		if err != nil || current != forced.DatasetID {
			t.Fatalf("select=%v: current=%q err=%v, want %s", selectAsCurrent, current, err, forced.DatasetID)
		}
		if _, err := st.GetDataset(first.DatasetID); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("select=%v: old dataset still present (err=%v)", selectAsCurrent, err)
		}
		rows, err := st.GetSalesRows(forced.DatasetID, model.SheetKindLFL)
		if err != nil || len(rows) != 3 {
			t.Fatalf("select=%v: rows=%d err=%v", selectAsCurrent, len(rows), err)
		}
	}
}

func TestForcedReimportLeavesOtherSelection(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	coordinator := NewCoordinator(st, parser.DefaultSchema(2024, 2025))
	path := fullWorkbook(t)
	other := writeWorkbook(t, sheetSpec{"LFL", [][]interface{}{
		lflHeader,
		{"C", "2024-12-22", 1, 10, 1, 20},
	}})

	if _, err := Wait(coordinator.Import(ImportOptions{FilePath: path})); err != nil {
		t.Fatalf("import: %v", err)
	}
	selected, err := Wait(coordinator.Import(ImportOptions{FilePath: other, SelectAsCurrent: true}))
	if err != nil {
		t.Fatalf("import other: %v", err)
	}
	if _, err := Wait(coordinator.Import(ImportOptions{FilePath: path, Force: true})); err != nil {
		t.Fatalf("forced import: %v", err)
	}

	current, err := st.GetCurrentDataset()
	if err != nil || current != selected.DatasetID {
		t.Fatalf("current=%q err=%v, want %s", current, err, selected.DatasetID)
	}
}

func TestImportWithDifferentSchemaIsNotReused(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	coordinator := NewCoordinator(st, parser.DefaultSchema(2024, 2025))
	path := fullWorkbook(t)

	fixed, err := Wait(coordinator.Import(ImportOptions{FilePath: path}))
	if err != nil {
		t.Fatalf("fixed import: %v", err)
	}

	pattern := parser.DefaultSchema(2024, 2025)
	pattern.Mode = parser.ModePattern
	byPattern, err := Wait(coordinator.Import(ImportOptions{FilePath: path, Schema: &pattern}))
	if err != nil {
		t.Fatalf("pattern import: %v", err)
	}
	if byPattern.Reused || byPattern.DatasetID == fixed.DatasetID {
		t.Fatalf("expected a separate dataset for another schema, got %+v", byPattern)
	}

	again, err := Wait(coordinator.Import(ImportOptions{FilePath: path, Schema: &pattern}))
	if err != nil {
		t.Fatalf("pattern reimport: %v", err)
	}
	if !again.Reused || again.DatasetID != byPattern.DatasetID {
		t.Fatalf("expected reuse of %s, got %+v", byPattern.DatasetID, again)
	}
}

func TestImportSchemaErrorPersistsNothing(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	coordinator := NewCoordinator(st, parser.DefaultSchema(2024, 2025))
	path := writeWorkbook(t, sheetSpec{"LFL", [][]interface{}{
		{"Site", "Date", "Net Sale Amount - 2024", "Net Sale Amount - 2025"},
		{"A", "2024-12-20", 100, 200},
	}})

	var errEvent *ProgressEvent
	for evt := range coordinator.Import(ImportOptions{FilePath: path}) {
		if evt.Type == EventDone {
			t.Fatalf("unexpected done event")
		}
		if evt.Type == EventError {
			e := evt
			errEvent = &e
		}
	}
	if errEvent == nil {
		t.Fatalf("missing error event")
	}

	var schemaErr *parser.SchemaError
	if !errors.As(errEvent.Err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", errEvent.Err)
	}
	if schemaErr.Sheet != "LFL" || len(schemaErr.Missing) != 2 {
		t.Fatalf("unexpected schema error: %+v", schemaErr)
	}
	if errEvent.Data != schemaErr {
		t.Fatalf("schema error should be attached as event data")
	}

	datasets, err := st.ListDatasets()
	if err != nil || len(datasets) != 0 {
		t.Fatalf("expected no datasets, got %d (err=%v)", len(datasets), err)
	}
	logs, _ := st.ListImportLogs(1)
	if len(logs) != 1 || logs[0].Status != store.ImportStatusFailed {
		t.Fatalf("unexpected import log: %+v", logs)
	}
}

func TestImportWithoutLFLSheet(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	path := writeWorkbook(t, sheetSpec{"Closed Stores", [][]interface{}{
		{"Site", "Net Sale Amount - 2024"},
		{"Old Town", 5000},
	}})

	_, err := Wait(NewCoordinator(st, parser.DefaultSchema(2024, 2025)).Import(ImportOptions{FilePath: path}))
	if !errors.Is(err, ErrNoLFLSheet) {
		t.Fatalf("expected ErrNoLFLSheet, got %v", err)
	}
}

func TestImportMissingFile(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	_, err := Wait(NewCoordinator(st, parser.DefaultSchema(2024, 2025)).Import(ImportOptions{FilePath: filepath.Join(t.TempDir(), "missing.xlsx")}))
	if err == nil {
		t.Fatalf("expected error")
	}
}
