package parser

import (
	"testing"

	"yoyboard/internal/model"
)

func TestRecognizeByName(t *testing.T) {
	t.Parallel()

	r := NewSheetRecognizer(DefaultSchema(2024, 2025))
	cases := map[string]model.SheetKind{
		"YOY – Like-to-Like Stores (LFL)": model.SheetKindLFL,
		"LFL Dec":                         model.SheetKindLFL,
		"YOY OF HO":                       model.SheetKindHO,
		"Head Office":                     model.SheetKindHO,
		"Closed Stores":                   model.SheetKindClosed,
		"New Stores":                      model.SheetKindNew,
		"Shopping":                        model.SheetKindUnknown,
	}
	for name, want := range cases {
		got := r.Recognize(name, nil)
		if got.Kind != want {
			t.Fatalf("Recognize(%q)=%s want %s", name, got.Kind, want)
		}
		if want != model.SheetKindUnknown && !got.ByName {
			t.Fatalf("Recognize(%q) should match by name", name)
		}
	}
}

func TestRecognizeFallsBackToHeaders(t *testing.T) {
	t.Parallel()

	r := NewSheetRecognizer(DefaultSchema(2024, 2025))
	got := r.Recognize("Sheet1", lflHeaders)
	if got.Kind != model.SheetKindLFL || got.ByName {
		t.Fatalf("unexpected result: %+v", got)
	}

	got = r.Recognize("Sheet1", []string{"Site", "Date"})
	if got.Kind != model.SheetKindUnknown {
		t.Fatalf("unexpected result: %+v", got)
	}
}
