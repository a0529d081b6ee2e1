package parser

import (
	"reflect"
	"testing"
)

func TestNormalizeColumnName(t *testing.T) {
	got := NormalizeColumnName("  Net Sale\nAmount -\t2024 ")
	if got != "Net Sale Amount - 2024" {
		t.Fatalf("NormalizeColumnName=%q", got)
	}
}

func TestExtractYears(t *testing.T) {
	cols := []string{"Site", "Net Sale Qty - 2025", "Net Sale Amount - 2024", "Amount 2025", "Code 12024", "Store 1999"}
	got := ExtractYears(cols)
	want := []int{1999, 2024, 2025}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractYears=%v, want %v", got, want)
	}
	if years := ExtractYears([]string{"Site", "Date"}); len(years) != 0 {
		t.Fatalf("expected no years, got %v", years)
	}
}

func TestContainsYear(t *testing.T) {
	cases := []struct {
		text string
		year int
		want bool
	}{
		{"Net Sale Amount - 2024", 2024, true},
		{"Net Sale Amount-2024", 2024, true},
		{"Amount 12024", 2024, false},
		{"Amount 2025", 2024, false},
	}
	for _, c := range cases {
		if got := ContainsYear(c.text, c.year); got != c.want {
			t.Fatalf("ContainsYear(%q, %d)=%v, want %v", c.text, c.year, got, c.want)
		}
	}
}
