package sheet

import (
	"testing"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
	}
	for _, tt := range tests {
		if got := ColumnLetter(tt.col); got != tt.want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestCellRangeA1(t *testing.T) {
	tests := []struct {
		name string
		r    CellRange
		want string
	}{
		{
			"single cell",
			CellRange{Sheet: "Sheet1", StartRow: 1, StartCol: 1},
			"Sheet1!A1",
		},
		{
			"block",
			CellRange{Sheet: "Sheet1", StartRow: 2, StartCol: 3, RowCount: 10, ColCount: 4},
			"Sheet1!C2:F11",
		},
		{
			"wide block",
			CellRange{Sheet: "Contacts", StartRow: 1, StartCol: 25, RowCount: 1, ColCount: 4},
			"Contacts!Y1:AB1",
		},
		{
			"sheet name with space is quoted",
			CellRange{Sheet: "My Contacts", StartRow: 1, StartCol: 1, RowCount: 2, ColCount: 2},
			"'My Contacts'!A1:B2",
		},
		{
			"no sheet name",
			CellRange{StartRow: 5, StartCol: 2},
			"B5",
		},
		{
			"whole sheet is the bare name",
			WholeSheet("Sheet1"),
			"Sheet1",
		},
		{
			"whole sheet with space is quoted",
			WholeSheet("My Contacts"),
			"'My Contacts'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.A1(); got != tt.want {
				t.Errorf("A1() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSpreadsheetID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			"full URL",
			"https://docs.google.com/spreadsheets/d/1AbC-dEf_123/edit#gid=0",
			"1AbC-dEf_123",
			false,
		},
		{
			"bare id",
			"1AbC-dEf_123",
			"1AbC-dEf_123",
			false,
		},
		{
			"empty",
			"",
			"",
			true,
		},
		{
			"junk URL",
			"https://example.com/nothing/here",
			"",
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpreadsheetID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSpreadsheetID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSpreadsheetID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
