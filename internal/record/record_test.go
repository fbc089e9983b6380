package record

import (
	"path/filepath"
	"testing"
)

func TestStripUnitType(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"ThingDef/Gun_Revolver.label", "Gun_Revolver.label"},
		{"Gun_Revolver.label", "Gun_Revolver.label"},
		{"HediffDef/Burn.stages.0.label", "Burn.stages.0.label"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripUnitType(tt.key); got != tt.want {
			t.Errorf("StripUnitType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestTagFromKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"Gun_Revolver.label", "label"},
		{"Burn.stages.0.label", "label"},
		{"Burn.comps.0", "comps"},
		{"Burn.comps.0.1", "comps"},
		{"label", "label"},
		{"0.1", "0.1"},
	}
	for _, tt := range tests {
		if got := TagFromKey(tt.key); got != tt.want {
			t.Errorf("TagFromKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := (Record{Key: "a.label", Text: "x"}).Validate(); err != nil {
		t.Errorf("valid record rejected: %v", err)
	}
	if err := (Record{Key: "  ", Text: "x"}).Validate(); err == nil {
		t.Error("record with blank key accepted")
	}
}

func TestTableRoundTrip(t *testing.T) {
	records := []Record{
		{Key: "ThingDef/Gun.label", Text: "revolver", Tag: "label", SourcePath: "Weapons/Guns.xml", UnitType: "ThingDef"},
		{Key: "Greeting", Text: "hello, world", Tag: "Greeting", SourcePath: "UI.xml"},
	}
	table := NewTable(records, true)

	path := filepath.Join(t.TempDir(), "table.csv")
	if err := table.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(got.Rows) != len(records) {
		t.Fatalf("got %d rows, want %d", len(got.Rows), len(records))
	}
	for i, row := range got.Rows {
		if row.Key != records[i].Key || row.Text != records[i].Text || row.Type != records[i].UnitType {
			t.Errorf("row %d = %+v, want %+v", i, row, records[i])
		}
	}

	if n := CountDataRows(path); n != 2 {
		t.Errorf("CountDataRows = %d, want 2", n)
	}
	if n := CountDataRows(filepath.Join(t.TempDir(), "absent.csv")); n != 0 {
		t.Errorf("CountDataRows(absent) = %d, want 0", n)
	}
}

func TestReadTableOptionalColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	table := &Table{
		Columns: []string{ColKey, ColText, ColProtectedText, ColTranslated},
		Rows: []Row{
			{Key: "a.label", Text: "raw", ProtectedText: "safe", Translated: "done"},
			{Key: "b.label", Text: "raw only"},
		},
	}
	if err := table.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	if v := got.Rows[0].MTInput(); v != "safe" {
		t.Errorf("MTInput = %q, want protected text", v)
	}
	if v := got.Rows[1].MTInput(); v != "raw only" {
		t.Errorf("MTInput fallback = %q, want text", v)
	}
	if v := got.Rows[0].Value(); v != "done" {
		t.Errorf("Value = %q, want translated text", v)
	}
	if v := got.Rows[1].Value(); v != "raw only" {
		t.Errorf("Value fallback = %q, want text", v)
	}
}

func TestRecordsTranslatedPrecedence(t *testing.T) {
	table := &Table{
		Columns: []string{ColKey, ColText, ColTranslated},
		Rows: []Row{
			{Key: "a.label", Text: "source", Translated: "译文"},
		},
	}
	records := table.Records()
	if records[0].Text != "译文" {
		t.Errorf("Text = %q, want translated column", records[0].Text)
	}
	if records[0].SourceText != "source" {
		t.Errorf("SourceText = %q, want original text", records[0].SourceText)
	}
}
