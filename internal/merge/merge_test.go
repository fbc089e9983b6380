package merge

import (
	"testing"
	"time"

	"mod-translator/internal/record"
)

func fixedClock(t *testing.T) {
	t.Helper()
	old := clock
	clock = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { clock = old })
}

func TestMergeNewKey(t *testing.T) {
	fixedClock(t)

	input := []record.Record{
		{Key: "ThingDef/Gun.label", Text: "revolver", Tag: "label", SourcePath: "Guns.xml", UnitType: "ThingDef"},
	}

	merged, stats, err := Merge(input, nil, true)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if stats.New != 1 || stats.Unchanged != 0 || stats.Updated != 0 {
		t.Fatalf("stats = %+v, want 1 new", stats)
	}
	got := merged[0]
	if got.Key != "Gun.label" {
		t.Errorf("key = %q, want unit-type prefix stripped", got.Key)
	}
	if got.Text != "revolver" || got.SourceText != "revolver" {
		t.Errorf("text/source = %q/%q", got.Text, got.SourceText)
	}
	want := `new text "revolver" added on 2026-03-14`
	if got.History != want {
		t.Errorf("history = %q, want %q", got.History, want)
	}
}

func TestMergeUnchangedKeepsTranslation(t *testing.T) {
	fixedClock(t)

	input := []record.Record{
		{Key: "Gun.label", Text: "revolver", Tag: "label", SourcePath: "Guns.xml"},
	}
	output := []record.Record{
		{Key: "Gun.label", Text: "左轮手枪", Tag: "label", SourcePath: "old/Guns.xml", SourceText: "revolver"},
	}

	merged, stats, err := Merge(input, output, true)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if stats.Unchanged != 1 {
		t.Fatalf("stats = %+v, want 1 unchanged", stats)
	}
	got := merged[0]
	if got.Text != "左轮手枪" {
		t.Errorf("text = %q, existing translation must be kept", got.Text)
	}
	if got.SourcePath != "old/Guns.xml" {
		t.Errorf("source path = %q, want output's path kept", got.SourcePath)
	}
	if got.History != "" {
		t.Errorf("history = %q, want empty for unchanged", got.History)
	}

	// Without includeUnchanged the key is dropped entirely.
	merged, stats, err = Merge(input, output, false)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged) != 0 || stats.Unchanged != 1 {
		t.Errorf("merged = %d records, stats = %+v", len(merged), stats)
	}
}

func TestMergeUpdatedSource(t *testing.T) {
	fixedClock(t)

	input := []record.Record{
		{Key: "Gun.label", Text: "heavy revolver", Tag: "label", SourcePath: "Guns.xml"},
	}
	output := []record.Record{
		{Key: "Gun.label", Text: "左轮手枪", Tag: "label", SourcePath: "old/Guns.xml", SourceText: "revolver"},
	}

	merged, stats, err := Merge(input, output, true)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if stats.Updated != 1 {
		t.Fatalf("stats = %+v, want 1 updated", stats)
	}
	got := merged[0]
	if got.Text != "heavy revolver" {
		t.Errorf("text = %q, want new source text", got.Text)
	}
	if got.SourceText != "revolver" {
		t.Errorf("source text = %q, want previous source kept for history", got.SourceText)
	}
	want := `previous translation "左轮手枪" for source "revolver" replaced by new source "heavy revolver" on 2026-03-14`
	if got.History != want {
		t.Errorf("history = %q\nwant %q", got.History, want)
	}
}

// A merge of a record set against itself must classify everything
// unchanged and yield the same set back.
func TestMergeSelfIdempotent(t *testing.T) {
	fixedClock(t)

	records := []record.Record{
		{Key: "Gun.label", Text: "revolver", Tag: "label", SourcePath: "Guns.xml"},
		{Key: "Gun.description", Text: "An ancient pattern.", Tag: "description", SourcePath: "Guns.xml"},
	}

	merged, stats, err := Merge(records, records, true)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if stats.Unchanged != len(records) || stats.New != 0 || stats.Updated != 0 {
		t.Fatalf("stats = %+v, want all unchanged", stats)
	}
	for i, got := range merged {
		if got.Key != records[i].Key || got.Text != records[i].Text || got.History != "" {
			t.Errorf("record %d = %+v, want identical to input", i, got)
		}
	}
}

func TestMergeDropsOutputOnlyKeys(t *testing.T) {
	fixedClock(t)

	output := []record.Record{
		{Key: "Removed.label", Text: "旧文本", SourceText: "old text"},
	}
	merged, _, err := Merge(nil, output, true)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged) != 0 {
		t.Errorf("merged = %d records, want output-only keys dropped", len(merged))
	}
}

func TestMergeDuplicateInputKeys(t *testing.T) {
	fixedClock(t)

	input := []record.Record{
		{Key: "Gun.label", Text: "first"},
		{Key: "Gun.label", Text: "second"},
	}
	merged, stats, err := Merge(input, nil, true)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged) != 1 || stats.New != 1 {
		t.Fatalf("merged = %d, stats = %+v, want first occurrence only", len(merged), stats)
	}
	if merged[0].Text != "first" {
		t.Errorf("text = %q, want first occurrence", merged[0].Text)
	}
}

func TestMergeMalformedRecordAborts(t *testing.T) {
	input := []record.Record{{Key: "", Text: "orphan"}}
	if _, _, err := Merge(input, nil, true); err == nil {
		t.Error("merge accepted record with empty key")
	}
}
