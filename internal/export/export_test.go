package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mod-translator/internal/langxml"
	"mod-translator/internal/record"
)

func testRecords() []record.Record {
	return []record.Record{
		{
			Key:        "ThingDef/Gun_Revolver.label",
			Text:       "左轮手枪",
			Tag:        "label",
			SourcePath: "Weapons/Guns.xml",
			SourceText: "revolver",
			UnitType:   "ThingDef",
		},
		{
			Key:        "ThingDef/Gun_Revolver.description",
			Text:       "一种古老的样式。",
			Tag:        "description",
			SourcePath: "Weapons/Guns.xml",
			SourceText: "An ancient pattern.",
			UnitType:   "ThingDef",
			History:    `new text "An ancient pattern." added on 2026-03-14`,
		},
		{
			Key:        "HediffDef/Burn.label",
			Text:       "烧伤",
			Tag:        "label",
			SourcePath: "Hediffs/Burns.xml",
			SourceText: "burn",
			UnitType:   "HediffDef",
		},
	}
}

func readOut(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestExportDefInjectedByUnitType(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{OutputDir: dir, Language: "ChineseSimplified"}

	if err := e.ExportDefInjected(testRecords(), ByUnitType); err != nil {
		t.Fatalf("export: %v", err)
	}

	root := filepath.Join(dir, "Languages", "ChineseSimplified", "DefInjected")
	thing := readOut(t, filepath.Join(root, "ThingDefDefs", "ThingDefDefs.xml"))
	hediff := readOut(t, filepath.Join(root, "HediffDefDefs", "HediffDefDefs.xml"))

	if !strings.Contains(thing, "<Gun_Revolver.label>左轮手枪</Gun_Revolver.label>") {
		t.Errorf("label element missing:\n%s", thing)
	}
	if !strings.Contains(thing, "<!-- EN: revolver -->") {
		t.Errorf("EN comment missing:\n%s", thing)
	}
	if !strings.Contains(thing, "<!-- HISTORY: new text") {
		t.Errorf("HISTORY comment missing:\n%s", thing)
	}
	if !strings.Contains(hediff, "<Burn.label>烧伤</Burn.label>") {
		t.Errorf("hediff element missing:\n%s", hediff)
	}

	// Keys are sorted, so description precedes label.
	if strings.Index(thing, "Gun_Revolver.description") > strings.Index(thing, "Gun_Revolver.label>") {
		t.Errorf("records not sorted by key:\n%s", thing)
	}

	// The EN comment must sit directly above its element.
	entries, err := langxml.ParseLanguageData([]byte(thing))
	if err != nil {
		t.Fatalf("reparse export: %v", err)
	}
	for i, entry := range entries {
		if entry.Kind == langxml.KindElement && i > 0 {
			prev := entries[i-1]
			if prev.Kind != langxml.KindComment || !strings.HasPrefix(prev.Comment, langxml.SourceMarker) {
				t.Errorf("element %s not directly preceded by EN comment", entry.Tag)
			}
		}
	}
}

func TestExportDefInjectedByFilePath(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{OutputDir: dir, Language: "ChineseSimplified"}

	if err := e.ExportDefInjected(testRecords(), ByFilePath); err != nil {
		t.Fatalf("export: %v", err)
	}

	root := filepath.Join(dir, "Languages", "ChineseSimplified", "DefInjected")
	guns := readOut(t, filepath.Join(root, "Weapons", "Guns.xml"))
	if !strings.Contains(guns, "<Gun_Revolver.label>") {
		t.Errorf("stripped key missing:\n%s", guns)
	}
	burns := readOut(t, filepath.Join(root, "Hediffs", "Burns.xml"))
	if !strings.Contains(burns, "<Burn.label>") {
		t.Errorf("hediff file missing record:\n%s", burns)
	}
}

func TestExportDefInjectedUnknownStrategy(t *testing.T) {
	e := &Exporter{OutputDir: t.TempDir(), Language: "ChineseSimplified"}
	if err := e.ExportDefInjected(testRecords(), Strategy("bogus")); err == nil {
		t.Error("unknown strategy accepted")
	}
}

func TestExportKeyedMergesByFilename(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{OutputDir: dir, Language: "ChineseSimplified"}

	records := []record.Record{
		{Key: "GreetingMessage", Text: "你好，世界", SourcePath: "Core/UI.xml", SourceText: "hello, world"},
		{Key: "FarewellMessage", Text: "再见", SourcePath: "Expansion/UI.xml", SourceText: "goodbye"},
	}
	if err := e.ExportKeyed(records); err != nil {
		t.Fatalf("export: %v", err)
	}

	out := readOut(t, filepath.Join(dir, "Languages", "ChineseSimplified", "Keyed", "UI.xml"))
	if !strings.Contains(out, "<GreetingMessage>你好，世界</GreetingMessage>") ||
		!strings.Contains(out, "<FarewellMessage>再见</FarewellMessage>") {
		t.Errorf("merged keyed file incomplete:\n%s", out)
	}
}
