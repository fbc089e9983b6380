package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mod-translator/internal/extract"
	"mod-translator/internal/record"
)

func TestIsAligned(t *testing.T) {
	tests := []struct {
		name string
		rec  record.Record
		want bool
	}{
		{"translated", record.Record{SourceText: "revolver", Text: "左轮手枪"}, true},
		{"untranslated", record.Record{SourceText: "revolver", Text: "revolver"}, false},
		{"no source", record.Record{Text: "左轮手枪"}, false},
		{"no translation", record.Record{SourceText: "revolver"}, false},
		{"latin only", record.Record{SourceText: "revolver", Text: "revolvér"}, false},
		{"whitespace translation", record.Record{SourceText: "revolver", Text: "   "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAligned(tt.rec); got != tt.want {
				t.Errorf("isAligned(%+v) = %v, want %v", tt.rec, got, tt.want)
			}
		})
	}
}

func TestExtractPairsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExtractPairs(ctx, t.TempDir(), "ChineseSimplified", 1); err == nil {
		t.Error("cancelled extraction did not report an error")
	}
}

func TestExtractPairs(t *testing.T) {
	modDir := t.TempDir()
	path := filepath.Join(extract.LanguageSubdir(modDir, "ChineseSimplified", extract.DefInjectedDir), "Guns.xml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	doc := `<?xml version="1.0" encoding="utf-8"?>
<LanguageData>
  <!-- EN: revolver -->
  <Gun_Revolver.label>左轮手枪</Gun_Revolver.label>
  <!-- EN: still english -->
  <Skipped.label>still english</Skipped.label>
</LanguageData>`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	pairs, err := ExtractPairs(context.Background(), modDir, "ChineseSimplified", 2)
	if err != nil {
		t.Fatalf("ExtractPairs: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want untranslated entries dropped", len(pairs))
	}
	if pairs[0].Source != "revolver" || pairs[0].Translated != "左轮手枪" {
		t.Errorf("pair = %+v", pairs[0])
	}
}

func TestWriteTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.tsv")
	pairs := []Pair{
		{Source: "line\none\twith tabs", Translated: "第一\n行"},
		{Source: "plain", Translated: "简单"},
	}
	if err := WriteTSV(path, pairs); err != nil {
		t.Fatalf("WriteTSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want one line per pair:\n%s", len(lines), data)
	}
	if fields := strings.Split(lines[0], "\t"); len(fields) != 2 {
		t.Errorf("line 0 has %d tab fields, want 2: %q", len(fields), lines[0])
	}
	if lines[1] != "plain\t简单" {
		t.Errorf("line 1 = %q", lines[1])
	}
}
