package placeholder

import (
	"path/filepath"
	"strings"
	"testing"

	"mod-translator/internal/record"
)

func TestProtectTwoSpans(t *testing.T) {
	m := NewManager(nil)

	protected, values := m.Protect("Take {0} damage from [PAWN]", "k1")

	want := "Take <ALIMT >(PH_1)</ALIMT> damage from <ALIMT >(PH_2)</ALIMT>"
	if protected != want {
		t.Errorf("protected = %q\nwant %q", protected, want)
	}
	if len(values) != 2 || values[0] != "{0}" || values[1] != "[PAWN]" {
		t.Errorf("values = %v, want [{0} [PAWN]]", values)
	}

	phMap := m.Map("k1")
	if phMap["PH_1"] != "{0}" || phMap["PH_2"] != "[PAWN]" {
		t.Errorf("map = %v", phMap)
	}
}

func TestProtectRestoreRoundTrip(t *testing.T) {
	texts := []string{
		"Take {0} damage from [PAWN]",
		"Deal {dmg}% extra damage",
		"Line one\nLine two",
		"Call repair(target) then move->",
		"A %s costs %d gold",
		"Click <b>here</b> to continue",
		"the pawn falls over",
		"plain text with nothing special",
		"",
	}

	for _, text := range texts {
		m := NewManager(nil)
		protected, _ := m.Protect(text, "id")
		if got := m.Restore(protected, "id"); got != text {
			t.Errorf("round trip of %q:\nprotected %q\nrestored  %q", text, protected, got)
		}
	}
}

func TestProtectPercentBraceAsSingleSpan(t *testing.T) {
	m := NewManager(nil)
	_, values := m.Protect("Gain {0}% bonus", "k")
	if len(values) != 1 || values[0] != "{0}%" {
		t.Errorf("values = %v, want the trailing %% kept with its token", values)
	}
}

func TestProtectNewlineNormalization(t *testing.T) {
	m := NewManager(nil)
	protected, _ := m.Protect("a\r\nb\nc", "k")
	if strings.ContainsAny(protected, "\r\n") {
		t.Errorf("protected text still multi-line: %q", protected)
	}
	if got := m.Restore(protected, "k"); got != "a\nb\nc" {
		t.Errorf("restored = %q, want CRLF collapsed to LF", got)
	}
}

func TestVocabularyRingFence(t *testing.T) {
	dict := NewDictionary([]Term{{English: "psylink", Chinese: "灵能链接"}})
	m := NewManager(dict)

	protected, _ := m.Protect("wield the psylink blade", "k")
	if !strings.Contains(protected, "<ALIMT >psylink</ALIMT>") {
		t.Errorf("term not ring-fenced: %q", protected)
	}

	// Backend passed the wrapped term through: it must come out verbatim.
	if got := m.Restore(protected, "k"); got != "wield the psylink blade" {
		t.Errorf("restored = %q", got)
	}
}

func TestVocabularyTranslateRemaining(t *testing.T) {
	dict := NewDictionary([]Term{{English: "psylink", Chinese: "灵能链接"}})
	m := NewManager(dict)

	// Backend dropped the wrapper and left the term untranslated.
	got := m.Restore("挥舞 psylink 之刃", "k")
	if got != "挥舞 灵能链接 之刃" {
		t.Errorf("restored = %q, want remaining term translated", got)
	}
}

func TestVocabularyInsidePlaceholderStaysVerbatim(t *testing.T) {
	dict := NewDictionary([]Term{
		{English: "pawn", Chinese: "棋子"},
		{English: "damage", Chinese: "伤害"},
	})

	// A vocabulary word inside a restored placeholder span must never be
	// translated, whatever its position within the span.
	texts := []string{
		"Take {0} damage from [PAWN]",
		"Deals {damage} points",
		"Click <b>the pawn</b> now",
	}
	for _, text := range texts {
		m := NewManager(dict)
		protected, _ := m.Protect(text, "k")
		if got := m.Restore(protected, "k"); got != text {
			t.Errorf("round trip of %q:\nprotected %q\nrestored  %q", text, protected, got)
		}
	}
}

func TestVocabularyWholeWordOnly(t *testing.T) {
	dict := NewDictionary([]Term{{English: "arm", Chinese: "手臂"}})
	m := NewManager(dict)

	protected, _ := m.Protect("the army marched", "k")
	if strings.Contains(protected, "<ALIMT >") {
		t.Errorf("substring wrapped inside a longer word: %q", protected)
	}
}

func TestTermTranslationPriority(t *testing.T) {
	tests := []struct {
		priority string
		want     string
	}{
		{"high", "甲"},
		{"low", "丙"},
		{"", "乙"},
		{"medium", "乙"},
	}
	for _, tt := range tests {
		term := Term{English: "x", Chinese: "甲|乙|丙", Priority: tt.priority}
		if got := term.Translation(); got != tt.want {
			t.Errorf("priority %q: got %q, want %q", tt.priority, got, tt.want)
		}
	}

	single := Term{English: "x", Chinese: "单"}
	if got := single.Translation(); got != "单" {
		t.Errorf("single candidate = %q", got)
	}
}

func TestManyPlaceholdersOrdering(t *testing.T) {
	m := NewManager(nil)
	parts := make([]string, 12)
	for i := range parts {
		parts[i] = "{" + strings.Repeat("x", i+1) + "}"
	}
	text := strings.Join(parts, " and ")

	protected, values := m.Protect(text, "k")
	if len(values) != 12 {
		t.Fatalf("values = %d, want 12", len(values))
	}
	// PH_12 must never be clobbered by PH_1 during restoration.
	if got := m.Restore(protected, "k"); got != text {
		t.Errorf("round trip broke with double-digit ids:\n%q\n%q", got, text)
	}
}

func TestTableProtectRestore(t *testing.T) {
	dir := t.TempDir()
	mapsPath := filepath.Join(dir, "maps.json")

	table := &record.Table{
		Columns: []string{record.ColKey, record.ColText, record.ColTag, record.ColFile},
		Rows: []record.Row{
			{Key: "Gun.label", Text: "Take {0} damage"},
			{Key: "Gun.description", Text: "no tokens here"},
		},
	}

	m := NewManager(nil)
	if n := m.ProtectTable(table); n != 1 {
		t.Errorf("ProtectTable = %d rows with placeholders, want 1", n)
	}
	if !table.HasColumn(record.ColProtectedText) {
		t.Error("protected_text column not added")
	}
	if !strings.Contains(table.Rows[0].ProtectedText, "(PH_1)") {
		t.Errorf("row 0 protected = %q", table.Rows[0].ProtectedText)
	}
	if table.Rows[1].ProtectedText != "no tokens here" {
		t.Errorf("row 1 protected = %q, want text unchanged", table.Rows[1].ProtectedText)
	}

	if err := m.SaveMaps(mapsPath); err != nil {
		t.Fatalf("SaveMaps: %v", err)
	}

	// A fresh manager restores from the sidecar alone.
	m2 := NewManager(nil)
	if err := m2.LoadMaps(mapsPath); err != nil {
		t.Fatalf("LoadMaps: %v", err)
	}

	table.Rows[0].Translated = "受到 (PH_1) 伤害"
	if n := m2.RestoreTable(table); n != 1 {
		t.Errorf("RestoreTable = %d, want 1", n)
	}
	if table.Rows[0].Translated != "受到 {0} 伤害" {
		t.Errorf("restored = %q", table.Rows[0].Translated)
	}
}
