package filter

import (
	"testing"

	"mod-translator/internal/config"
)

func testFilter() *Filter {
	return New(&config.Config{
		AllowFields: []string{"label", "description", "rulesStrings"},
		DenyFields:  []string{"defName", "spawnCategories"},
		NonTextPatterns: []string{
			`^\s*\(\s*\d+\s*,\s*[\d*\.]+\s*\)\s*$`,
			`^\s*(true|false)\s*$`,
		},
	})
}

func TestIsTranslatable(t *testing.T) {
	f := testFilter()

	tests := []struct {
		name string
		key  string
		text string
		ctx  Context
		want bool
	}{
		{"allowed tree field", "Gun.label", "revolver", Tree, true},
		{"case-insensitive allow", "Gun.Label", "revolver", Tree, true},
		{"unlisted tree field", "Gun.damage", "twelve", Tree, false},
		{"denied field", "Gun.defName", "Gun_Revolver", Tree, false},
		{"denied field flat context", "Gun.spawnCategories", "weapon", FlatKeyed, false},
		{"flat keyed arbitrary tag", "GreetingMessage", "hello", FlatKeyed, true},
		{"empty text", "Gun.label", "   ", Tree, false},
		{"numeric text", "Gun.label", "42", Tree, false},
		{"decimal text", "Gun.label", "3.14", Tree, false},
		{"coordinate pair", "Gun.label", "(1, 2.5)", Tree, false},
		{"boolean text", "Gun.label", "true", Tree, false},
		{"list index key", "Gun.rulesStrings.0", "fires wildly", Tree, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IsTranslatable(tt.key, tt.text, tt.ctx); got != tt.want {
				t.Errorf("IsTranslatable(%q, %q, %v) = %v, want %v", tt.key, tt.text, tt.ctx, got, tt.want)
			}
		})
	}
}

func TestNilFilterAcceptsNonEmpty(t *testing.T) {
	var f *Filter
	if !f.IsTranslatable("anything", "text", Tree) {
		t.Error("nil filter rejected non-empty text")
	}
	if f.IsTranslatable("anything", "", Tree) {
		t.Error("nil filter accepted empty text")
	}
}

func TestAllowed(t *testing.T) {
	f := testFilter()
	if !f.Allowed("rulesStrings") {
		t.Error("rulesStrings should be allowed")
	}
	if !f.Allowed("RULESSTRINGS") {
		t.Error("allow-list match should be case-insensitive")
	}
	if f.Allowed("comps") {
		t.Error("comps should not be allowed")
	}
}

func TestInvalidPatternDropped(t *testing.T) {
	f := New(&config.Config{
		AllowFields:     []string{"label"},
		NonTextPatterns: []string{`([`, `^\d+%$`},
	})
	if !f.IsTranslatable("x.label", "plain text", Tree) {
		t.Error("valid text rejected after invalid pattern")
	}
	if f.IsTranslatable("x.label", "50%", Tree) {
		t.Error("surviving valid pattern not applied")
	}
}
