package translate

import (
	"strings"
	"testing"

	"mod-translator/internal/placeholder"
)

// The marker example shown to the model must match the format the
// protection pass actually emits.
func TestSystemPromptMatchesMarkerFormat(t *testing.T) {
	protected, _ := placeholder.NewManager(nil).Protect("Take {0} damage", "k")
	if !strings.Contains(protected, "(PH_1)") {
		t.Fatalf("first marker is not (PH_1): %q", protected)
	}

	prompt := NewPromptBuilder("English", "ChineseSimplified").GetSystemPrompt()
	if !strings.Contains(prompt, "(PH_1)") {
		t.Errorf("prompt does not show the real marker format:\n%s", prompt)
	}
	if strings.Contains(prompt, "(PH_0)") {
		t.Errorf("prompt shows a marker id that is never produced:\n%s", prompt)
	}
}

func TestBuildUserPromptSections(t *testing.T) {
	pb := NewPromptBuilder("English", "ChineseSimplified")
	prompt := pb.BuildUserPrompt("wield the blade",
		[]placeholder.Term{{English: "blade", Chinese: "刃"}},
		[][2]string{{"wield the axe", "挥舞斧头"}})

	for _, want := range []string{
		"=== Glossary ===",
		"* blade -> 刃",
		"=== Reference translations ===",
		"* wield the axe -> 挥舞斧头",
		"Text to translate:\nwield the blade",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
