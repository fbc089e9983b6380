package translate

import (
	"fmt"
	"strings"

	"mod-translator/internal/placeholder"
)

// PromptBuilder constructs system and user prompts for the machine
// translation of protected game text.
type PromptBuilder struct {
	sourceLanguage string
	targetLanguage string
}

// NewPromptBuilder creates a prompt builder for the given language pair.
func NewPromptBuilder(sourceLanguage, targetLanguage string) *PromptBuilder {
	return &PromptBuilder{
		sourceLanguage: sourceLanguage,
		targetLanguage: targetLanguage,
	}
}

const systemPromptTemplate = `You are a professional game localizer translating mod content from %s to %s.

Rules:
1. Preserve ALL placeholder markers like (PH_1), (PH_2) exactly as-is, including the parentheses.
2. Preserve ALL <ALIMT > ... </ALIMT> spans exactly as-is; never translate text inside them.
3. Preserve line breaks and the \n escape sequence.
4. Output ONLY the translation, nothing else.
5. Do NOT add explanations, notes, or extra text.
6. Keep UI text concise and natural in %s.
7. Match the tone and register of the original.`

// GetSystemPrompt returns the system prompt for translation.
func (pb *PromptBuilder) GetSystemPrompt() string {
	return fmt.Sprintf(systemPromptTemplate, pb.sourceLanguage, pb.targetLanguage, pb.targetLanguage)
}

// BuildUserPrompt constructs the user prompt, optionally with glossary
// terms and reference translation pairs retrieved for similar text.
func (pb *PromptBuilder) BuildUserPrompt(text string, terms []placeholder.Term, references [][2]string) string {
	var sb strings.Builder

	if len(terms) > 0 {
		sb.WriteString("=== Glossary ===\n")
		for _, t := range terms {
			sb.WriteString(fmt.Sprintf("* %s -> %s\n", t.English, t.Translation()))
		}
		sb.WriteString("\n")
	}

	if len(references) > 0 {
		sb.WriteString("=== Reference translations ===\n")
		for _, pair := range references {
			sb.WriteString(fmt.Sprintf("* %s -> %s\n", pair[0], pair[1]))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Text to translate:\n")
	sb.WriteString(text)

	return sb.String()
}
