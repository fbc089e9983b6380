// Package placeholder shields non-translatable substrings (format
// tokens, inline markup, domain terms) from the machine-translation
// backend and restores them afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// The reserved wrapper tag. The MT backend is expected to pass wrapped
// content through untouched.
const (
	wrapperOpen  = "<ALIMT >"
	wrapperClose = "</ALIMT>"
)

const newlineEscape = `\n`

// Ordered recognizers, combined into one alternation so a substring
// consumed by an earlier pattern can never be re-matched by a later one.
// The percent-suffixed brace form comes before the general brace form so
// a trailing % is not separated from its token.
var recognizers = []string{
	`\\n`,
	`\[[^\]]+\]`,
	`\{[^}]+\}%`,
	`\{[^}]+\}`,
	`%[sdif]`,
	`</?[^>]+>`,
	`[a-zA-Z_][a-zA-Z0-9_]*\([^)]*\)`,
	`[a-zA-Z_][a-zA-Z0-9_]*->`,
	`\bpawn\b`,
}

var combined = regexp.MustCompile(strings.Join(recognizers, "|"))

// Manager holds the placeholder maps of one protection pass, keyed by
// record id. The map is not recoverable from the protected text alone:
// it must survive until the matching restoration pass runs.
type Manager struct {
	maps map[string]map[string]string
	dict *Dictionary
}

// NewManager creates a manager using the given vocabulary dictionary
// (nil means no vocabulary handling).
func NewManager(dict *Dictionary) *Manager {
	if dict == nil {
		dict = &Dictionary{}
	}
	return &Manager{
		maps: make(map[string]map[string]string),
		dict: dict,
	}
}

// GlossaryTerms exposes the manager's vocabulary for prompt building.
func (m *Manager) GlossaryTerms() []Term {
	return m.dict.Terms()
}

// Protect replaces every recognized placeholder in text with a wrapped
// id and records the original substrings against recordID. A second
// pass ring-fences vocabulary terms in the wrapper tag without hiding
// them. Returns the protected text and the protected values in text
// order.
func (m *Manager) Protect(text, recordID string) (string, []string) {
	if text == "" {
		return text, nil
	}

	// Normalize line breaks to a literal escape so the MT backend sees
	// single-line input.
	protected := strings.ReplaceAll(text, "\r\n", newlineEscape)
	protected = strings.ReplaceAll(protected, "\n", newlineEscape)

	matches := combined.FindAllStringIndex(protected, -1)
	var values []string
	if len(matches) > 0 {
		phMap := m.maps[recordID]
		if phMap == nil {
			phMap = make(map[string]string)
			m.maps[recordID] = phMap
		}

		// Skip the reserved wrapper itself; the markup recognizer has no
		// way to except it (RE2 has no lookahead).
		kept := matches[:0]
		for _, loc := range matches {
			v := protected[loc[0]:loc[1]]
			if isWrapperTag(v) {
				continue
			}
			kept = append(kept, loc)
		}
		matches = kept

		// Replace back to front so earlier offsets stay valid.
		for i := len(matches) - 1; i >= 0; i-- {
			loc := matches[i]
			id := fmt.Sprintf("PH_%d", i+1)
			value := protected[loc[0]:loc[1]]
			phMap[id] = value
			protected = protected[:loc[0]] + wrapperOpen + "(" + id + ")" + wrapperClose + protected[loc[1]:]
		}
		for i := range matches {
			values = append(values, phMap[fmt.Sprintf("PH_%d", i+1)])
		}
	}

	protected = m.wrapVocabulary(protected)
	return protected, values
}

// Restore replaces the wrapped ids recorded for recordID with their
// original substrings, unescapes line breaks, translates any vocabulary
// word the MT backend left in the source language, and finally drops the
// wrapper tags. Restoring a record that was never protected is a no-op.
func (m *Manager) Restore(text, recordID string) string {
	if text == "" {
		return text
	}

	restored := text
	if phMap, ok := m.maps[recordID]; ok {
		// Longer ids first so PH_12 is never clobbered by PH_1.
		ids := make([]string, 0, len(phMap))
		for id := range phMap {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return len(ids[i]) > len(ids[j]) })
		for _, id := range ids {
			restored = strings.ReplaceAll(restored, "("+id+")", phMap[id])
		}
	}

	restored = strings.ReplaceAll(restored, newlineEscape, "\n")
	restored = m.translateRemaining(restored)
	restored = strings.ReplaceAll(restored, wrapperOpen, "")
	restored = strings.ReplaceAll(restored, wrapperClose, "")
	return restored
}

// Map returns a copy of the placeholder values recorded for recordID.
func (m *Manager) Map(recordID string) map[string]string {
	src, ok := m.maps[recordID]
	if !ok {
		return nil
	}
	cp := make(map[string]string, len(src))
	for k, v := range src {
		cp[k] = v
	}
	return cp
}

func isWrapperTag(s string) bool {
	trimmed := strings.TrimPrefix(s, "</")
	trimmed = strings.TrimPrefix(trimmed, "<")
	return strings.HasPrefix(strings.TrimSpace(trimmed), "ALIMT")
}

// wrapVocabulary ring-fences dictionary terms: the word stays visible to
// the MT backend but is marked untouchable. Longest terms first so a
// shorter term never splits a longer one.
func (m *Manager) wrapVocabulary(text string) string {
	for _, term := range m.dict.byLength() {
		text = replaceWholeWords(text, term.English, func(match string) string {
			return wrapperOpen + match + wrapperClose
		}, true)
	}
	return text
}

// translateRemaining translates vocabulary words the MT backend left
// untranslated. Only unwrapped occurrences are touched: a wrapped word
// is still protected and must come out of restoration verbatim.
func (m *Manager) translateRemaining(text string) string {
	for _, term := range m.dict.byLength() {
		translation := term.Translation()
		if translation == "" {
			continue
		}
		before := text
		text = replaceWholeWords(text, term.English, func(string) string {
			return translation
		}, true)
		if text != before {
			log.Debug().Str("term", term.English).Str("translation", translation).Msg("Translated remaining vocabulary word")
		}
	}
	return text
}

// replaceWholeWords replaces case-insensitive whole-word occurrences of
// word. Word boundaries are "not an ASCII letter" on both sides, so the
// check works in mixed CJK/Latin text. With skipWrapped set, occurrences
// lying anywhere inside a wrapper span are left alone: wrapped content
// must come out of restoration verbatim.
func replaceWholeWords(text, word string, repl func(match string) string, skipWrapped bool) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))
	locs := re.FindAllStringIndex(text, -1)
	var spans [][2]int
	if skipWrapped {
		spans = wrapperSpans(text)
	}
	// Back to front so spans and earlier match offsets stay valid.
	for i := len(locs) - 1; i >= 0; i-- {
		start, end := locs[i][0], locs[i][1]
		if isASCIILetter(text, start-1) || isASCIILetter(text, end) {
			continue
		}
		if skipWrapped && insideSpan(spans, start, end) {
			continue
		}
		text = text[:start] + repl(text[start:end]) + text[end:]
	}
	return text
}

// wrapperSpans returns the [start, end) offsets of every wrapper span in
// text, in order.
func wrapperSpans(text string) [][2]int {
	var spans [][2]int
	off := 0
	for {
		rel := strings.Index(text[off:], wrapperOpen)
		if rel < 0 {
			return spans
		}
		start := off + rel
		closeRel := strings.Index(text[start+len(wrapperOpen):], wrapperClose)
		if closeRel < 0 {
			return spans
		}
		end := start + len(wrapperOpen) + closeRel + len(wrapperClose)
		spans = append(spans, [2]int{start, end})
		off = end
	}
}

func insideSpan(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start >= s[0] && end <= s[1] {
			return true
		}
	}
	return false
}

func isASCIILetter(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
