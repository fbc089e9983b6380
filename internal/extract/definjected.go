package extract

import (
	"context"
	"strings"

	"mod-translator/internal/langxml"
	"mod-translator/internal/record"

	"github.com/rs/zerolog/log"
)

// DefInjectedScanner walks an already-localized language tree. The tree
// mirrors extracted keys one level flat: every direct child of the
// container is one record. The original-language text is recovered from
// the nearest preceding EN: comment.
type DefInjectedScanner struct {
	workers int
}

// NewDefInjectedScanner creates a localized-tree scanner.
func NewDefInjectedScanner(workers int) *DefInjectedScanner {
	return &DefInjectedScanner{workers: workers}
}

// Scan extracts records from <modDir>/Languages/<language>/DefInjected.
func (s *DefInjectedScanner) Scan(ctx context.Context, modDir, language string) []record.Record {
	root := LanguageSubdir(modDir, language, DefInjectedDir)
	parsed := parseLanguageFiles(ctx, root, s.workers)

	var records []record.Record
	for _, pf := range parsed {
		records = append(records, scanEntries(pf.doc, pf.relPath)...)
	}

	log.Info().Int("records", len(records)).Str("dir", root).Msg("DefInjected scan complete")
	return records
}

// scanEntries converts language data entries into records, threading the
// last seen EN: comment as source text. The comment is deliberately not
// cleared after use: several sibling elements may share one comment by
// file-authoring convention.
func scanEntries(entries []langxml.Entry, relPath string) []record.Record {
	var records []record.Record
	lastSource := ""

	for _, e := range entries {
		switch e.Kind {
		case langxml.KindComment:
			if payload, ok := strings.CutPrefix(e.Comment, langxml.SourceMarker); ok {
				lastSource = strings.TrimSpace(payload)
			}
		case langxml.KindElement:
			sourceText := lastSource
			if sourceText == "" {
				sourceText = e.Text
			}
			records = append(records, record.Record{
				Key:        e.Tag,
				Text:       e.Text,
				Tag:        record.TagFromKey(e.Tag),
				SourcePath: relPath,
				SourceText: sourceText,
			})
		}
	}
	return records
}
