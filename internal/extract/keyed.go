package extract

import (
	"context"

	"mod-translator/internal/filter"
	"mod-translator/internal/record"

	"github.com/rs/zerolog/log"
)

// KeyedScanner walks a flat keyed table tree (UI strings and the like).
// Tags are caller-defined, so the allow-list does not apply.
type KeyedScanner struct {
	filter  *filter.Filter
	workers int
}

// NewKeyedScanner creates a flat-keyed scanner.
func NewKeyedScanner(f *filter.Filter, workers int) *KeyedScanner {
	return &KeyedScanner{filter: f, workers: workers}
}

// Scan extracts records from <modDir>/Languages/<language>/Keyed.
func (s *KeyedScanner) Scan(ctx context.Context, modDir, language string) []record.Record {
	root := LanguageSubdir(modDir, language, KeyedDir)
	parsed := parseLanguageFiles(ctx, root, s.workers)

	var records []record.Record
	for _, pf := range parsed {
		for _, rec := range scanEntries(pf.doc, pf.relPath) {
			if !s.filter.IsTranslatable(rec.Key, rec.Text, filter.FlatKeyed) {
				log.Debug().Str("key", rec.Key).Str("file", rec.SourcePath).Msg("Filtered out keyed entry")
				continue
			}
			records = append(records, rec)
		}
	}

	log.Info().Int("records", len(records)).Str("dir", root).Msg("Keyed scan complete")
	return records
}
