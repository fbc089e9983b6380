// Package corpus builds a parallel corpus out of already-translated
// language trees and serves similarity lookups over it.
package corpus

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"mod-translator/internal/extract"
	"mod-translator/internal/record"
	"mod-translator/internal/textutil"

	"github.com/rs/zerolog/log"
)

// Pair is one aligned source/translation sentence pair.
type Pair struct {
	Key        string
	Source     string
	Translated string
	File       string
}

// ExtractPairs collects aligned pairs from a mod's translated language
// subtree. A record yields a pair only when it carries both a recovered
// source text and a translation that actually differs from it.
func ExtractPairs(ctx context.Context, modDir, language string, workers int) ([]Pair, error) {
	injected := extract.NewDefInjectedScanner(workers)
	keyed := extract.NewKeyedScanner(nil, workers)

	injectedRecords := injected.Scan(ctx, modDir, language)
	keyedRecords := keyed.Scan(ctx, modDir, language)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan translated units: %w", err)
	}

	var pairs []Pair
	for _, r := range append(injectedRecords, keyedRecords...) {
		if !isAligned(r) {
			continue
		}
		pairs = append(pairs, Pair{
			Key:        r.Key,
			Source:     r.SourceText,
			Translated: r.Text,
			File:       r.SourcePath,
		})
	}

	log.Info().Int("pairs", len(pairs)).Str("mod", modDir).Msg("Extracted parallel pairs")
	return pairs, nil
}

// isAligned filters out untranslated and degenerate records. A unit
// whose text still equals its source has not been translated yet.
func isAligned(r record.Record) bool {
	source := strings.TrimSpace(r.SourceText)
	translated := strings.TrimSpace(r.Text)
	if source == "" || translated == "" {
		return false
	}
	if source == translated {
		return false
	}
	return textutil.ContainsHan(translated)
}

// WriteTSV saves pairs as tab-separated source/translation lines. Tabs
// and newlines inside a text are escaped so each pair stays one line.
func WriteTSV(path string, pairs []Pair) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create corpus file: %w", err)
	}
	defer f.Close()

	escape := strings.NewReplacer("\t", "\\t", "\n", "\\n", "\r", "")
	for _, p := range pairs {
		line := escape.Replace(p.Source) + "\t" + escape.Replace(p.Translated) + "\n"
		if _, err := f.WriteString(line); err != nil {
			return fmt.Errorf("write corpus file: %w", err)
		}
	}
	return nil
}

// WriteCSV saves pairs with full provenance columns.
func WriteCSV(path string, pairs []Pair) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create corpus file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"key", "source", "translated", "file"}); err != nil {
		return fmt.Errorf("write corpus header: %w", err)
	}
	for _, p := range pairs {
		if err := w.Write([]string{p.Key, p.Source, p.Translated, p.File}); err != nil {
			return fmt.Errorf("write corpus row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush corpus file: %w", err)
	}
	return nil
}
