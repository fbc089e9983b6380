// Package merge reconciles a fresh extraction against a previously
// exported record set, classifying every key and annotating changes with
// a human-readable history line.
package merge

import (
	"fmt"
	"time"

	"mod-translator/internal/record"

	"github.com/rs/zerolog/log"
)

// Stats counts the classification of one merge call: new keys (absent
// from the previous output), unchanged keys (input text equals the
// output's recorded source text) and updated keys (source text differs).
type Stats struct {
	New       int
	Unchanged int
	Updated   int
}

// clock is swapped in tests for deterministic history lines.
var clock = time.Now

// Merge classifies every input key against the previous output set and
// returns the merged records. Unchanged keys are dropped unless
// includeUnchanged is set, in which case the previous output's text is
// kept: an unchanged source string means the existing translation is
// still valid and must not be overwritten by a re-extraction. Keys
// present only in the output are dropped (one-way merge; deletions are
// implicit).
//
// A malformed record aborts the whole merge: silently dropping one would
// corrupt the key-based reconciliation.
func Merge(input, output []record.Record, includeUnchanged bool) ([]record.Record, Stats, error) {
	var stats Stats

	normIn, err := normalize(input)
	if err != nil {
		return nil, stats, fmt.Errorf("normalize input records: %w", err)
	}
	normOut, err := normalize(output)
	if err != nil {
		return nil, stats, fmt.Errorf("normalize output records: %w", err)
	}

	outMap := make(map[string]record.Record, len(normOut))
	for _, rec := range normOut {
		outMap[rec.Key] = rec
	}

	today := clock().Format("2006-01-02")
	var merged []record.Record
	seen := make(map[string]struct{}, len(normIn))

	for _, in := range normIn {
		if _, dup := seen[in.Key]; dup {
			continue
		}
		seen[in.Key] = struct{}{}

		out, exists := outMap[in.Key]
		switch {
		case !exists:
			stats.New++
			in.History = fmt.Sprintf("new text %q added on %s", in.Text, today)
			merged = append(merged, in)

		case in.Text == out.SourceText:
			stats.Unchanged++
			if includeUnchanged {
				merged = append(merged, record.Record{
					Key:        in.Key,
					Text:       out.Text,
					Tag:        out.Tag,
					SourcePath: out.SourcePath,
					SourceText: in.Text,
					UnitType:   in.UnitType,
				})
			}

		default:
			stats.Updated++
			merged = append(merged, record.Record{
				Key:        in.Key,
				Text:       in.Text,
				Tag:        in.Tag,
				SourcePath: in.SourcePath,
				SourceText: out.SourceText,
				UnitType:   in.UnitType,
				History: fmt.Sprintf("previous translation %q for source %q replaced by new source %q on %s",
					out.Text, out.SourceText, in.Text, today),
			})
		}
	}

	log.Info().
		Int("input", len(normIn)).
		Int("new", stats.New).
		Int("unchanged", stats.Unchanged).
		Int("updated", stats.Updated).
		Int("merged", len(merged)).
		Msg("Smart merge complete")

	return merged, stats, nil
}

// normalize strips the unit-type prefix from keys and defaults the
// source text to the current text, validating each record on the way.
func normalize(records []record.Record) ([]record.Record, error) {
	out := make([]record.Record, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		rec.Key = record.StripUnitType(rec.Key)
		if rec.SourceText == "" {
			rec.SourceText = rec.Text
		}
		out = append(out, rec)
	}
	return out, nil
}
