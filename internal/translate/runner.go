package translate

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"mod-translator/internal/cache"
	"mod-translator/internal/placeholder"
	"mod-translator/internal/record"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// Suggester retrieves reference translation pairs for text similar to
// the one being translated.
type Suggester interface {
	Suggest(ctx context.Context, text string, limit int) ([][2]string, error)
}

const referenceLimit = 3

// Runner drives a resume-aware translation pass over an interchange
// table. Each translated row is flushed to the output file before the
// next request, so an interrupted run loses at most the row in flight.
type Runner struct {
	Client  *Client
	Prompts *PromptBuilder
	Cache   *cache.TranslationCache // optional
	Manager *placeholder.Manager    // optional; protects rows lacking protected_text
	Suggest Suggester               // optional
}

// Run translates the pending rows of inputPath into outputPath. Rows
// already present in the output are skipped, which makes rerunning
// after an interruption pick up where the previous run stopped.
func (r *Runner) Run(ctx context.Context, inputPath, outputPath string) Outcome {
	table, err := record.ReadTable(inputPath)
	if err != nil {
		return Outcome{Status: Failed, Reason: err.Error()}
	}

	done := record.CountDataRows(outputPath)
	if done > len(table.Rows) {
		return Outcome{Status: Failed, Reason: fmt.Sprintf(
			"output %s has %d rows but input only %d; refusing to resume", outputPath, done, len(table.Rows))}
	}
	if done == len(table.Rows) {
		log.Info().Str("output", outputPath).Int("rows", done).Msg("Nothing to translate")
		return Outcome{Status: Completed, Skipped: done}
	}
	if done > 0 {
		log.Info().Int("done", done).Int("total", len(table.Rows)).Msg("Resuming translation run")
	}

	table.EnsureColumn(record.ColTranslated)

	w, f, err := openOutput(outputPath, table.Columns, done > 0)
	if err != nil {
		return Outcome{Status: Failed, Reason: err.Error(), Skipped: done}
	}
	defer f.Close()

	var terms []placeholder.Term
	if r.Manager != nil {
		terms = r.Manager.GlossaryTerms()
	}
	systemPrompt := r.Prompts.GetSystemPrompt()

	bar := progressbar.Default(int64(len(table.Rows)), "translating")
	bar.Add(done)

	translated := 0
	for i := done; i < len(table.Rows); i++ {
		if ctx.Err() != nil {
			log.Warn().Int("done", done+translated).Msg("Translation run interrupted")
			return Outcome{Status: Interrupted, Translated: translated, Skipped: done}
		}

		row := table.Rows[i]
		source := row.MTInput()

		inlineProtected := false
		if r.Manager != nil && row.ProtectedText == "" {
			source, _ = r.Manager.Protect(row.Text, row.Key)
			row.ProtectedText = source
			inlineProtected = true
		}

		result, err := r.translateOne(ctx, systemPrompt, source, terms)
		if err != nil {
			if ctx.Err() != nil {
				log.Warn().Int("done", done+translated).Msg("Translation run interrupted")
				return Outcome{Status: Interrupted, Translated: translated, Skipped: done}
			}
			return Outcome{Status: Failed, Reason: fmt.Sprintf("row %q: %v", row.Key, err),
				Translated: translated, Skipped: done}
		}

		if inlineProtected {
			result = r.Manager.Restore(result, row.Key)
		}
		row.Translated = result

		if err := w.Write(row.Line(table.Columns)); err != nil {
			return Outcome{Status: Failed, Reason: err.Error(), Translated: translated, Skipped: done}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return Outcome{Status: Failed, Reason: err.Error(), Translated: translated, Skipped: done}
		}

		translated++
		bar.Add(1)
	}

	log.Info().Int("translated", translated).Int("skipped", done).Msg("Translation run complete")
	return Outcome{Status: Completed, Translated: translated, Skipped: done}
}

// translateOne resolves a single text through the cache, falling back
// to the API, and stores fresh results back in the cache.
func (r *Runner) translateOne(ctx context.Context, systemPrompt, source string, terms []placeholder.Term) (string, error) {
	if r.Cache != nil {
		if hit, ok := r.Cache.Get(ctx, source); ok {
			return hit, nil
		}
	}

	var references [][2]string
	if r.Suggest != nil {
		refs, err := r.Suggest.Suggest(ctx, source, referenceLimit)
		if err != nil {
			log.Debug().Err(err).Msg("Reference lookup failed")
		} else {
			references = refs
		}
	}

	result, err := r.Client.Translate(ctx, systemPrompt, r.Prompts.BuildUserPrompt(source, terms, references))
	if err != nil {
		return "", err
	}

	if r.Cache != nil {
		if err := r.Cache.Set(ctx, source, result); err != nil {
			log.Debug().Err(err).Msg("Cache write failed")
		}
	}
	return result, nil
}

// openOutput opens the output table for streaming writes. On a fresh
// run the header is written first; on resume the file is appended to
// and must already carry the same columns.
func openOutput(path string, columns []string, resume bool) (*csv.Writer, *os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open output table: %w", err)
	}

	w := csv.NewWriter(f)
	if !resume {
		if err := w.Write(columns); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("write output header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("write output header: %w", err)
		}
	}
	return w, f, nil
}
