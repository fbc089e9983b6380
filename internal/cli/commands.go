package cli

import (
	"fmt"

	"mod-translator/internal/cache"
	"mod-translator/internal/config"
	"mod-translator/internal/corpus"
	"mod-translator/internal/export"
	"mod-translator/internal/extract"
	"mod-translator/internal/filter"
	"mod-translator/internal/merge"
	"mod-translator/internal/placeholder"
	"mod-translator/internal/record"
	"mod-translator/internal/terms"
	"mod-translator/internal/translate"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <mod-dir>",
		Short: "Extract translatable units from a mod into an interchange table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			skipKeyed, _ := cmd.Flags().GetBool("skip-keyed")
			fromLang, _ := cmd.Flags().GetString("from-lang")
			return runExtract(args[0], output, skipKeyed, fromLang)
		},
	}
	cmd.Flags().String("output", "extracted.csv", "Output table path")
	cmd.Flags().Bool("skip-keyed", false, "Extract defs units only")
	cmd.Flags().String("from-lang", "",
		"Extract from an existing language subtree instead of raw definition files")
	return cmd
}

func runExtract(modDir, output string, skipKeyed bool, fromLang string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	f := filter.New(cfg)

	var records []record.Record
	if fromLang != "" {
		// An already-exported language subtree is the source of truth, so
		// the translation keys of a previous run survive merging.
		records = extract.NewDefInjectedScanner(cfg.WorkerCount).Scan(ctx, modDir, fromLang)
		if !skipKeyed {
			keyed := extract.NewKeyedScanner(f, cfg.WorkerCount).Scan(ctx, modDir, fromLang)
			records = append(records, keyed...)
		}
	} else {
		records = extract.NewDefsScanner(f, cfg.WorkerCount).Scan(ctx, modDir)
		if !skipKeyed {
			keyed := extract.NewKeyedScanner(f, cfg.WorkerCount).Scan(ctx, modDir, cfg.SourceLanguage)
			records = append(records, keyed...)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	table := record.NewTable(records, true)
	if err := table.Write(output); err != nil {
		return err
	}

	log.Info().Int("records", len(records)).Str("output", output).Msg("Extraction complete")
	return nil
}

func mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <new-table> <existing-table>",
		Short: "Merge freshly extracted units against an existing translation table",
		Long: "Classifies each unit of the new table as new, unchanged or updated relative\n" +
			"to the existing table and writes the merged result. The existing table is\n" +
			"never modified.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			includeUnchanged, _ := cmd.Flags().GetBool("include-unchanged")
			return runMerge(args[0], args[1], output, includeUnchanged)
		},
	}
	cmd.Flags().String("output", "merged.csv", "Output table path")
	cmd.Flags().Bool("include-unchanged", true, "Carry unchanged units into the output")
	return cmd
}

func runMerge(newPath, existingPath, output string, includeUnchanged bool) error {
	newTable, err := record.ReadTable(newPath)
	if err != nil {
		return err
	}
	existingTable, err := record.ReadTable(existingPath)
	if err != nil {
		return err
	}

	merged, stats, err := merge.Merge(newTable.Records(), existingTable.Records(), includeUnchanged)
	if err != nil {
		return err
	}

	table := record.NewTable(merged, newTable.HasColumn(record.ColType))
	if err := table.Write(output); err != nil {
		return err
	}

	log.Info().
		Int("new", stats.New).
		Int("unchanged", stats.Unchanged).
		Int("updated", stats.Updated).
		Str("output", output).
		Msg("Merge complete")
	return nil
}

func protectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protect <table>",
		Short: "Replace placeholders with opaque markers before machine translation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			maps, _ := cmd.Flags().GetString("maps")
			return runProtect(args[0], output, maps)
		},
	}
	cmd.Flags().String("output", "protected.csv", "Output table path")
	cmd.Flags().String("maps", "placeholder_maps.json", "Sidecar file for the placeholder maps")
	return cmd
}

func runProtect(input, output, maps string) error {
	cfg := config.Load()

	dict, err := placeholder.LoadDictionary(cfg.DictionaryFile)
	if err != nil {
		return err
	}
	manager := placeholder.NewManager(dict)

	table, err := record.ReadTable(input)
	if err != nil {
		return err
	}

	protected := manager.ProtectTable(table)
	if err := manager.SaveMaps(maps); err != nil {
		return err
	}
	if err := table.Write(output); err != nil {
		return err
	}

	log.Info().Int("protected", protected).Str("output", output).Str("maps", maps).
		Msg("Protection complete")
	return nil
}

func restoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <table>",
		Short: "Restore placeholder markers in translated text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			maps, _ := cmd.Flags().GetString("maps")
			return runRestore(args[0], output, maps)
		},
	}
	cmd.Flags().String("output", "restored.csv", "Output table path")
	cmd.Flags().String("maps", "placeholder_maps.json", "Sidecar file written by protect")
	return cmd
}

func runRestore(input, output, maps string) error {
	cfg := config.Load()

	dict, err := placeholder.LoadDictionary(cfg.DictionaryFile)
	if err != nil {
		return err
	}
	manager := placeholder.NewManager(dict)
	if err := manager.LoadMaps(maps); err != nil {
		return err
	}

	table, err := record.ReadTable(input)
	if err != nil {
		return err
	}

	restored := manager.RestoreTable(table)
	if err := table.Write(output); err != nil {
		return err
	}

	log.Info().Int("restored", restored).Str("output", output).Msg("Restoration complete")
	return nil
}

func translateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <input-table> <output-table>",
		Short: "Machine-translate pending table rows, resuming where a previous run stopped",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			noCache, _ := cmd.Flags().GetBool("no-cache")
			suggest, _ := cmd.Flags().GetBool("suggest")
			return runTranslate(args[0], args[1], noCache, suggest)
		},
	}
	cmd.Flags().Bool("no-cache", false, "Skip the PostgreSQL translation cache")
	cmd.Flags().Bool("suggest", false, "Attach similar corpus pairs to each request")
	return cmd
}

func runTranslate(input, output string, noCache, suggest bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	if cfg.MTAPIKey == "" {
		return fmt.Errorf("MT_API_KEY is not set")
	}

	dict, err := placeholder.LoadDictionary(cfg.DictionaryFile)
	if err != nil {
		return err
	}

	runner := &translate.Runner{
		Client:  translate.NewClient(cfg.MTAPIKey, cfg.MTEndpoint, cfg.MTModel),
		Prompts: translate.NewPromptBuilder(cfg.SourceLanguage, cfg.TargetLanguage),
		Manager: placeholder.NewManager(dict),
	}

	if !noCache || suggest {
		pool, err := initPostgres(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if !noCache {
			translationCache, err := cache.NewTranslationCache(ctx, pool)
			if err != nil {
				return err
			}
			if err := translationCache.Preload(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to preload cache")
			}
			runner.Cache = translationCache
		}

		if suggest {
			embed := corpus.NewEmbeddingClient(cfg.MTAPIKey, cfg.EmbeddingModel,
				cfg.EmbeddingEndpoint, cfg.EmbeddingDimensions)
			store, err := corpus.NewStore(ctx, pool, embed, cfg.EmbeddingDimensions)
			if err != nil {
				return err
			}
			runner.Suggest = store
		}
	}

	outcome := runner.Run(ctx, input, output)
	switch outcome.Status {
	case translate.Interrupted:
		log.Warn().Int("translated", outcome.Translated).
			Msg("Run interrupted; rerun the same command to resume")
		return nil
	case translate.Failed:
		return outcome.Err()
	}
	return nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <table> <output-dir>",
		Short: "Write a translated table back out as language files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, _ := cmd.Flags().GetString("strategy")
			return runExport(args[0], args[1], strategy)
		},
	}
	cmd.Flags().String("strategy", string(export.ByUnitType),
		"Defs grouping strategy: unit-type, original-path or file-path")
	return cmd
}

func runExport(input, outputDir, strategy string) error {
	cfg := config.Load()

	table, err := record.ReadTable(input)
	if err != nil {
		return err
	}

	var defs, keyed []record.Record
	for _, r := range table.Records() {
		if r.UnitType != "" {
			defs = append(defs, r)
		} else {
			keyed = append(keyed, r)
		}
	}

	e := &export.Exporter{OutputDir: outputDir, Language: cfg.TargetLanguage}
	if len(defs) > 0 {
		if err := e.ExportDefInjected(defs, export.Strategy(strategy)); err != nil {
			return err
		}
	}
	if len(keyed) > 0 {
		if err := e.ExportKeyed(keyed); err != nil {
			return err
		}
	}

	log.Info().Int("defs", len(defs)).Int("keyed", len(keyed)).Str("dir", outputDir).
		Msg("Export complete")
	return nil
}

func corpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Build and query the parallel corpus",
	}
	cmd.AddCommand(corpusExtractCmd())
	cmd.AddCommand(corpusSyncCmd())
	return cmd
}

func corpusExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <mod-dir>",
		Short: "Extract aligned source/translation pairs from a translated mod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			format, _ := cmd.Flags().GetString("format")
			return runCorpusExtract(args[0], output, format)
		},
	}
	cmd.Flags().String("output", "corpus.tsv", "Output file path")
	cmd.Flags().String("format", "tsv", "Output format: tsv or csv")
	return cmd
}

func runCorpusExtract(modDir, output, format string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	pairs, err := corpus.ExtractPairs(ctx, modDir, cfg.TargetLanguage, cfg.WorkerCount)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		err = corpus.WriteCSV(output, pairs)
	default:
		err = corpus.WriteTSV(output, pairs)
	}
	if err != nil {
		return err
	}

	log.Info().Int("pairs", len(pairs)).Str("output", output).Msg("Corpus export complete")
	return nil
}

func corpusSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <mod-dir>",
		Short: "Embed extracted pairs and store them in PostgreSQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorpusSync(args[0])
		},
	}
}

func runCorpusSync(modDir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	pool, err := initPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	embed := corpus.NewEmbeddingClient(cfg.MTAPIKey, cfg.EmbeddingModel,
		cfg.EmbeddingEndpoint, cfg.EmbeddingDimensions)
	store, err := corpus.NewStore(ctx, pool, embed, cfg.EmbeddingDimensions)
	if err != nil {
		return err
	}

	pairs, err := corpus.ExtractPairs(ctx, modDir, cfg.TargetLanguage, cfg.WorkerCount)
	if err != nil {
		return err
	}
	if err := store.Sync(ctx, pairs, cfg.BatchSize); err != nil {
		return err
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("pairs", len(pairs)).Int("total", total).Msg("Corpus sync complete")
	return nil
}

func termsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Manage the glossary graph",
	}
	cmd.AddCommand(termsSyncCmd())
	cmd.AddCommand(termsUnusedCmd())
	cmd.AddCommand(termsExportCmd())
	return cmd
}

func termsSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push the dictionary into Neo4j and link term usages",
		RunE: func(cmd *cobra.Command, args []string) error {
			link, _ := cmd.Flags().GetString("link")
			return runTermsSync(link)
		},
	}
	cmd.Flags().String("link", "", "Interchange table whose units should be linked to terms")
	return cmd
}

func runTermsSync(linkTable string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	dict, err := placeholder.LoadDictionary(cfg.DictionaryFile)
	if err != nil {
		return err
	}

	store, err := terms.NewStore(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := store.SyncDictionary(ctx, dict); err != nil {
		return err
	}

	if linkTable != "" {
		table, err := record.ReadTable(linkTable)
		if err != nil {
			return err
		}
		if err := store.LinkUsages(ctx, table.Records()); err != nil {
			return err
		}
	}
	return nil
}

func termsUnusedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unused",
		Short: "List glossary terms no extracted unit references",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTermsUnused(cmd)
		},
	}
}

func runTermsUnused(cmd *cobra.Command) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	store, err := terms.NewStore(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	unused, err := store.UnusedTerms(ctx)
	if err != nil {
		return err
	}
	for _, name := range unused {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	log.Info().Int("count", len(unused)).Msg("Unused terms listed")
	return nil
}

func termsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the glossary graph back out as a dictionary file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			return runTermsExport(output)
		},
	}
	cmd.Flags().String("output", "dictionary.yaml", "Output dictionary path")
	return cmd
}

func runTermsExport(output string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	store, err := terms.NewStore(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	dict, err := store.ExportDictionary(ctx)
	if err != nil {
		return err
	}
	if err := placeholder.SaveDictionary(output, dict); err != nil {
		return err
	}

	log.Info().Str("output", output).Msg("Dictionary exported")
	return nil
}
