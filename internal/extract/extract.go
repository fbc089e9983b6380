// Package extract turns mod content files into flat translation records.
// Three scanners cover the three source shapes: raw definition trees,
// already-localized language trees, and flat keyed tables.
package extract

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mod-translator/internal/langxml"
	"mod-translator/internal/worker"

	"github.com/rs/zerolog/log"
)

// Subdirectory names inside a mod.
const (
	DefsDir        = "Defs"
	LanguagesDir   = "Languages"
	DefInjectedDir = "DefInjected"
	KeyedDir       = "Keyed"
)

// LanguageSubdir returns the path of one language subtree, e.g.
// <mod>/Languages/ChineseSimplified/DefInjected.
func LanguageSubdir(modDir, language, subdir string) string {
	return filepath.Join(modDir, LanguagesDir, language, subdir)
}

// parsedFile pairs a parsed document with its path relative to the scan
// root. Failed files are dropped after logging.
type parsedFile[T any] struct {
	relPath string
	doc     T
}

// listXMLFiles walks root and returns all .xml files under it. A missing
// root is not an error: extraction treats it as zero records.
func listXMLFiles(root string) ([]string, bool) {
	if _, err := os.Stat(root); err != nil {
		log.Warn().Str("dir", root).Msg("Directory does not exist, nothing to scan")
		return nil, false
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("dir", root).Msg("Directory walk failed")
		return nil, false
	}
	return files, true
}

// parseAll parses every file through a worker pool, logging and skipping
// files that fail to parse. Each file's traversal state is its own, so
// parse order does not matter.
func parseAll[T any](ctx context.Context, root string, files []string, workers int, parse func(path string) (T, error)) []parsedFile[T] {
	pool := worker.NewPool(workers, func(_ context.Context, path string) (T, error) {
		return parse(path)
	})
	results := pool.Execute(ctx, files)

	parsed := make([]parsedFile[T], 0, len(files))
	for _, res := range results {
		if res.Err != nil {
			log.Error().Err(res.Err).Str("file", res.Input).Msg("Parse failed, skipping file")
			continue
		}
		rel, err := filepath.Rel(root, res.Input)
		if err != nil {
			rel = filepath.Base(res.Input)
		}
		parsed = append(parsed, parsedFile[T]{relPath: filepath.ToSlash(rel), doc: res.Result})
	}
	return parsed
}

// parseLanguageFiles is parseAll specialized for language data files.
func parseLanguageFiles(ctx context.Context, root string, workers int) []parsedFile[[]langxml.Entry] {
	files, ok := listXMLFiles(root)
	if !ok {
		return nil
	}
	return parseAll(ctx, root, files, workers, func(path string) ([]langxml.Entry, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return langxml.ParseLanguageData(data)
	})
}
