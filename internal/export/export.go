// Package export serializes translation records back into the tree
// file format, grouped by one of several directory strategies.
package export

import (
	"fmt"
	"path/filepath"
	"sort"

	"mod-translator/internal/extract"
	"mod-translator/internal/langxml"
	"mod-translator/internal/record"

	"github.com/rs/zerolog/log"
)

// Strategy selects how defs records are grouped into files.
type Strategy string

const (
	// ByUnitType groups records under <Type>Defs/<Type>Defs.xml.
	ByUnitType Strategy = "unit-type"
	// ByOriginalPath writes one file per original source file, keeping
	// record keys verbatim.
	ByOriginalPath Strategy = "original-path"
	// ByFilePath mirrors the original source file layout with keys
	// stripped of their unit-type prefix.
	ByFilePath Strategy = "file-path"
)

// Exporter writes record sets into a language subtree. Records are read
// only; an exporter never mutates them.
type Exporter struct {
	OutputDir string
	Language  string
}

// ExportDefInjected writes defs records using the given strategy.
func (e *Exporter) ExportDefInjected(records []record.Record, strategy Strategy) error {
	root := extract.LanguageSubdir(e.OutputDir, e.Language, extract.DefInjectedDir)

	switch strategy {
	case ByUnitType:
		return e.writeGroups(root, groupBy(records, func(r record.Record) string {
			unit := r.UnitType
			if unit == "" {
				unit = "Unknown"
			}
			return filepath.Join(unit+"Defs", unit+"Defs.xml")
		}), true)
	case ByOriginalPath:
		return e.writeGroups(root, groupBy(records, func(r record.Record) string {
			return filepath.FromSlash(r.SourcePath)
		}), false)
	case ByFilePath:
		return e.writeGroups(root, groupBy(records, func(r record.Record) string {
			return filepath.FromSlash(r.SourcePath)
		}), true)
	default:
		return fmt.Errorf("unknown export strategy %q", strategy)
	}
}

// ExportKeyed writes flat-keyed records, one file per original source
// file. Only the filename is preserved; groups whose sources share a
// filename are merged into one file.
func (e *Exporter) ExportKeyed(records []record.Record) error {
	root := extract.LanguageSubdir(e.OutputDir, e.Language, extract.KeyedDir)
	return e.writeGroups(root, groupBy(records, func(r record.Record) string {
		name := filepath.Base(filepath.FromSlash(r.SourcePath))
		if name == "." || name == "" {
			name = "Keyed.xml"
		}
		return name
	}), false)
}

func groupBy(records []record.Record, path func(record.Record) string) map[string][]record.Record {
	groups := make(map[string][]record.Record)
	for _, r := range records {
		p := path(r)
		groups[p] = append(groups[p], r)
	}
	return groups
}

// writeGroups renders each group into one file, keys sorted for
// deterministic output. With stripPrefix set, unit-type prefixes are
// removed from element tags.
func (e *Exporter) writeGroups(root string, groups map[string][]record.Record, stripPrefix bool) error {
	for relPath, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].Key < group[j].Key })

		b := langxml.NewBuilder()
		for _, r := range group {
			sourceText := r.SourceText
			if sourceText == "" {
				sourceText = r.Text
			}
			if r.History != "" {
				b.Comment(langxml.HistoryMarker + " " + r.History)
			}
			b.Comment(langxml.SourceMarker + " " + sourceText)

			tag := r.Key
			if stripPrefix {
				tag = record.StripUnitType(tag)
			}
			b.Element(tag, r.Text)
		}

		outPath := filepath.Join(root, relPath)
		if err := b.WriteFile(outPath); err != nil {
			return fmt.Errorf("export %s: %w", relPath, err)
		}
		log.Info().Str("file", outPath).Int("records", len(group)).Msg("Exported language data")
	}
	return nil
}
