// Package record defines the translation record, the unit of work every
// scanner, merger and exporter in this tool exchanges.
package record

import (
	"fmt"
	"strings"
)

// Record is one translatable string extracted from a mod.
type Record struct {
	// Key is a dotted path uniquely identifying the value within its
	// source structure, e.g. "Gun_Revolver.label". A defs scan prefixes
	// the unit type: "ThingDef/Gun_Revolver.label".
	Key string
	// Text is the current value in the record's home language.
	Text string
	// Tag is the immediate structural field name, e.g. "label".
	Tag string
	// SourcePath is the file path the record was read from, relative to
	// its scan root.
	SourcePath string
	// SourceText is the original-language text for this key. Equals Text
	// when scanning original defs; recovered from an EN: comment when
	// scanning an already-localized tree.
	SourceText string
	// UnitType is the defining tag of the enclosing unit (e.g. "ThingDef").
	// Empty for keyed and localized-tree records.
	UnitType string
	// History describes what changed and when. Set only by the merger.
	History string
}

// StripUnitType removes a "UnitType/" prefix from a key, if present.
func StripUnitType(key string) string {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}

// TagFromKey recovers the structural field name from a key: the last
// non-numeric dot-separated segment, scanning from the end so list-index
// segments are skipped.
func TagFromKey(key string) string {
	parts := strings.Split(key, ".")
	for i := len(parts) - 1; i >= 0; i-- {
		if !isDigits(parts[i]) {
			return parts[i]
		}
	}
	return key
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Validate reports whether a record is well formed enough to merge.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return fmt.Errorf("record has empty key (tag=%q, file=%q)", r.Tag, r.SourcePath)
	}
	return nil
}
