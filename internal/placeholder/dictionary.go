package placeholder

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Term is one vocabulary entry: a source-language word the MT backend
// must not rewrite, with its configured translation candidates.
type Term struct {
	English string `yaml:"english"`
	Chinese string `yaml:"chinese"`
	// Priority selects among multiple |-separated candidates:
	// high takes the first, low the last, anything else the middle.
	Priority string `yaml:"priority"`
}

// Translation picks the configured translation deterministically by
// priority tier.
func (t Term) Translation() string {
	if !strings.Contains(t.Chinese, "|") {
		return t.Chinese
	}
	parts := strings.Split(t.Chinese, "|")
	candidates := make([]string, 0, len(parts))
	for _, p := range parts {
		candidates = append(candidates, strings.TrimSpace(p))
	}
	switch t.Priority {
	case "high":
		return candidates[0]
	case "low":
		return candidates[len(candidates)-1]
	default:
		return candidates[len(candidates)/2]
	}
}

// Dictionary is the closed vocabulary of sensitive terms.
type Dictionary struct {
	terms []Term
}

// dictFile mirrors the on-disk YAML layout: categories each holding an
// entries list.
type dictFile map[string]struct {
	Entries []Term `yaml:"entries"`
}

// LoadDictionary reads a vocabulary file. A missing file is not an
// error: protection simply runs with an empty vocabulary.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Warn().Str("path", path).Msg("Dictionary file not found, vocabulary protection disabled")
		return &Dictionary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}

	var f dictFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}

	d := &Dictionary{}
	for _, category := range f {
		for _, t := range category.Entries {
			if t.English == "" {
				continue
			}
			d.terms = append(d.terms, t)
		}
	}

	log.Info().Str("path", path).Int("terms", len(d.terms)).Msg("Loaded vocabulary dictionary")
	return d, nil
}

// SaveDictionary writes terms back out in the on-disk YAML layout,
// under a single "glossary" category.
func SaveDictionary(path string, d *Dictionary) error {
	f := dictFile{
		"glossary": {Entries: d.terms},
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal dictionary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write dictionary: %w", err)
	}
	return nil
}

// NewDictionary builds a dictionary from terms directly (tests, or a
// terminology store instead of a file).
func NewDictionary(terms []Term) *Dictionary {
	return &Dictionary{terms: terms}
}

// Terms returns the vocabulary entries.
func (d *Dictionary) Terms() []Term {
	return d.terms
}

// byLength returns terms longest-first so a short term can never split
// a longer one containing it.
func (d *Dictionary) byLength() []Term {
	sorted := make([]Term, len(d.terms))
	copy(sorted, d.terms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].English) > len(sorted[j].English)
	})
	return sorted
}
