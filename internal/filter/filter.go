// Package filter decides whether a field and its text value are worth
// sending to translation.
package filter

import (
	"regexp"
	"strings"

	"mod-translator/internal/config"
	"mod-translator/internal/record"

	"github.com/rs/zerolog/log"
)

// Context tells the filter which structural shape a key came from.
type Context int

const (
	// Tree context: keys from a defs scan. The allow-list applies because
	// def fields are a fixed vocabulary.
	Tree Context = iota
	// FlatKeyed context: caller-defined tags, no allow-list restriction.
	FlatKeyed
)

// Built-in non-text checks, always applied before the configured patterns.
var builtinNonText = []*regexp.Regexp{
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^[0-9.\-+]+$`),
}

// Filter applies the allow-list, deny-list and non-text rule sets.
// It is a pure function of its inputs and the configured rules.
type Filter struct {
	allow   map[string]struct{}
	deny    map[string]struct{}
	nonText []*regexp.Regexp
}

// New builds a filter from the configured rule sets. Patterns that fail
// to compile are logged and dropped.
func New(cfg *config.Config) *Filter {
	f := &Filter{
		allow: make(map[string]struct{}, len(cfg.AllowFields)),
		deny:  make(map[string]struct{}, len(cfg.DenyFields)),
	}
	for _, field := range cfg.AllowFields {
		f.allow[strings.ToLower(field)] = struct{}{}
	}
	for _, field := range cfg.DenyFields {
		f.deny[strings.ToLower(field)] = struct{}{}
	}
	for _, p := range cfg.NonTextPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			log.Warn().Err(err).Str("pattern", p).Msg("Invalid non-text pattern, skipping")
			continue
		}
		f.nonText = append(f.nonText, re)
	}
	return f
}

// IsTranslatable reports whether the value at key should be extracted.
// Checks short-circuit in order: empty text, non-text patterns, the
// deny-list, then (tree context only) the allow-list. A nil filter
// accepts every non-empty value.
func (f *Filter) IsTranslatable(key, text string, ctx Context) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if f == nil {
		return true
	}
	if f.isNonText(text) {
		return false
	}

	tag := strings.ToLower(record.TagFromKey(key))
	if _, denied := f.deny[tag]; denied {
		return false
	}
	if ctx == Tree {
		if _, allowed := f.allow[tag]; !allowed {
			return false
		}
	}
	return true
}

// Allowed reports whether a raw tag name is in the allow-list. The defs
// scanner uses this for list items, which are gated on their parent's tag.
func (f *Filter) Allowed(tag string) bool {
	_, ok := f.allow[strings.ToLower(tag)]
	return ok
}

func (f *Filter) isNonText(text string) bool {
	for _, re := range builtinNonText {
		if re.MatchString(text) {
			return true
		}
	}
	for _, re := range f.nonText {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
