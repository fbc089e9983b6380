// Package terms keeps the project glossary in a Neo4j graph: terms as
// nodes, linked to the translation units whose text uses them.
package terms

import (
	"context"
	"fmt"
	"strings"

	"mod-translator/internal/placeholder"
	"mod-translator/internal/record"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Store wraps the Neo4j driver for glossary operations.
type Store struct {
	driver neo4j.DriverWithContext
}

// NewStore connects to Neo4j and verifies the connection.
func NewStore(ctx context.Context, uri, user, password string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}
	return &Store{driver: driver}, nil
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// EnsureSchema creates constraints and indexes on the glossary graph.
func (s *Store) EnsureSchema(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Term) REQUIRE t.english IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (u:Unit) REQUIRE u.key IS UNIQUE",
	}
	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Glossary schema ensured")
	return nil
}

// SyncDictionary upserts every vocabulary term into the graph.
func (s *Store) SyncDictionary(ctx context.Context, dict *placeholder.Dictionary) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	terms := dict.Terms()
	for _, t := range terms {
		_, err := session.Run(ctx, `
			MERGE (t:Term {english: $english})
			SET t.chinese = $chinese,
			    t.priority = $priority
		`, map[string]any{
			"english":  t.English,
			"chinese":  t.Chinese,
			"priority": t.Priority,
		})
		if err != nil {
			return fmt.Errorf("upsert term %q: %w", t.English, err)
		}
	}

	log.Info().Int("terms", len(terms)).Msg("Synced glossary terms")
	return nil
}

// LinkUsages records which extracted units use which terms. Matching is
// case-insensitive on the unit's source text.
func (s *Store) LinkUsages(ctx context.Context, records []record.Record) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	linked := 0
	for _, r := range records {
		text := r.SourceText
		if text == "" {
			text = r.Text
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		_, err := session.Run(ctx, `
			MERGE (u:Unit {key: $key})
			SET u.file = $file, u.text = $text
			WITH u
			MATCH (t:Term)
			WHERE toLower($text) CONTAINS toLower(t.english)
			MERGE (u)-[:USES_TERM]->(t)
		`, map[string]any{
			"key":  r.Key,
			"file": r.SourcePath,
			"text": text,
		})
		if err != nil {
			log.Warn().Err(err).Str("key", r.Key).Msg("Failed to link unit")
			continue
		}
		linked++
	}

	log.Info().Int("units", linked).Msg("Linked term usages")
	return nil
}

// TermsFor returns the glossary terms whose English form appears in
// text, longest first so compound terms outrank their parts.
func (s *Store) TermsFor(ctx context.Context, text string) ([]placeholder.Term, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (t:Term)
		WHERE toLower($text) CONTAINS toLower(t.english)
		RETURN t.english AS english, t.chinese AS chinese, t.priority AS priority
		ORDER BY size(t.english) DESC
	`, map[string]any{"text": text})
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}

	var terms []placeholder.Term
	for result.Next(ctx) {
		rec := result.Record()
		english, _ := rec.Get("english")
		chinese, _ := rec.Get("chinese")
		priority, _ := rec.Get("priority")
		terms = append(terms, placeholder.Term{
			English:  fmt.Sprintf("%v", english),
			Chinese:  fmt.Sprintf("%v", chinese),
			Priority: fmt.Sprintf("%v", priority),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	return terms, nil
}

// UnusedTerms lists glossary terms no extracted unit references. Useful
// for pruning a dictionary that drifted from the mod's content.
func (s *Store) UnusedTerms(ctx context.Context) ([]string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (t:Term)
		WHERE NOT (:Unit)-[:USES_TERM]->(t)
		RETURN t.english AS english
		ORDER BY english
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("query unused terms: %w", err)
	}

	var names []string
	for result.Next(ctx) {
		english, _ := result.Record().Get("english")
		names = append(names, fmt.Sprintf("%v", english))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("query unused terms: %w", err)
	}
	return names, nil
}

// ExportDictionary reads the whole glossary back out of the graph.
func (s *Store) ExportDictionary(ctx context.Context) (*placeholder.Dictionary, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (t:Term)
		RETURN t.english AS english, t.chinese AS chinese, t.priority AS priority
		ORDER BY english
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("export glossary: %w", err)
	}

	var terms []placeholder.Term
	for result.Next(ctx) {
		rec := result.Record()
		english, _ := rec.Get("english")
		chinese, _ := rec.Get("chinese")
		priority, _ := rec.Get("priority")
		terms = append(terms, placeholder.Term{
			English:  fmt.Sprintf("%v", english),
			Chinese:  fmt.Sprintf("%v", chinese),
			Priority: fmt.Sprintf("%v", priority),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("export glossary: %w", err)
	}

	log.Info().Int("count", len(terms)).Msg("Exported glossary from graph")
	return placeholder.NewDictionary(terms), nil
}
