package corpus

import (
	"context"
	"fmt"

	"mod-translator/internal/textutil"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

// Store persists aligned pairs with embeddings in PostgreSQL and serves
// nearest-neighbour lookups over them.
type Store struct {
	pool  *pgxpool.Pool
	embed *EmbeddingClient
}

// NewStore creates a corpus store and ensures its schema exists.
func NewStore(ctx context.Context, pool *pgxpool.Pool, embed *EmbeddingClient, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		dimensions = 768
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS corpus_pairs (
    hash       TEXT PRIMARY KEY,
    source     TEXT NOT NULL,
    translated TEXT NOT NULL,
    file_path  TEXT NOT NULL DEFAULT '',
    embedding  vector(%d)
)`, dimensions),
		`CREATE INDEX IF NOT EXISTS corpus_pairs_embedding_idx
		 ON corpus_pairs USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("init corpus schema: %w", err)
		}
	}
	return &Store{pool: pool, embed: embed}, nil
}

// Sync upserts pairs, embedding them in batches. Pairs whose source is
// already stored keep their existing embedding and get the translation
// refreshed.
func (s *Store) Sync(ctx context.Context, pairs []Pair, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 32
	}

	pending, err := s.filterNew(ctx, pairs)
	if err != nil {
		return err
	}
	log.Info().Int("total", len(pairs)).Int("new", len(pending)).Msg("Syncing corpus pairs")

	for i := 0; i < len(pending); i += batchSize {
		end := i + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[i:end]

		texts := make([]string, len(batch))
		for j, p := range batch {
			texts[j] = p.Source
		}
		vectors, err := s.embed.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed corpus batch [%d:%d]: %w", i, end, err)
		}

		for j, p := range batch {
			if vectors[j] == nil {
				continue
			}
			_, err := s.pool.Exec(ctx, `
				INSERT INTO corpus_pairs (hash, source, translated, file_path, embedding)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (hash) DO UPDATE
				SET translated = EXCLUDED.translated, file_path = EXCLUDED.file_path`,
				textutil.Hash(p.Source), p.Source, p.Translated, p.File,
				pgvector.NewVector(vectors[j]))
			if err != nil {
				return fmt.Errorf("store corpus pair %q: %w", p.Key, err)
			}
		}

		log.Info().Int("processed", end).Int("total", len(pending)).Msg("Corpus sync progress")
	}
	return nil
}

// filterNew drops pairs whose source hash is already stored, refreshing
// their translations in place instead of re-embedding them.
func (s *Store) filterNew(ctx context.Context, pairs []Pair) ([]Pair, error) {
	var pending []Pair
	for _, p := range pairs {
		hash := textutil.Hash(p.Source)
		tag, err := s.pool.Exec(ctx, `
			UPDATE corpus_pairs SET translated = $2, file_path = $3 WHERE hash = $1`,
			hash, p.Translated, p.File)
		if err != nil {
			return nil, fmt.Errorf("refresh corpus pair %q: %w", p.Key, err)
		}
		if tag.RowsAffected() == 0 {
			pending = append(pending, p)
		}
	}
	return pending, nil
}

// Suggest returns the stored pairs most similar to text, as
// source/translation couples ordered by descending similarity.
func (s *Store) Suggest(ctx context.Context, text string, limit int) ([][2]string, error) {
	if limit <= 0 {
		limit = 3
	}

	vector, err := s.embed.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT source, translated, 1 - (embedding <=> $1) AS similarity
		FROM corpus_pairs
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("corpus search: %w", err)
	}
	defer rows.Close()

	var results [][2]string
	for rows.Next() {
		var source, translated string
		var similarity float64
		if err := rows.Scan(&source, &translated, &similarity); err != nil {
			return nil, fmt.Errorf("corpus search: %w", err)
		}
		log.Debug().Float64("similarity", similarity).Str("source", textutil.Truncate(source, 40)).
			Msg("Corpus match")
		results = append(results, [2]string{source, translated})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("corpus search: %w", err)
	}
	return results, nil
}

// Count reports how many pairs the store holds.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM corpus_pairs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count corpus pairs: %w", err)
	}
	return n, nil
}
