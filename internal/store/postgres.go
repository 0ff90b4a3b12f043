package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valpere/humantone/internal"
)

// Postgres backs the store with a shared PostgreSQL database. Embeddings are
// stored as BYTEA and ranked in process, the same as the SQLite backend, so
// no vector extension is required.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to configure postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS human_content (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			source TEXT NOT NULL,
			content_type TEXT NOT NULL,
			topic TEXT NOT NULL DEFAULT '',
			tone TEXT NOT NULL DEFAULT '',
			embedding BYTEA,
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS ai_phrases (
			id TEXT PRIMARY KEY,
			phrase TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT 'general',
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS run_history (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			input_chars INTEGER NOT NULL,
			output_chars INTEGER NOT NULL,
			quality_score DOUBLE PRECISION NOT NULL,
			iterations INTEGER NOT NULL,
			processing_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_content_type ON human_content(content_type)`,
		`CREATE INDEX IF NOT EXISTS idx_phrases_category ON ai_phrases(category)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON run_history(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) SaveContent(ctx context.Context, item ContentItem) (string, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO human_content (id, content, source, content_type, topic, tone, embedding, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, normalizeText(item.Content), item.Source, item.ContentType, item.Topic, item.Tone, encodeEmbedding(item.Embedding), item.CreatedAt)
	return item.ID, err
}

func (p *Postgres) SimilarContent(ctx context.Context, embedding []float32, contentType string, limit int) ([]internal.Reference, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT content, source, content_type, topic, embedding FROM human_content WHERE embedding IS NOT NULL AND content_type = $1`,
		contentType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []internal.Reference
	for rows.Next() {
		var ref internal.Reference
		var blob []byte
		if err := rows.Scan(&ref.Content, &ref.Source, &ref.ContentType, &ref.Topic, &blob); err != nil {
			return nil, err
		}
		vec := decodeEmbedding(blob)
		if len(vec) == 0 {
			continue
		}
		ref.Similarity = cosineSimilarity(embedding, vec)
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topSimilar(refs, limit), nil
}

func (p *Postgres) ContentByType(ctx context.Context, contentType string, limit int) ([]internal.Reference, error) {
	query := `SELECT content, source, content_type, topic FROM human_content WHERE content_type = $1 ORDER BY created_at DESC`
	args := []any{contentType}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []internal.Reference
	for rows.Next() {
		var ref internal.Reference
		if err := rows.Scan(&ref.Content, &ref.Source, &ref.ContentType, &ref.Topic); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (p *Postgres) ListContent(ctx context.Context, contentType string, limit int) ([]ContentItem, error) {
	query := `SELECT id, content, source, content_type, topic, tone, created_at FROM human_content ORDER BY created_at DESC`
	args := []any{}
	if contentType != "" {
		query = `SELECT id, content, source, content_type, topic, tone, created_at FROM human_content WHERE content_type = $1 ORDER BY created_at DESC`
		args = append(args, contentType)
	}
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ContentItem
	for rows.Next() {
		var item ContentItem
		if err := rows.Scan(&item.ID, &item.Content, &item.Source, &item.ContentType, &item.Topic, &item.Tone, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (p *Postgres) DeleteContent(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM human_content WHERE id = $1`, id)
	return err
}

func (p *Postgres) ClearContent(ctx context.Context, contentType string) (int64, error) {
	if contentType == "" {
		tag, err := p.pool.Exec(ctx, `DELETE FROM human_content`)
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM human_content WHERE content_type = $1`, contentType)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) AddPhrase(ctx context.Context, phrase, category string) error {
	phrase = normalizeText(phrase)
	if phrase == "" {
		return fmt.Errorf("phrase is empty")
	}
	if category == "" {
		category = "general"
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO ai_phrases (id, phrase, category) VALUES ($1, $2, $3) ON CONFLICT (phrase) DO NOTHING`,
		uuid.NewString(), phrase, category)
	return err
}

func (p *Postgres) ListPhrases(ctx context.Context, category string) ([]PhraseEntry, error) {
	query := `SELECT id, phrase, category, created_at FROM ai_phrases ORDER BY phrase`
	args := []any{}
	if category != "" {
		query = `SELECT id, phrase, category, created_at FROM ai_phrases WHERE category = $1 ORDER BY phrase`
		args = append(args, category)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PhraseEntry
	for rows.Next() {
		var e PhraseEntry
		if err := rows.Scan(&e.ID, &e.Phrase, &e.Category, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *Postgres) DeletePhrase(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM ai_phrases WHERE id = $1`, id)
	return err
}

func (p *Postgres) SaveRun(ctx context.Context, rec internal.RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO run_history (id, mode, input_chars, output_chars, quality_score, iterations, processing_ms, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Mode, rec.InputChars, rec.OutputChars, rec.QualityScore, rec.Iterations, rec.ProcessingMS, rec.CreatedAt)
	return err
}

func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]internal.RunRecord, error) {
	query := `SELECT id, mode, input_chars, output_chars, quality_score, iterations, processing_ms, created_at FROM run_history ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []internal.RunRecord
	for rows.Next() {
		var rec internal.RunRecord
		if err := rows.Scan(&rec.ID, &rec.Mode, &rec.InputChars, &rec.OutputChars, &rec.QualityScore, &rec.Iterations, &rec.ProcessingMS, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (p *Postgres) ClearRuns(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM run_history`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByType: make(map[string]int)}

	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM human_content`).Scan(&stats.TotalContent); err != nil {
		return nil, err
	}
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ai_phrases`).Scan(&stats.TotalPhrases); err != nil {
		return nil, err
	}
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM run_history`).Scan(&stats.TotalRuns); err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, `SELECT content_type, COUNT(*) FROM human_content GROUP BY content_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var contentType string
		var count int
		if err := rows.Scan(&contentType, &count); err != nil {
			return nil, err
		}
		stats.ByType[contentType] = count
	}
	return stats, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
