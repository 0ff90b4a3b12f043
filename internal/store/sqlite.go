package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/valpere/humantone/internal"
)

// SQLite is the embedded default backend. Similarity ranking happens in
// process after decoding the stored vectors, which is fast enough for
// corpora in the tens of thousands of passages.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS human_content (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		source TEXT NOT NULL,
		content_type TEXT NOT NULL,
		topic TEXT NOT NULL DEFAULT '',
		tone TEXT NOT NULL DEFAULT '',
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS ai_phrases (
		id TEXT PRIMARY KEY,
		phrase TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL DEFAULT 'general',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS run_history (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		input_chars INTEGER NOT NULL,
		output_chars INTEGER NOT NULL,
		quality_score REAL NOT NULL,
		iterations INTEGER NOT NULL,
		processing_ms INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_content_type ON human_content(content_type);
	CREATE INDEX IF NOT EXISTS idx_phrases_category ON ai_phrases(category);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON run_history(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveContent inserts a corpus passage and returns its ID, generating one
// when the item has none.
func (s *SQLite) SaveContent(ctx context.Context, item ContentItem) (string, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO human_content (id, content, source, content_type, topic, tone, embedding, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, normalizeText(item.Content), item.Source, item.ContentType, item.Topic, item.Tone, encodeEmbedding(item.Embedding), item.CreatedAt)
	return item.ID, err
}

// SimilarContent ranks stored passages of the given content type by cosine
// similarity against embedding and returns the top limit matches.
func (s *SQLite) SimilarContent(ctx context.Context, embedding []float32, contentType string, limit int) ([]internal.Reference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content, source, content_type, topic, embedding FROM human_content WHERE embedding IS NOT NULL AND content_type = ?`,
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

// ContentByType returns the most recently added passages of a content type.
func (s *SQLite) ContentByType(ctx context.Context, contentType string, limit int) ([]internal.Reference, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT content, source, content_type, topic FROM human_content WHERE content_type = ? ORDER BY created_at DESC LIMIT ?`,
		contentType, limit)
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

// ListContent returns corpus passages, newest first, without embeddings.
// An empty contentType lists all types.
func (s *SQLite) ListContent(ctx context.Context, contentType string, limit int) ([]ContentItem, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT id, content, source, content_type, topic, tone, created_at FROM human_content ORDER BY created_at DESC LIMIT ?`
	args := []any{limit}
	if contentType != "" {
		query = `SELECT id, content, source, content_type, topic, tone, created_at FROM human_content WHERE content_type = ? ORDER BY created_at DESC LIMIT ?`
		args = []any{contentType, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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

// DeleteContent permanently removes a corpus passage by ID.
func (s *SQLite) DeleteContent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM human_content WHERE id = ?`, id)
	return err
}

// ClearContent removes corpus passages, all of them or only one content type.
func (s *SQLite) ClearContent(ctx context.Context, contentType string) (int64, error) {
	var res sql.Result
	var err error
	if contentType == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM human_content`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM human_content WHERE content_type = ?`, contentType)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// AddPhrase records a known AI phrase. Duplicates are ignored.
func (s *SQLite) AddPhrase(ctx context.Context, phrase, category string) error {
	phrase = normalizeText(phrase)
	if phrase == "" {
		return fmt.Errorf("phrase is empty")
	}
	if category == "" {
		category = "general"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO ai_phrases (id, phrase, category) VALUES (?, ?, ?)`,
		uuid.NewString(), phrase, category)
	return err
}

// ListPhrases returns lexicon entries, optionally filtered by category.
func (s *SQLite) ListPhrases(ctx context.Context, category string) ([]PhraseEntry, error) {
	query := `SELECT id, phrase, category, created_at FROM ai_phrases ORDER BY phrase`
	args := []any{}
	if category != "" {
		query = `SELECT id, phrase, category, created_at FROM ai_phrases WHERE category = ? ORDER BY phrase`
		args = []any{category}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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

// DeletePhrase permanently removes a lexicon entry by ID.
func (s *SQLite) DeletePhrase(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ai_phrases WHERE id = ?`, id)
	return err
}

// SaveRun records one finished pipeline run.
func (s *SQLite) SaveRun(ctx context.Context, rec internal.RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_history (id, mode, input_chars, output_chars, quality_score, iterations, processing_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Mode, rec.InputChars, rec.OutputChars, rec.QualityScore, rec.Iterations, rec.ProcessingMS, rec.CreatedAt)
	return err
}

// ListRuns returns run records, newest first.
func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]internal.RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, input_chars, output_chars, quality_score, iterations, processing_ms, created_at FROM run_history ORDER BY created_at DESC LIMIT ?`,
		limit)
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

// ClearRuns removes all run history.
func (s *SQLite) ClearRuns(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM run_history`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats returns summary counts for the store.
func (s *SQLite) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByType: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM human_content`).Scan(&stats.TotalContent); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ai_phrases`).Scan(&stats.TotalPhrases); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_history`).Scan(&stats.TotalRuns); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT content_type, COUNT(*) FROM human_content GROUP BY content_type`)
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

func (s *SQLite) Close() error {
	return s.db.Close()
}
