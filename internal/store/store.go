// Package store persists the human writing corpus, the AI phrase lexicon,
// and run history. Two backends implement the same interface: an embedded
// SQLite database (the default) and PostgreSQL for shared deployments.
package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/valpere/humantone/internal"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ContentItem is one passage of the human writing corpus.
type ContentItem struct {
	ID          string
	Content     string
	Source      string
	ContentType string
	Topic       string
	Tone        string
	Embedding   []float32
	CreatedAt   time.Time
}

// PhraseEntry is one lexicon entry of known AI phrasing.
type PhraseEntry struct {
	ID        string
	Phrase    string
	Category  string
	CreatedAt time.Time
}

// Stats summarises what the store holds.
type Stats struct {
	TotalContent int
	ByType       map[string]int
	TotalPhrases int
	TotalRuns    int
}

// Store is implemented by both database backends. A limit of zero or less
// means no limit on the list operations.
type Store interface {
	SaveContent(ctx context.Context, item ContentItem) (string, error)
	SimilarContent(ctx context.Context, embedding []float32, contentType string, limit int) ([]internal.Reference, error)
	ContentByType(ctx context.Context, contentType string, limit int) ([]internal.Reference, error)
	ListContent(ctx context.Context, contentType string, limit int) ([]ContentItem, error)
	DeleteContent(ctx context.Context, id string) error
	ClearContent(ctx context.Context, contentType string) (int64, error)

	AddPhrase(ctx context.Context, phrase, category string) error
	ListPhrases(ctx context.Context, category string) ([]PhraseEntry, error)
	DeletePhrase(ctx context.Context, id string) error

	SaveRun(ctx context.Context, rec internal.RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]internal.RunRecord, error)
	ClearRuns(ctx context.Context) (int64, error)

	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// Open connects to the backend named by driver. An empty driver selects
// SQLite, with dsn interpreted as the database file path.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLite(dsn)
	case DriverPostgres:
		return NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// normalizeText trims whitespace and applies Unicode NFC normalization so
// duplicate passages compare equal regardless of encoding form.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// encodeEmbedding packs a vector into a little-endian byte blob. An empty
// vector encodes to nil so the column stays NULL.
func encodeEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil
	}
	return buf.Bytes()
}

// decodeEmbedding unpacks a blob written by encodeEmbedding. Corrupt or
// empty blobs decode to nil.
func decodeEmbedding(raw []byte) []float32 {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(raw)/4)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &vec); err != nil {
		return nil
	}
	return vec
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// topSimilar sorts refs by similarity descending and truncates to limit.
func topSimilar(refs []internal.Reference, limit int) []internal.Reference {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Similarity > refs[j].Similarity })
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs
}
