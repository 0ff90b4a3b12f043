// Package indexer loads human-written reference material into the corpus
// store, either from a directory of text files or from a scraped web page.
// Long documents are split into passages so similarity search returns
// focused examples rather than whole articles.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/humantone/internal"
	"github.com/valpere/humantone/internal/chunker"
	"github.com/valpere/humantone/internal/detector"
	"github.com/valpere/humantone/internal/embedder"
	"github.com/valpere/humantone/internal/markdown"
	"github.com/valpere/humantone/internal/scraper"
	"github.com/valpere/humantone/internal/store"
)

// maxConcurrentFiles bounds parallel file indexing so the embedding service
// is not hammered with the whole directory at once.
const maxConcurrentFiles = 4

type Indexer struct {
	store    store.Store
	embedder embedder.Embedder
	detector *detector.Detector
	logger   *zap.Logger

	detectOnce sync.Once
}

// New builds an indexer. The embedder may be nil, in which case passages are
// stored without vectors and retrieval falls back to type lookup.
func New(st store.Store, emb embedder.Embedder, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		store:    st,
		embedder: emb,
		logger:   logger,
	}
}

// Summary reports what a directory walk accomplished.
type Summary struct {
	Files    int
	Passages int
	Skipped  int
	Failed   int
}

// IndexDirectory indexes every .txt and .md file directly under dir.
// Individual file failures are logged and counted, not fatal; the walk
// itself failing is.
func (ix *Indexer) IndexDirectory(ctx context.Context, dir string) (*Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	var (
		mu      sync.Mutex
		summary Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		name := entry.Name()
		path := filepath.Join(dir, name)

		g.Go(func() error {
			passages, err := ix.indexFile(gctx, path, name)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				ix.logger.Warn("failed to index file",
					zap.String("file", name),
					zap.Error(err))
			case passages == 0:
				summary.Skipped++
			default:
				summary.Files++
				summary.Passages += passages
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (ix *Indexer) indexFile(ctx context.Context, path, name string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	text := strings.TrimSpace(string(raw))
	if strings.EqualFold(filepath.Ext(name), ".md") {
		text = strings.TrimSpace(markdown.ToPlainText([]byte(text)))
	}
	if text == "" {
		ix.logger.Debug("skipping empty file", zap.String("file", name))
		return 0, nil
	}

	if !ix.isEnglish(text) {
		ix.logger.Warn("file does not look like English, indexing anyway",
			zap.String("file", name))
	}

	contentType := contentTypeFromFilename(name)
	topic := topicFor(text, contentType)
	tone := toneFor(text)

	passages := chunker.Passages(text, chunker.DefaultMaxChars)
	for i, passage := range passages {
		item := store.ContentItem{
			Content:     passage,
			Source:      name,
			ContentType: contentType,
			Topic:       topic,
			Tone:        tone,
		}
		if ix.embedder != nil {
			vec, err := ix.embedder.Embed(ctx, passage)
			if err != nil {
				return 0, fmt.Errorf("failed to embed passage %d: %w", i+1, err)
			}
			item.Embedding = vec
		}
		if _, err := ix.store.SaveContent(ctx, item); err != nil {
			return 0, fmt.Errorf("failed to save passage %d: %w", i+1, err)
		}
	}

	ix.logger.Info("indexed file",
		zap.String("file", name),
		zap.String("content_type", contentType),
		zap.String("topic", topic),
		zap.String("tone", tone),
		zap.Int("passages", len(passages)))
	return len(passages), nil
}

// PageResult reports what indexing a scraped page produced.
type PageResult struct {
	WordCount int
	Filename  string
}

// IndexPage stores a scraped page in the corpus and, when contentDir is
// non-empty, writes a local copy so the file-based workflow stays in sync
// with scraped material.
func (ix *Indexer) IndexPage(ctx context.Context, page *scraper.Page, mode internal.Mode, description, contentDir string) (*PageResult, error) {
	if page == nil || strings.TrimSpace(page.Content) == "" {
		return nil, fmt.Errorf("page has no content")
	}

	fullContent := page.Content
	if title := strings.TrimSpace(page.Title); title != "" {
		fullContent = title + "\n\n" + page.Content
	}
	wordCount := len(strings.Fields(fullContent))

	base := sanitiseFilename(page.Title)
	if base == "" {
		base = sanitiseFilename(description)
	}
	prefix := "Journalist"
	if mode == internal.ModeSales {
		prefix = "Sales"
	}
	filename := fmt.Sprintf("%s-%s.txt", prefix, base)

	if contentDir != "" {
		if err := writePageFile(contentDir, filename, page, description, fullContent); err != nil {
			// The store is the source of truth; a missing local copy is
			// only worth a warning.
			ix.logger.Warn("failed to write content file",
				zap.String("file", filename),
				zap.Error(err))
		}
	}

	if !ix.isEnglish(fullContent) {
		ix.logger.Warn("scraped page does not look like English, indexing anyway",
			zap.String("url", page.URL))
	}

	item := store.ContentItem{
		Content:     fullContent,
		Source:      page.URL,
		ContentType: mode.String(),
		Topic:       description,
		Tone:        "neutral",
	}
	if ix.embedder != nil {
		vec, err := ix.embedder.Embed(ctx, fullContent)
		if err != nil {
			return nil, fmt.Errorf("failed to embed page content: %w", err)
		}
		item.Embedding = vec
	}
	if _, err := ix.store.SaveContent(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save page content: %w", err)
	}

	ix.logger.Info("indexed scraped page",
		zap.String("url", page.URL),
		zap.String("mode", mode.String()),
		zap.Int("word_count", wordCount))

	return &PageResult{WordCount: wordCount, Filename: filename}, nil
}

func writePageFile(dir, filename string, page *scraper.Page, description, fullContent string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", page.URL)
	if page.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", page.Author)
	}
	fmt.Fprintf(&b, "Description: %s\n\n", description)
	b.WriteString(fullContent)

	return os.WriteFile(filepath.Join(dir, filename), []byte(b.String()), 0o644)
}

// isEnglish lazily constructs the language detector; building lingua's
// models is slow and most invocations never need it twice.
func (ix *Indexer) isEnglish(text string) bool {
	ix.detectOnce.Do(func() {
		ix.detector = detector.New()
	})
	return ix.detector.IsEnglish(text)
}

// contentTypeFromFilename infers the corpus content type from how the file
// is named. Unrecognised names land in the general bucket, which type
// lookup ignores but similarity search still covers.
func contentTypeFromFilename(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "news"),
		strings.Contains(lower, "journalist"),
		strings.Contains(lower, "article"):
		return string(internal.ModeJournalist)
	case strings.Contains(lower, "sales"),
		strings.Contains(lower, "marketing"):
		return string(internal.ModeSales)
	case strings.Contains(lower, "blog"):
		return "blog"
	case strings.Contains(lower, "social"):
		return "social_media"
	default:
		return "general"
	}
}

// topicFor assigns a coarse topic label from keyword cues.
func topicFor(content, contentType string) string {
	lower := strings.ToLower(content)
	switch contentType {
	case string(internal.ModeJournalist):
		if strings.Contains(content, "Lancashire") {
			return "Local Government"
		}
		if strings.Contains(content, "Council") {
			return "Politics"
		}
	case string(internal.ModeSales):
		if strings.Contains(lower, "bathroom") {
			return "Home Improvement"
		}
		if strings.Contains(lower, "showroom") {
			return "Retail"
		}
	}
	return "General"
}

var (
	positiveWords = []string{"exceptional", "award winning", "exciting", "dream", "inspire", "superior"}
	neutralWords  = []string{"council", "government", "proposal", "meeting", "authority"}
	formalWords   = []string{"furthermore", "moreover", "however", "therefore"}
)

// toneFor classifies the emotional register of a passage by counting
// indicator words.
func toneFor(content string) string {
	lower := strings.ToLower(content)

	count := func(words []string) int {
		n := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				n++
			}
		}
		return n
	}

	switch {
	case count(positiveWords) > 3:
		return "positive"
	case count(formalWords) > 2 || count(neutralWords) > 5:
		return "formal"
	default:
		return "neutral"
	}
}

var (
	unsafeChars  = regexp.MustCompile(`[^\w\s-]`)
	dashCollapse = regexp.MustCompile(`[-\s]+`)
)

const maxFilenameBase = 50

// sanitiseFilename turns free text into a safe, hyphenated filename stem.
func sanitiseFilename(text string) string {
	safe := unsafeChars.ReplaceAllString(text, "")
	safe = dashCollapse.ReplaceAllString(safe, "-")
	runes := []rune(safe)
	if len(runes) > maxFilenameBase {
		safe = string(runes[:maxFilenameBase])
	}
	return strings.Trim(safe, "-")
}
