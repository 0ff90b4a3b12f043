// Package scraper fetches a web page and extracts its main article text for
// indexing into the human writing corpus.
//
// Extraction mirrors how editorial pages are typically marked up: the main
// content container is located by a fixed selector priority, paragraphs
// shorter than a noise threshold (navigation labels, bylines, cookie
// banners) are dropped, and title and author come from the usual metadata
// spots.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	// minParagraphChars filters boilerplate snippets out of the article
	// body.
	minParagraphChars = 50

	defaultTimeout = 30 * time.Second

	// userAgent avoids the bot blocking that a default Go client hits.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Page is the extracted content of one scraped URL.
type Page struct {
	URL       string
	Title     string
	Author    string
	Content   string
	WordCount int
}

type Scraper struct {
	client *http.Client
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Scraper{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads url and extracts its article content. An empty article
// body (no paragraph cleared the noise threshold) is an error: there is
// nothing worth indexing.
func (s *Scraper) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching URL: status %d", resp.StatusCode)
	}

	page, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error scraping URL: %w", err)
	}
	page.URL = url
	return page, nil
}

// Parse extracts a Page from an HTML document.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	main := findMainContent(doc)
	if main == nil {
		main = findElement(doc, "body")
	}

	var paragraphs []string
	if main != nil {
		walk(main, func(n *html.Node) {
			if n.Type == html.ElementNode && n.Data == "p" {
				text := collapseSpace(textContent(n))
				if len(text) > minParagraphChars {
					paragraphs = append(paragraphs, text)
				}
			}
		})
	}
	content := strings.Join(paragraphs, "\n\n")
	if content == "" {
		return nil, fmt.Errorf("no article content found")
	}

	return &Page{
		Title:     extractTitle(doc),
		Author:    extractAuthor(doc),
		Content:   content,
		WordCount: len(strings.Fields(content)),
	}, nil
}

// contentMatchers, in priority order, mirror where editorial sites put the
// article body.
var contentMatchers = []func(*html.Node) bool{
	func(n *html.Node) bool { return n.Data == "article" },
	func(n *html.Node) bool { return attr(n, "role") == "main" },
	func(n *html.Node) bool { return n.Data == "main" },
	func(n *html.Node) bool { return hasClass(n, "article-content") },
	func(n *html.Node) bool { return hasClass(n, "post-content") },
	func(n *html.Node) bool { return hasClass(n, "entry-content") },
	func(n *html.Node) bool { return attr(n, "id") == "content" },
}

func findMainContent(doc *html.Node) *html.Node {
	for _, match := range contentMatchers {
		if n := findNode(doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && match(n)
		}); n != nil {
			return n
		}
	}
	return nil
}

func extractTitle(doc *html.Node) string {
	if h1 := findElement(doc, "h1"); h1 != nil {
		if t := collapseSpace(textContent(h1)); t != "" {
			return t
		}
	}
	if title := findElement(doc, "title"); title != nil {
		if t := collapseSpace(textContent(title)); t != "" {
			return t
		}
	}
	return "Untitled"
}

// authorMatchers cover the common byline markup variants.
var authorMatchers = []func(*html.Node) bool{
	func(n *html.Node) bool { return attr(n, "rel") == "author" },
	func(n *html.Node) bool { return hasClass(n, "author") },
	func(n *html.Node) bool { return strings.Contains(attr(n, "class"), "author") },
	func(n *html.Node) bool { _, ok := lookupAttr(n, "data-author"); return ok },
}

func extractAuthor(doc *html.Node) string {
	for _, match := range authorMatchers {
		if n := findNode(doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && match(n)
		}); n != nil {
			return collapseSpace(textContent(n))
		}
	}
	return ""
}

// --- html.Node helpers ---

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// findNode returns the first node (depth-first, document order) matching
// pred.
func findNode(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func findElement(n *html.Node, name string) *html.Node {
	return findNode(n, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name
	})
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
	})
	return sb.String()
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
