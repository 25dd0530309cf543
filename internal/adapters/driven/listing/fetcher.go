package listing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
	"github.com/lettersmith/lettersmith-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ListingFetcher = (*Fetcher)(nil)

// Rules maps a listing field (title, company, location, description) to
// an ordered list of candidate selectors. The first selector that matches
// an element with non-empty text wins. Supported selector forms: "tag",
// ".class", "#id", "tag.class", "tag#id".
type Rules map[string][]string

// DefaultRules covers common job-board markup.
func DefaultRules() Rules {
	return Rules{
		"title":       {"h1", ".job-title", ".posting-headline", "title"},
		"company":     {".company-name", ".employer", ".posting-company"},
		"location":    {".location", ".job-location", ".posting-location"},
		"description": {".job-description", ".description", "#job-description", "article", "main", "body"},
	}
}

// Fetcher retrieves a job-listing page over HTTP and extracts fields with
// a data-driven selector table.
type Fetcher struct {
	client *http.Client
	rules  Rules
}

// NewFetcher creates a listing fetcher. Nil or empty rules fall back to
// DefaultRules.
func NewFetcher(rules Rules, timeout time.Duration) *Fetcher {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		rules:  rules,
	}
}

// Fetch downloads the listing page and extracts its fields. Unreachable
// pages and non-success statuses surface as domain.ErrListingUnreachable.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*domain.Listing, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", "lettersmith/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrListingUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrListingUnreachable, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse page: %v", domain.ErrListingUnreachable, err)
	}

	return &domain.Listing{
		Title:       f.extract(doc, "title"),
		Company:     f.extract(doc, "company"),
		Location:    f.extract(doc, "location"),
		Description: f.extract(doc, "description"),
	}, nil
}

// extract tries the field's selectors in order and returns the first
// non-empty text match.
func (f *Fetcher) extract(doc *html.Node, field string) string {
	for _, sel := range f.rules[field] {
		node := findFirst(doc, parseSelector(sel))
		if node == nil {
			continue
		}
		if text := collapseText(node); text != "" {
			return text
		}
	}
	return ""
}

type selector struct {
	tag   string
	class string
	id    string
}

func parseSelector(s string) selector {
	var sel selector
	rest := s
	if i := strings.IndexAny(rest, ".#"); i >= 0 {
		sel.tag = rest[:i]
		marker := rest[i]
		value := rest[i+1:]
		if marker == '.' {
			sel.class = value
		} else {
			sel.id = value
		}
	} else {
		sel.tag = rest
	}
	return sel
}

func (sel selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if sel.tag != "" && n.Data != sel.tag {
		return false
	}
	if sel.id != "" && attr(n, "id") != sel.id {
		return false
	}
	if sel.class != "" && !hasClass(n, sel.class) {
		return false
	}
	return true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// findFirst walks the tree depth-first and returns the first node the
// selector matches.
func findFirst(n *html.Node, sel selector) *html.Node {
	if sel.matches(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, sel); found != nil {
			return found
		}
	}
	return nil
}

// collapseText gathers the node's text content with whitespace runs
// collapsed to single spaces. Script and style bodies are skipped.
func collapseText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
