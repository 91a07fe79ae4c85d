package extractor

import (
	"context"
	"regexp"
	"sync"

	"vidscraper/pkg/htmlquery"
)

// Target is the resource one scrape call works on
type Target struct {
	// URL is the normalized source URL
	URL string
	// ID is the platform identifier derived from URL (shortcode, video id)
	ID string
}

// Strategy is one way of obtaining metadata for a target
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, a *Attempt) Outcome
}

// Page is fetched markup handed to a Technique
type Page struct {
	Target Target
	// Source names the representation, e.g. "desktop" or "mobile"
	Source string
	Doc    *htmlquery.Document
}

// Technique extracts metadata from markup alone. Techniques do no I/O,
// so they can be tested on fixture HTML.
type Technique interface {
	Name() string
	Apply(p *Page) Outcome
}

// PageLoader fetches and parses one representation of the target
type PageLoader func(ctx context.Context, t Target) (*htmlquery.Document, error)

// Attempt is the state of one pass over the strategy chain. Pages are
// loaded at most once per attempt and shared between strategies.
type Attempt struct {
	Target Target

	mu    sync.Mutex
	pages map[string]pageResult
}

type pageResult struct {
	doc *htmlquery.Document
	err error
}

// NewAttempt starts a fresh pass for t
func NewAttempt(t Target) *Attempt {
	return &Attempt{Target: t, pages: make(map[string]pageResult)}
}

// Page returns the document for source, loading it on first use. A load
// error is remembered too, so a failing page is not requested twice.
func (a *Attempt) Page(ctx context.Context, source string, load PageLoader) (*htmlquery.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r, ok := a.pages[source]; ok {
		return r.doc, r.err
	}

	doc, err := load(ctx, a.Target)
	a.pages[source] = pageResult{doc: doc, err: err}
	return doc, err
}

// Loaded returns the document for source if it was already fetched
func (a *Attempt) Loaded(source string) *htmlquery.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pages[source].doc
}

// PageStrategy applies a Technique to a page shared through the Attempt
type PageStrategy struct {
	Technique Technique
	Source    string
	Load      PageLoader
}

func (s PageStrategy) Name() string {
	return s.Technique.Name()
}

func (s PageStrategy) Attempt(ctx context.Context, a *Attempt) Outcome {
	doc, err := a.Page(ctx, s.Source, s.Load)
	if err != nil {
		return Failed(err)
	}
	return s.Technique.Apply(&Page{Target: a.Target, Source: s.Source, Doc: doc})
}

// Identify returns the first capture group of the first pattern matching
// rawURL. Patterns are tried in order.
func Identify(rawURL string, patterns []*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(rawURL); len(m) > 1 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}
