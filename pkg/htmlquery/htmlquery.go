// Package htmlquery offers the small set of declarative lookups the
// extractors need on fetched markup: meta tags, JSON-LD blocks, inline
// scripts and attribute values.
package htmlquery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is parsed HTML plus the raw text it came from
type Document struct {
	doc *goquery.Document
	raw string
}

// Parse parses raw HTML. Malformed markup is tolerated the way browsers do.
func Parse(raw string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Document{doc: doc, raw: raw}, nil
}

// Raw returns the unparsed markup
func (d *Document) Raw() string {
	return d.raw
}

// Meta returns the content of the first meta tag whose property or name
// matches one of keys, trying keys in order.
func (d *Document) Meta(keys ...string) string {
	for _, key := range keys {
		for _, attr := range []string{"property", "name", "itemprop"} {
			sel := fmt.Sprintf(`meta[%s=%q]`, attr, key)
			if content, ok := d.doc.Find(sel).First().Attr("content"); ok {
				if content = strings.TrimSpace(content); content != "" {
					return content
				}
			}
		}
	}
	return ""
}

// Title returns the text of the <title> element
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// JSONLD returns every decodable object in application/ld+json script
// blocks. Top-level arrays and @graph containers are flattened.
func (d *Document) JSONLD() []map[string]interface{} {
	var objects []map[string]interface{}

	d.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return
		}
		objects = append(objects, flattenLD(v)...)
	})

	return objects
}

func flattenLD(v interface{}) []map[string]interface{} {
	switch t := v.(type) {
	case []interface{}:
		var out []map[string]interface{}
		for _, item := range t {
			out = append(out, flattenLD(item)...)
		}
		return out
	case map[string]interface{}:
		out := []map[string]interface{}{t}
		if graph, ok := t["@graph"]; ok {
			out = append(out, flattenLD(graph)...)
		}
		return out
	default:
		return nil
	}
}

// Script is an inline script block
type Script struct {
	Type string
	ID   string
	Text string
}

// Scripts returns the inline (non-src) script blocks in document order
func (d *Document) Scripts() []Script {
	var scripts []Script
	d.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		typ, _ := s.Attr("type")
		id, _ := s.Attr("id")
		scripts = append(scripts, Script{Type: typ, ID: id, Text: s.Text()})
	})
	return scripts
}

// Attrs returns the values of attr on every element matching selector
func (d *Document) Attrs(selector, attr string) []string {
	var values []string
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok && v != "" {
			values = append(values, v)
		}
	})
	return values
}

// Attr returns the first value of attr on elements matching selector
func (d *Document) Attr(selector, attr string) string {
	if values := d.Attrs(selector, attr); len(values) > 0 {
		return values[0]
	}
	return ""
}

// Unquote decodes the body of a JSON string literal found in raw markup,
// such as `https:\/\/cdn\/v.mp4?a=1\u0026b=2`.
func Unquote(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return strings.NewReplacer(`\u0026`, "&", `\/`, "/").Replace(s)
	}
	return out
}
