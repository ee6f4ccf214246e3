package services

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// headDocument is everything the pipeline extracts from a page's <head> section.
type headDocument struct {
	Title       string
	Description string
	BaseHref    string
	Icons       []iconCandidate
}

// iconCandidate is a <link rel> icon declaration prior to resolution and scoring.
type iconCandidate struct {
	Rel   string
	Href  string
	Type  string
	Sizes string
}

// iconRels maps recognized rel values to their priority weight, highest preferred.
var iconRels = map[string]int{
	"icon":             4,
	"shortcut icon":    3,
	"apple-touch-icon": 2,
	"mask-icon":        1,
}

// parseHead tokenizes a page stream up to the closing head tag and collects title,
// description, base href, and icon link candidates. Reading stops at </head> (or at the
// opening body tag for pages that omit it), which is what lets the caller close the
// connection without downloading the document body.
func parseHead(r io.Reader) (*headDocument, error) {
	z := html.NewTokenizer(r)
	doc := &headDocument{}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return doc, nil
			}
			return nil, fmt.Errorf("failed to tokenize head: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "body":
				// Head is over even without an explicit close tag.
				return doc, nil

			case "title":
				if doc.Title == "" && tt == html.StartTagToken {
					if z.Next() == html.TextToken {
						doc.Title = strings.TrimSpace(string(z.Text()))
					}
				}

			case "base":
				if doc.BaseHref == "" {
					if href, ok := tagAttr(z, hasAttr, "href"); ok {
						doc.BaseHref = href
					}
				}

			case "meta":
				attrs := tagAttrs(z, hasAttr)
				if strings.EqualFold(attrs["name"], "description") && doc.Description == "" {
					doc.Description = strings.TrimSpace(attrs["content"])
				}

			case "link":
				attrs := tagAttrs(z, hasAttr)
				rel := strings.ToLower(strings.Join(strings.Fields(attrs["rel"]), " "))
				if _, ok := iconRels[rel]; ok && attrs["href"] != "" {
					doc.Icons = append(doc.Icons, iconCandidate{
						Rel:   rel,
						Href:  attrs["href"],
						Type:  strings.ToLower(attrs["type"]),
						Sizes: strings.ToLower(attrs["sizes"]),
					})
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "head" {
				return doc, nil
			}
		}
	}
}

// tagAttr scans the current tag's attributes for one key.
func tagAttr(z *html.Tokenizer, hasAttr bool, want string) (string, bool) {
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) == want {
			return string(val), true
		}
	}
	return "", false
}

// tagAttrs collects all attributes of the current tag, lowercasing keys.
func tagAttrs(z *html.Tokenizer, hasAttr bool) map[string]string {
	attrs := map[string]string{}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		attrs[strings.ToLower(string(key))] = string(val)
	}
	return attrs
}

// mime type weights; PNG is the most broadly renderable, unknown types rank last.
var mimeWeights = map[string]int{
	"image/png":                3,
	"image/svg+xml":            2,
	"image/x-icon":             1,
	"image/vnd.microsoft.icon": 1,
}

// scoreIcon ranks a candidate by MIME type first, declared size hint second, and rel
// priority as the tie-break.
func scoreIcon(c iconCandidate) int {
	mime := mimeWeights[c.Type]

	size := 0
	switch {
	case c.Sizes == "32x32":
		size = 3
	case c.Sizes == "any":
		size = 2
	case c.Sizes != "":
		size = 1
	}

	return mime*100 + size*10 + iconRels[c.Rel]
}

// effectiveBase resolves the document's base URL: the page URL, overridden by <base href>
// when present and parseable.
func effectiveBase(pageURL *url.URL, baseHref string) *url.URL {
	if baseHref == "" {
		return pageURL
	}
	base, err := pageURL.Parse(baseHref)
	if err != nil {
		return pageURL
	}
	return base
}

// selectFavicon picks the highest-scoring resolvable icon candidate, falling back to
// /favicon.ico at the effective base when no link candidate resolves.
func selectFavicon(doc *headDocument, pageURL *url.URL) string {
	base := effectiveBase(pageURL, doc.BaseHref)

	best := ""
	bestScore := -1
	for _, c := range doc.Icons {
		resolved, err := base.Parse(c.Href)
		if err != nil {
			continue
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}
		if score := scoreIcon(c); score > bestScore {
			best = resolved.String()
			bestScore = score
		}
	}

	if best != "" {
		return best
	}

	fallback, err := base.Parse("/favicon.ico")
	if err != nil {
		return ""
	}
	return fallback.String()
}
