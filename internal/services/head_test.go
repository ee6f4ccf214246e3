package services

import (
	"net/url"
	"strings"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse URL %q: %v", raw, err)
	}
	return u
}

func TestParseHead(t *testing.T) {
	t.Run("TitleDescriptionAndIcons", func(t *testing.T) {
		page := `<html><head>
			<title>  Example Domain  </title>
			<meta name="description" content="An example page">
			<link rel="icon" type="image/png" sizes="32x32" href="/icon32.png">
			<link rel="apple-touch-icon" href="/touch.png">
		</head><body><p>never read</p></body></html>`

		doc, err := parseHead(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse head: %v", err)
		}

		if doc.Title != "Example Domain" {
			t.Errorf("title = %q", doc.Title)
		}
		if doc.Description != "An example page" {
			t.Errorf("description = %q", doc.Description)
		}
		if len(doc.Icons) != 2 {
			t.Fatalf("expected 2 icon candidates, got %d", len(doc.Icons))
		}
	})

	t.Run("StopsAtHeadClose", func(t *testing.T) {
		// A reader that fails if the body section is ever pulled would be stronger, but the
		// tokenizer's buffering makes the boundary fuzzy; check the parse result instead.
		page := `<head><title>T</title></head><body><link rel="icon" href="/late.png"></body>`

		doc, err := parseHead(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse head: %v", err)
		}
		if len(doc.Icons) != 0 {
			t.Errorf("icons after </head> must be ignored, got %d", len(doc.Icons))
		}
	})

	t.Run("ImplicitHeadEnd", func(t *testing.T) {
		page := `<html><head><title>T</title><body><p>no explicit close</p>`

		doc, err := parseHead(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse head: %v", err)
		}
		if doc.Title != "T" {
			t.Errorf("title = %q", doc.Title)
		}
	})

	t.Run("CaseInsensitiveTags", func(t *testing.T) {
		page := `<HEAD><TITLE>Shouty</TITLE><LINK REL="icon" HREF="/i.ico"></HEAD>`

		doc, err := parseHead(strings.NewReader(page))
		if err != nil {
			t.Fatalf("failed to parse head: %v", err)
		}
		if doc.Title != "Shouty" {
			t.Errorf("title = %q", doc.Title)
		}
		if len(doc.Icons) != 1 {
			t.Errorf("expected 1 icon, got %d", len(doc.Icons))
		}
	})
}

func TestSelectFavicon(t *testing.T) {
	pageURL := func(t *testing.T) *url.URL { return mustParseURL(t, "https://example.com/articles/post") }

	t.Run("PNGBeatsAppleTouchIcon", func(t *testing.T) {
		doc := &headDocument{
			Icons: []iconCandidate{
				{Rel: "apple-touch-icon", Href: "/touch.png"},
				{Rel: "icon", Href: "/icon32.png", Type: "image/png", Sizes: "32x32"},
			},
		}

		got := selectFavicon(doc, pageURL(t))
		if got != "https://example.com/icon32.png" {
			t.Errorf("selected %q, want the 32x32 PNG", got)
		}
	})

	t.Run("RelPriorityBreaksTies", func(t *testing.T) {
		doc := &headDocument{
			Icons: []iconCandidate{
				{Rel: "mask-icon", Href: "/mask.svg", Type: "image/png"},
				{Rel: "icon", Href: "/main.png", Type: "image/png"},
			},
		}

		got := selectFavicon(doc, pageURL(t))
		if got != "https://example.com/main.png" {
			t.Errorf("selected %q, want rel=icon to win the tie", got)
		}
	})

	t.Run("SizeHintOrdering", func(t *testing.T) {
		doc := &headDocument{
			Icons: []iconCandidate{
				{Rel: "icon", Href: "/a.png", Type: "image/png", Sizes: "16x16"},
				{Rel: "icon", Href: "/b.png", Type: "image/png", Sizes: "any"},
				{Rel: "icon", Href: "/c.png", Type: "image/png", Sizes: "32x32"},
			},
		}

		got := selectFavicon(doc, pageURL(t))
		if got != "https://example.com/c.png" {
			t.Errorf("selected %q, want exact 32x32", got)
		}
	})

	t.Run("RelativeHrefResolvedAgainstPage", func(t *testing.T) {
		doc := &headDocument{
			Icons: []iconCandidate{{Rel: "icon", Href: "icons/fav.ico"}},
		}

		got := selectFavicon(doc, pageURL(t))
		if got != "https://example.com/articles/icons/fav.ico" {
			t.Errorf("selected %q", got)
		}
	})

	t.Run("BaseHrefOverride", func(t *testing.T) {
		doc := &headDocument{
			BaseHref: "https://cdn.example.net/assets/",
			Icons:    []iconCandidate{{Rel: "icon", Href: "fav.png"}},
		}

		got := selectFavicon(doc, pageURL(t))
		if got != "https://cdn.example.net/assets/fav.png" {
			t.Errorf("selected %q", got)
		}
	})

	t.Run("FallbackFaviconIco", func(t *testing.T) {
		got := selectFavicon(&headDocument{}, pageURL(t))
		if got != "https://example.com/favicon.ico" {
			t.Errorf("selected %q, want /favicon.ico fallback", got)
		}
	})

	t.Run("UnresolvableCandidatesSkipped", func(t *testing.T) {
		doc := &headDocument{
			Icons: []iconCandidate{{Rel: "icon", Href: "data:image/png;base64,AAAA"}},
		}

		got := selectFavicon(doc, pageURL(t))
		if got != "https://example.com/favicon.ico" {
			t.Errorf("selected %q, want fallback when only non-http candidates exist", got)
		}
	})
}
