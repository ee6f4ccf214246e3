// Package parser reads Netscape bookmark export HTML and produces a flat list of tree nodes.
//
// The export format nests folders through <DT><H3> headings followed by <DL> lists. The parser
// walks the token stream once with an explicit stack of open folder scopes: a heading opens a
// scope that its following <DL> pushes, and the matching </DL> pops it. Anchors take whatever
// scope is on top of the stack as their parent. There is no I/O and no recursion; ancestry is
// reconstructed entirely from temp ids.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/shared"
	"golang.org/x/net/html"
)

const (
	// UntitledFolder is the fallback name for folders with empty headings.
	UntitledFolder = "Untitled Folder"
	// UntitledBookmark is the fallback title for anchors with empty text.
	UntitledBookmark = "Untitled Bookmark"
)

// forbiddenElements abort parsing outright; a bookmark export has no business containing them.
var forbiddenElements = map[string]bool{
	"script": true,
	"style":  true,
	"iframe": true,
	"object": true,
	"embed":  true,
}

// Parse tokenizes a bookmark export document into a flat sequence of [models.TreeNode] in
// document order. Anchors whose href is not a valid absolute http(s) URL are dropped silently.
// Encountering a forbidden element fails the whole document with [shared.ErrMaliciousContent].
func Parse(doc string) ([]models.TreeNode, error) {
	z := html.NewTokenizer(strings.NewReader(doc))

	var nodes []models.TreeNode
	var stack []string // open folder scope temp ids
	pending := ""      // folder heading seen, waiting for its <dl>

	top := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return nodes, nil
			}
			return nil, fmt.Errorf("failed to tokenize document: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)

			if forbiddenElements[tag] {
				return nil, fmt.Errorf("%w: <%s> element in bookmark file", shared.ErrMaliciousContent, tag)
			}

			switch tag {
			case "h3":
				title, err := elementText(z, "h3")
				if err != nil {
					return nil, err
				}
				if title == "" {
					title = UntitledFolder
				}
				node := models.TreeNode{
					Kind:         models.NodeFolder,
					TempID:       shared.GenerateID(),
					ParentTempID: top(),
					Title:        title,
				}
				nodes = append(nodes, node)
				pending = node.TempID

			case "dl":
				scope := pending
				if scope == "" {
					// List without a heading, including the outermost one: inherit the
					// enclosing scope so stray nesting stays tolerated.
					scope = top()
				}
				stack = append(stack, scope)
				pending = ""

			case "a":
				href := ""
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "href" {
						href = strings.TrimSpace(string(val))
					}
				}
				title, err := elementText(z, "a")
				if err != nil {
					return nil, err
				}
				if models.ValidateURL(href) != nil {
					continue
				}
				if title == "" {
					title = UntitledBookmark
				}
				nodes = append(nodes, models.TreeNode{
					Kind:         models.NodeBookmark,
					TempID:       shared.GenerateID(),
					ParentTempID: top(),
					Title:        title,
					URL:          href,
				})
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "dl" && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// elementText collects the entity-decoded, trimmed text content of the current element,
// reading tokens until the matching end tag. Forbidden elements nested inside still abort.
func elementText(z *html.Tokenizer, tag string) (string, error) {
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			// Truncated markup: return what was collected and let the main loop
			// observe the same error on its next call.
			return strings.TrimSpace(b.String()), nil
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if forbiddenElements[string(name)] {
				return "", fmt.Errorf("%w: <%s> element in bookmark file", shared.ErrMaliciousContent, string(name))
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == tag {
				return strings.TrimSpace(b.String()), nil
			}
		}
	}
}
