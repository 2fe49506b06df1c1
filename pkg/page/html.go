package page

import (
	"context"
	"fmt"
	"io"
	"os"

	"emojiscraper/pkg/collector"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTMLFile is a Page read from a saved HTML document.
type HTMLFile struct {
	path     string
	selector string
}

// NewHTMLFile returns a page reading path and matching selector.
func NewHTMLFile(path, selector string) *HTMLFile {
	return &HTMLFile{path: path, selector: selector}
}

// Candidates implements collector.Page. The file is parsed again on every
// call.
func (f *HTMLFile) Candidates(ctx context.Context) ([]collector.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	return Query(file, f.selector)
}

// Query parses an HTML document from r and returns the elements matching
// selector in document order.
func Query(r io.Reader, selector string) ([]collector.Element, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	sel := doc.Find(selector)
	out := make([]collector.Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, htmlElement{n})
	}
	return out, nil
}

type htmlElement struct {
	node *html.Node
}

func (e htmlElement) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e htmlElement) FirstChild() (collector.Element, bool) {
	c := e.node.FirstChild
	if c == nil || c.Type != html.ElementNode {
		return nil, false
	}
	return htmlElement{c}, true
}
