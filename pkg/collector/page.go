package collector

import "context"

// Element is a DOM element as seen by the scanner.
type Element interface {
	// Attr returns the value of the named attribute and whether it is set.
	Attr(name string) (string, bool)
	// FirstChild returns the first child node when it is an element. A
	// missing first node or a text/comment node reports false.
	FirstChild() (Element, bool)
}

// Page yields the elements matching the emoji selector in document order.
type Page interface {
	Candidates(ctx context.Context) ([]Element, error)
}
