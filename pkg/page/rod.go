package page

import (
	"context"
	"fmt"

	"emojiscraper/pkg/collector"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// snapshotScript collects every element matching the selector together with
// its first child node. A first child that is not an element is reported as
// null.
const snapshotScript = `(selector) => {
	const attrs = (n) => Object.fromEntries(Array.from(n.attributes, (a) => [a.name, a.value]));
	return Array.from(document.querySelectorAll(selector), (el) => {
		const first = el.firstChild;
		return {
			tag: el.localName,
			attrs: attrs(el),
			first: first && first.nodeType === Node.ELEMENT_NODE
				? { tag: first.localName, attrs: attrs(first) }
				: null,
		};
	});
}`

// Rod is a Page backed by a live browser tab.
type Rod struct {
	page     *rod.Page
	selector string
}

// NewRod returns a page scanning p for selector.
func NewRod(p *rod.Page, selector string) *Rod {
	return &Rod{page: p, selector: selector}
}

// Candidates implements collector.Page with a single round trip to the tab.
func (r *Rod) Candidates(ctx context.Context) ([]collector.Element, error) {
	res, err := r.page.Context(ctx).Eval(snapshotScript, r.selector)
	if err != nil {
		return nil, fmt.Errorf("browser: query %q: %w", r.selector, err)
	}
	return DecodeSnapshot(res.Value)
}

// DecodeSnapshot converts the value returned by the snapshot script.
func DecodeSnapshot(v gson.JSON) ([]collector.Element, error) {
	if _, ok := v.Val().([]interface{}); !ok {
		return nil, fmt.Errorf("browser: decode snapshot: want an array, got %s", v.JSON("", ""))
	}

	items := v.Arr()
	out := make([]collector.Element, 0, len(items))
	for _, item := range items {
		n := &Node{Tag: item.Get("tag").Str(), Attrs: snapshotAttrs(item.Get("attrs"))}
		if first := item.Get("first"); !first.Nil() {
			n.Children = []*Node{{Tag: first.Get("tag").Str(), Attrs: snapshotAttrs(first.Get("attrs"))}}
		} else {
			n.Children = []*Node{Text()}
		}
		out = append(out, n)
	}
	return out, nil
}

func snapshotAttrs(v gson.JSON) map[string]string {
	attrs := make(map[string]string)
	for name, value := range v.Map() {
		attrs[name] = value.Str()
	}
	return attrs
}
