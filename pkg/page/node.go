package page

import "emojiscraper/pkg/collector"

// Node is a detached DOM node. A node with an empty Tag is a text node.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
}

// Attr implements collector.Element.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// FirstChild implements collector.Element.
func (n *Node) FirstChild() (collector.Element, bool) {
	if len(n.Children) == 0 || n.Children[0].Tag == "" {
		return nil, false
	}
	return n.Children[0], true
}

// Text returns a text node.
func Text() *Node {
	return &Node{}
}

// EmojiButton builds the element the chat client renders for one emoji: a
// button carrying id and name whose first child is an image labelled with
// label.
func EmojiButton(id, name, label string) *Node {
	return &Node{
		Tag: "button",
		Attrs: map[string]string{
			"data-type": "emoji",
			"data-id":   id,
			"data-name": name,
		},
		Children: []*Node{{
			Tag:   "img",
			Attrs: map[string]string{"aria-label": label},
		}},
	}
}
