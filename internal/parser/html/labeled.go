package html

import (
	"fmt"
	"io"
	"slices"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Selectors describe where a label/value list lives in a page.
type Selectors struct {
	// ItemRole and ItemClass identify one list item. ItemRole may be empty.
	ItemRole  string
	ItemClass string

	// LabelClass marks the element holding the label inside an item.
	LabelClass string

	// ValueClass marks the element holding the value inside an item.
	ValueClass string
}

// IMDBSelectors matches the metadata lists on an IMDB title page, e.g. the
// "Director", "Budget", "Gross worldwide" and "Runtime" rows.
var IMDBSelectors = Selectors{
	ItemRole:   "presentation",
	ItemClass:  "ipc-metadata-list__item",
	LabelClass: "ipc-metadata-list-item__label",
	ValueClass: "ipc-metadata-list-item__content-container",
}

// ExtractLabeled parses the document in r and returns label to value text for
// every list item matching sel. Items without a label are skipped; an item
// whose value element is missing maps to "". When a label repeats, the first
// occurrence wins.
func ExtractLabeled(r io.Reader, sel Selectors) (map[string]string, error) {
	doc, err := xhtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("html: parse: %w", err)
	}

	out := make(map[string]string)
	for item := range matching(doc, func(n *xhtml.Node) bool {
		return n.DataAtom == atom.Li && hasClass(n, sel.ItemClass) &&
			(sel.ItemRole == "" || attr(n, "role") == sel.ItemRole)
	}) {
		labelNode := first(item, func(n *xhtml.Node) bool { return hasClass(n, sel.LabelClass) })
		if labelNode == nil {
			continue
		}
		label := JoinText(texts(labelNode))
		if label == "" {
			continue
		}
		if _, seen := out[label]; seen {
			continue
		}
		value := ""
		if valueNode := first(item, func(n *xhtml.Node) bool { return hasClass(n, sel.ValueClass) }); valueNode != nil {
			value = JoinText(texts(valueNode))
		}
		out[label] = value
	}
	return out, nil
}

// matching yields every element under root for which pred holds, in document
// order. Matches are not descended into.
func matching(root *xhtml.Node, pred func(*xhtml.Node) bool) func(func(*xhtml.Node) bool) {
	return func(yield func(*xhtml.Node) bool) {
		var walk func(n *xhtml.Node) bool
		walk = func(n *xhtml.Node) bool {
			if n.Type == xhtml.ElementNode && pred(n) {
				return yield(n)
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(root)
	}
}

// first returns the first element strictly below root matching pred.
func first(root *xhtml.Node, pred func(*xhtml.Node) bool) *xhtml.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		for n := range matching(c, pred) {
			return n
		}
	}
	return nil
}

// texts returns the text nodes under n in document order. Script and style
// contents are skipped.
func texts(n *xhtml.Node) []string {
	var out []string
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		switch {
		case n.Type == xhtml.TextNode:
			out = append(out, n.Data)
			return
		case n.Type == xhtml.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *xhtml.Node, class string) bool {
	if class == "" {
		return false
	}
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}
