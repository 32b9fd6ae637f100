package css

import (
	"strings"

	"buoy/pkg/html"
)

// Matches reports whether node satisfies the complex selector,
// evaluated right to left from the subject compound.
func Matches(node *html.Node, selector Selector) bool {
	if node.Type != html.ElementNode || len(selector.Parts) == 0 {
		return false
	}
	return matchesFrom(node, selector, len(selector.Parts)-1)
}

func matchesFrom(node *html.Node, selector Selector, partIndex int) bool {
	if !matchesPart(node, selector.Parts[partIndex]) {
		return false
	}
	if partIndex == 0 {
		return true
	}

	switch selector.Combinators[partIndex-1] {
	case DescendantCombinator:
		for anc := node.Parent; anc != nil; anc = anc.Parent {
			if isMatchableElement(anc) && matchesFrom(anc, selector, partIndex-1) {
				return true
			}
		}
		return false

	case ChildCombinator:
		if p := node.Parent; p != nil && isMatchableElement(p) {
			return matchesFrom(p, selector, partIndex-1)
		}
		return false

	case AdjacentSiblingCombinator:
		if prev := previousElementSibling(node); prev != nil {
			return matchesFrom(prev, selector, partIndex-1)
		}
		return false

	case GeneralSiblingCombinator:
		for prev := previousElementSibling(node); prev != nil; prev = previousElementSibling(prev) {
			if matchesFrom(prev, selector, partIndex-1) {
				return true
			}
		}
		return false
	}
	return false
}

// isMatchableElement excludes the synthetic document root from
// ancestor and parent matching.
func isMatchableElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.TagName != "document"
}

func matchesPart(node *html.Node, part SelectorPart) bool {
	if part.Element != "" && part.Element != "*" && node.TagName != part.Element {
		return false
	}
	if part.ID != "" {
		if id, ok := node.GetAttribute("id"); !ok || id != part.ID {
			return false
		}
	}
	if len(part.Classes) > 0 {
		classAttr, ok := node.GetAttribute("class")
		if !ok {
			return false
		}
		have := strings.Fields(classAttr)
		for _, want := range part.Classes {
			if !containsWord(have, want) {
				return false
			}
		}
	}
	for _, attr := range part.Attributes {
		if !matchesAttribute(node, attr) {
			return false
		}
	}
	// dynamic pseudo-classes never match in a static tree
	if len(part.PseudoClasses) > 0 {
		return false
	}
	return true
}

func containsWord(words []string, want string) bool {
	for _, w := range words {
		if w == want {
			return true
		}
	}
	return false
}

func matchesAttribute(node *html.Node, attr AttributeSelector) bool {
	value, ok := node.GetAttribute(attr.Name)
	if !ok {
		return false
	}
	switch attr.Operator {
	case "":
		return true
	case "=":
		return value == attr.Value
	case "^=":
		return attr.Value != "" && strings.HasPrefix(value, attr.Value)
	case "$=":
		return attr.Value != "" && strings.HasSuffix(value, attr.Value)
	case "*=":
		return attr.Value != "" && strings.Contains(value, attr.Value)
	case "~=":
		return containsWord(strings.Fields(value), attr.Value)
	case "|=":
		return value == attr.Value || strings.HasPrefix(value, attr.Value+"-")
	}
	return false
}

func previousElementSibling(node *html.Node) *html.Node {
	if node.Parent == nil {
		return nil
	}
	var prev *html.Node
	for _, sib := range node.Parent.Children {
		if sib == node {
			return prev
		}
		if sib.Type == html.ElementNode {
			prev = sib
		}
	}
	return nil
}

// FindFirst returns the first node under root (document order, root
// excluded) matching the selector group, or nil. An unparsable
// selector returns nil.
func FindFirst(root *html.Node, rawSelector string) *html.Node {
	selectors, err := ParseSelectorList(rawSelector)
	if err != nil {
		return nil
	}
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		for _, sel := range selectors {
			if Matches(n, sel) {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// FindAll returns every node under root matching the selector group,
// in document order.
func FindAll(root *html.Node, rawSelector string) []*html.Node {
	selectors, err := ParseSelectorList(rawSelector)
	if err != nil {
		return nil
	}
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		for _, sel := range selectors {
			if Matches(n, sel) {
				out = append(out, n)
				break
			}
		}
		return true
	})
	return out
}

// walk visits descendants of root in document order; the visitor
// returns false to stop early.
func walk(root *html.Node, visit func(*html.Node) bool) {
	var rec func(*html.Node) bool
	rec = func(n *html.Node) bool {
		for _, child := range n.Children {
			if child.Type == html.ElementNode {
				if !visit(child) {
					return false
				}
			}
			if !rec(child) {
				return false
			}
		}
		return true
	}
	rec(root)
}
