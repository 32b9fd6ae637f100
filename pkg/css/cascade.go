package css

import (
	"sort"

	"buoy/pkg/html"
)

// ComputeStyle resolves the final style for a node: matching rules in
// specificity order (source order breaking ties), inline style last.
func ComputeStyle(node *html.Node, stylesheets []*Stylesheet, viewportWidth float64) *Style {
	final := NewStyle()

	type scored struct {
		rule  Rule
		order int
	}
	var matched []scored
	order := 0
	for _, sheet := range stylesheets {
		for _, rule := range sheet.Rules {
			if !rule.MediaQuery.Evaluate(viewportWidth) {
				continue
			}
			if Matches(node, rule.Selector) {
				matched = append(matched, scored{rule, order})
			}
			order++
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].rule.Selector.Specificity != matched[j].rule.Selector.Specificity {
			return matched[i].rule.Selector.Specificity < matched[j].rule.Selector.Specificity
		}
		return matched[i].order < matched[j].order
	})

	for _, m := range matched {
		for property, value := range m.rule.Declarations {
			final.Set(property, value)
		}
	}

	if styleAttr, ok := node.GetAttribute("style"); ok {
		inline := ParseInlineStyle(styleAttr)
		for property, value := range inline.Properties {
			final.Set(property, value)
		}
	}

	return final
}

// ApplyStylesToDocument computes styles for every element in the
// document against its collected stylesheets.
func ApplyStylesToDocument(doc *html.Document, viewportWidth float64) map[*html.Node]*Style {
	stylesheets := make([]*Stylesheet, 0, len(doc.Stylesheets))
	for _, cssText := range doc.Stylesheets {
		stylesheets = append(stylesheets, ParseStylesheet(cssText))
	}

	styles := make(map[*html.Node]*Style)
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.TagName != "document" {
			styles[n] = ComputeStyle(n, stylesheets, viewportWidth)
		}
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(doc.Root)
	return styles
}
