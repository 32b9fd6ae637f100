package html

import "strings"

// Parse builds a Document from raw HTML. The parser is a forgiving
// stack machine: unknown tags nest, mismatched end tags pop to the
// nearest matching open element, and stray end tags are ignored.
// <style> and <script> bodies are captured verbatim into the
// document's Stylesheets and Scripts slices.
func Parse(input string) *Document {
	doc := NewDocument()
	tok := newTokenizer(input)
	stack := []*Node{doc.Root}

	top := func() *Node { return stack[len(stack)-1] }

	for {
		tk := tok.next()
		if tk.typ == tokenEOF {
			break
		}

		switch tk.typ {
		case tokenText:
			if strings.TrimSpace(tk.text) == "" {
				continue
			}
			top().AppendText(tk.text)

		case tokenStartTag:
			el := &Node{
				Type:       ElementNode,
				TagName:    tk.tagName,
				Attributes: tk.attributes,
			}
			top().AddChild(el)

			switch tk.tagName {
			case "style":
				raw := tok.readRawUntil("</style")
				doc.Stylesheets = append(doc.Stylesheets, raw)
			case "script":
				raw := tok.readRawUntil("</script")
				if strings.TrimSpace(raw) != "" {
					doc.Scripts = append(doc.Scripts, raw)
				}
			default:
				if !isVoidElement(tk.tagName) {
					stack = append(stack, el)
				}
			}

		case tokenSelfClosingTag:
			el := &Node{
				Type:       ElementNode,
				TagName:    tk.tagName,
				Attributes: tk.attributes,
			}
			top().AddChild(el)

		case tokenEndTag:
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].TagName == tk.tagName {
					stack = stack[:i]
					break
				}
			}
		}
	}

	return doc
}

// ParseFragment parses markup without document bookkeeping and returns
// the top-level nodes. Used for innerHTML assignment.
func ParseFragment(input string) []*Node {
	doc := Parse(input)
	nodes := make([]*Node, len(doc.Root.Children))
	copy(nodes, doc.Root.Children)
	for _, n := range nodes {
		n.Parent = nil
		detachOwner(n)
	}
	return nodes
}

func detachOwner(n *Node) {
	n.Owner = nil
	for _, c := range n.Children {
		detachOwner(c)
	}
}
