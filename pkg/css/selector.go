package css

import (
	"fmt"
	"strings"
)

// Combinator joins two compound selector parts.
type Combinator int

const (
	DescendantCombinator Combinator = iota // whitespace
	ChildCombinator                        // >
	AdjacentSiblingCombinator              // +
	GeneralSiblingCombinator               // ~
)

// AttributeSelector is one [name], [name=value], [name^=value] etc. term.
type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "^=", "$=", "*=", "~=", "|="
	Value    string
}

// SelectorPart is a compound selector: element, id, classes and
// attribute terms that must all match one node.
type SelectorPart struct {
	Element       string
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []string
}

// Selector is a full complex selector: compound parts joined by
// combinators, matched right to left.
type Selector struct {
	Raw         string
	Parts       []SelectorPart
	Combinators []Combinator // len(Parts)-1 entries
	Specificity int
}

// ParseSelectorList splits a comma-separated selector group and parses
// each selector.
func ParseSelectorList(raw string) ([]Selector, error) {
	var out []Selector
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		sel, err := ParseSelector(piece)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty selector %q", raw)
	}
	return out, nil
}

// ParseSelector parses one complex selector.
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}

	sel := Selector{Raw: raw}
	tokens, err := splitSelector(raw)
	if err != nil {
		return Selector{}, err
	}

	expectPart := true
	for _, tok := range tokens {
		switch tok {
		case ">", "+", "~":
			if expectPart {
				return Selector{}, fmt.Errorf("selector %q: misplaced combinator %q", raw, tok)
			}
			switch tok {
			case ">":
				sel.Combinators = append(sel.Combinators, ChildCombinator)
			case "+":
				sel.Combinators = append(sel.Combinators, AdjacentSiblingCombinator)
			case "~":
				sel.Combinators = append(sel.Combinators, GeneralSiblingCombinator)
			}
			expectPart = true
		default:
			if !expectPart {
				// two parts with only whitespace between them
				sel.Combinators = append(sel.Combinators, DescendantCombinator)
			}
			part, err := parseCompound(tok)
			if err != nil {
				return Selector{}, fmt.Errorf("selector %q: %w", raw, err)
			}
			sel.Parts = append(sel.Parts, part)
			expectPart = false
		}
	}
	if expectPart || len(sel.Parts) == 0 {
		return Selector{}, fmt.Errorf("selector %q: trailing combinator", raw)
	}

	sel.Specificity = computeSpecificity(sel.Parts)
	return sel, nil
}

// splitSelector tokenizes a selector into compound parts and combinator
// symbols. Whitespace separates tokens except inside brackets.
func splitSelector(raw string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	depth := 0

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '[':
			depth++
			cur.WriteByte(c)
		case c == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced ']'")
			}
			cur.WriteByte(c)
		case depth > 0:
			cur.WriteByte(c)
		case c == ' ' || c == '\t' || c == '\n':
			flush()
		case c == '>' || c == '+' || c == '~':
			flush()
			tokens = append(tokens, string(c))
		default:
			cur.WriteByte(c)
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '['")
	}
	flush()
	return tokens, nil
}

func parseCompound(tok string) (SelectorPart, error) {
	var part SelectorPart
	i := 0
	for i < len(tok) {
		switch tok[i] {
		case '#':
			j := simpleNameEnd(tok, i+1)
			if j == i+1 {
				return part, fmt.Errorf("empty id selector")
			}
			part.ID = tok[i+1 : j]
			i = j
		case '.':
			j := simpleNameEnd(tok, i+1)
			if j == i+1 {
				return part, fmt.Errorf("empty class selector")
			}
			part.Classes = append(part.Classes, tok[i+1:j])
			i = j
		case '[':
			j := strings.IndexByte(tok[i:], ']')
			if j < 0 {
				return part, fmt.Errorf("unterminated attribute selector")
			}
			attr, err := parseAttrTerm(tok[i+1 : i+j])
			if err != nil {
				return part, err
			}
			part.Attributes = append(part.Attributes, attr)
			i += j + 1
		case ':':
			j := simpleNameEnd(tok, i+1)
			if j == i+1 {
				return part, fmt.Errorf("empty pseudo-class")
			}
			part.PseudoClasses = append(part.PseudoClasses, tok[i+1:j])
			i = j
		case '*':
			part.Element = "*"
			i++
		default:
			j := simpleNameEnd(tok, i)
			if j == i {
				return part, fmt.Errorf("unexpected %q", tok[i])
			}
			part.Element = strings.ToLower(tok[i:j])
			i = j
		}
	}
	return part, nil
}

func simpleNameEnd(s string, start int) int {
	i := start
	for i < len(s) {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
			c >= '0' && c <= '9' || c == '-' || c == '_' {
			i++
			continue
		}
		break
	}
	return i
}

var attrOperators = []string{"^=", "$=", "*=", "~=", "|=", "="}

func parseAttrTerm(body string) (AttributeSelector, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return AttributeSelector{}, fmt.Errorf("empty attribute selector")
	}
	for _, op := range attrOperators {
		if idx := strings.Index(body, op); idx >= 0 {
			name := strings.TrimSpace(body[:idx])
			value := strings.TrimSpace(body[idx+len(op):])
			value = strings.Trim(value, `"'`)
			if name == "" {
				return AttributeSelector{}, fmt.Errorf("attribute selector missing name")
			}
			return AttributeSelector{Name: strings.ToLower(name), Operator: op, Value: value}, nil
		}
	}
	return AttributeSelector{Name: strings.ToLower(body)}, nil
}

// computeSpecificity scores id=100, class/attr/pseudo=10, element=1,
// summed across all compound parts.
func computeSpecificity(parts []SelectorPart) int {
	score := 0
	for _, p := range parts {
		if p.ID != "" {
			score += 100
		}
		score += 10 * (len(p.Classes) + len(p.Attributes) + len(p.PseudoClasses))
		if p.Element != "" && p.Element != "*" {
			score++
		}
	}
	return score
}
