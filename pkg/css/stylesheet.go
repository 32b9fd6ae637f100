package css

import "strings"

// Rule is one selector with its declaration block, tagged with the
// media query of the enclosing @media block if any.
type Rule struct {
	Selector     Selector
	Declarations map[string]string
	MediaQuery   MediaQuery
}

type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses CSS text into rules. Comments are stripped,
// malformed rules are skipped, and @media blocks with width conditions
// gate their rules. Unsupported at-rules are dropped whole.
func ParseStylesheet(cssText string) *Stylesheet {
	sheet := &Stylesheet{}
	parseRuleBlocks(stripComments(cssText), MediaQuery{}, sheet)
	return sheet
}

func stripComments(s string) string {
	var sb strings.Builder
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:start])
		end := strings.Index(s[start+2:], "*/")
		if end < 0 {
			return sb.String()
		}
		s = s[start+2+end+2:]
	}
}

func parseRuleBlocks(cssText string, mq MediaQuery, sheet *Stylesheet) {
	pos := 0
	for pos < len(cssText) {
		open := strings.IndexByte(cssText[pos:], '{')
		if open < 0 {
			return
		}
		head := strings.TrimSpace(cssText[pos : pos+open])
		bodyStart := pos + open + 1

		bodyEnd, next := findBlockEnd(cssText, bodyStart)
		if bodyEnd < 0 {
			return
		}
		body := cssText[bodyStart:bodyEnd]
		pos = next

		switch {
		case strings.HasPrefix(head, "@media"):
			inner, ok := ParseMediaQuery(strings.TrimSpace(strings.TrimPrefix(head, "@media")))
			if !ok {
				continue
			}
			parseRuleBlocks(body, mq.and(inner), sheet)

		case strings.HasPrefix(head, "@"):
			// @font-face, @keyframes and friends: skip the block

		default:
			selectors, err := ParseSelectorList(head)
			if err != nil {
				continue
			}
			decls := parseDeclarations(body)
			if len(decls) == 0 {
				continue
			}
			for _, sel := range selectors {
				sheet.Rules = append(sheet.Rules, Rule{
					Selector:     sel,
					Declarations: decls,
					MediaQuery:   mq,
				})
			}
		}
	}
}

// findBlockEnd scans from bodyStart (just past '{') to the matching
// '}', returning the body end index and the index after the brace.
func findBlockEnd(s string, bodyStart int) (end, next int) {
	depth := 1
	for i := bodyStart; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, i + 1
			}
		}
	}
	return -1, len(s)
}

func parseDeclarations(body string) map[string]string {
	decls := make(map[string]string)
	for _, piece := range strings.Split(body, ";") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		colon := strings.IndexByte(piece, ':')
		if colon < 0 {
			continue
		}
		property := strings.TrimSpace(strings.ToLower(piece[:colon]))
		value := strings.TrimSpace(piece[colon+1:])
		if property == "" || value == "" {
			continue
		}
		expanded := NewStyle()
		expandShorthand(expanded, property, value)
		for k, v := range expanded.Properties {
			decls[k] = v
		}
	}
	return decls
}
