package css

import "strings"

// MediaQuery gates a rule on viewport width. The zero value matches
// every viewport.
type MediaQuery struct {
	HasMinWidth bool
	MinWidth    float64
	HasMaxWidth bool
	MaxWidth    float64
}

// ParseMediaQuery parses the condition list of an @media prelude,
// e.g. "(min-width: 768px) and (max-width: 1023px)" or
// "screen and (min-width: 430px)". Media types are ignored; width
// conditions are combined. Unknown feature conditions fail the parse.
func ParseMediaQuery(prelude string) (MediaQuery, bool) {
	var mq MediaQuery
	for _, term := range strings.Split(prelude, " and ") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if !strings.HasPrefix(term, "(") {
			// media type like "screen" or "all": accept and ignore
			continue
		}
		term = strings.TrimPrefix(term, "(")
		term = strings.TrimSuffix(term, ")")
		colon := strings.IndexByte(term, ':')
		if colon < 0 {
			return MediaQuery{}, false
		}
		feature := strings.TrimSpace(strings.ToLower(term[:colon]))
		value, ok := ParseLength(term[colon+1:])
		if !ok {
			return MediaQuery{}, false
		}
		switch feature {
		case "min-width":
			mq.HasMinWidth = true
			mq.MinWidth = value
		case "max-width":
			mq.HasMaxWidth = true
			mq.MaxWidth = value
		default:
			return MediaQuery{}, false
		}
	}
	return mq, true
}

// Evaluate reports whether the viewport width satisfies the query.
func (mq MediaQuery) Evaluate(viewportWidth float64) bool {
	if mq.HasMinWidth && viewportWidth < mq.MinWidth {
		return false
	}
	if mq.HasMaxWidth && viewportWidth > mq.MaxWidth {
		return false
	}
	return true
}

// and intersects two queries: the tighter bound on each side wins.
func (mq MediaQuery) and(other MediaQuery) MediaQuery {
	out := mq
	if other.HasMinWidth && (!out.HasMinWidth || other.MinWidth > out.MinWidth) {
		out.HasMinWidth = true
		out.MinWidth = other.MinWidth
	}
	if other.HasMaxWidth && (!out.HasMaxWidth || other.MaxWidth < out.MaxWidth) {
		out.HasMaxWidth = true
		out.MaxWidth = other.MaxWidth
	}
	return out
}
