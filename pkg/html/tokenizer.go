package html

import "strings"

type tokenType int

const (
	tokenStartTag tokenType = iota
	tokenEndTag
	tokenSelfClosingTag
	tokenText
	tokenEOF
)

type token struct {
	typ        tokenType
	tagName    string
	attributes map[string]string
	text       string
}

// tokenizer walks raw HTML and produces a flat token stream. It skips
// comments and doctype declarations; entity decoding covers the handful
// of named entities that show up in test pages.
type tokenizer struct {
	input string
	pos   int
}

func newTokenizer(input string) *tokenizer {
	return &tokenizer{input: input}
}

func (t *tokenizer) next() token {
	for t.pos < len(t.input) {
		if t.input[t.pos] == '<' {
			if strings.HasPrefix(t.input[t.pos:], "<!--") {
				t.skipComment()
				continue
			}
			if strings.HasPrefix(t.input[t.pos:], "<!") {
				t.skipDeclaration()
				continue
			}
			return t.readTag()
		}
		return t.readText()
	}
	return token{typ: tokenEOF}
}

// readRawUntil consumes input verbatim up to (and including) the given
// closing tag, returning the raw content before it. Used for <style> and
// <script>, whose bodies must not be tokenized as markup.
func (t *tokenizer) readRawUntil(closeTag string) string {
	lower := strings.ToLower(t.input[t.pos:])
	idx := strings.Index(lower, closeTag)
	if idx < 0 {
		raw := t.input[t.pos:]
		t.pos = len(t.input)
		return raw
	}
	raw := t.input[t.pos : t.pos+idx]
	t.pos += idx + len(closeTag)
	// swallow the rest of the close tag through '>'
	for t.pos < len(t.input) && t.input[t.pos-1] != '>' {
		t.pos++
	}
	return raw
}

func (t *tokenizer) skipComment() {
	end := strings.Index(t.input[t.pos:], "-->")
	if end < 0 {
		t.pos = len(t.input)
		return
	}
	t.pos += end + len("-->")
}

func (t *tokenizer) skipDeclaration() {
	end := strings.IndexByte(t.input[t.pos:], '>')
	if end < 0 {
		t.pos = len(t.input)
		return
	}
	t.pos += end + 1
}

func (t *tokenizer) readText() token {
	start := t.pos
	for t.pos < len(t.input) && t.input[t.pos] != '<' {
		t.pos++
	}
	return token{typ: tokenText, text: decodeEntities(t.input[start:t.pos])}
}

func (t *tokenizer) readTag() token {
	t.pos++ // consume '<'
	closing := false
	if t.pos < len(t.input) && t.input[t.pos] == '/' {
		closing = true
		t.pos++
	}

	start := t.pos
	for t.pos < len(t.input) && isNameByte(t.input[t.pos]) {
		t.pos++
	}
	name := strings.ToLower(t.input[start:t.pos])

	attrs := t.readAttributes()

	selfClosing := false
	if t.pos < len(t.input) && t.input[t.pos] == '/' {
		selfClosing = true
		t.pos++
	}
	if t.pos < len(t.input) && t.input[t.pos] == '>' {
		t.pos++
	}

	switch {
	case closing:
		return token{typ: tokenEndTag, tagName: name}
	case selfClosing:
		return token{typ: tokenSelfClosingTag, tagName: name, attributes: attrs}
	default:
		return token{typ: tokenStartTag, tagName: name, attributes: attrs}
	}
}

func (t *tokenizer) readAttributes() map[string]string {
	var attrs map[string]string
	for t.pos < len(t.input) {
		t.skipSpace()
		if t.pos >= len(t.input) {
			break
		}
		c := t.input[t.pos]
		if c == '>' || c == '/' {
			break
		}

		start := t.pos
		for t.pos < len(t.input) && isNameByte(t.input[t.pos]) {
			t.pos++
		}
		if t.pos == start {
			t.pos++ // stray byte, skip it
			continue
		}
		name := strings.ToLower(t.input[start:t.pos])
		value := ""

		t.skipSpace()
		if t.pos < len(t.input) && t.input[t.pos] == '=' {
			t.pos++
			t.skipSpace()
			value = t.readAttrValue()
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[name] = value
	}
	return attrs
}

func (t *tokenizer) readAttrValue() string {
	if t.pos >= len(t.input) {
		return ""
	}
	quote := t.input[t.pos]
	if quote == '"' || quote == '\'' {
		t.pos++
		start := t.pos
		for t.pos < len(t.input) && t.input[t.pos] != quote {
			t.pos++
		}
		val := t.input[start:t.pos]
		if t.pos < len(t.input) {
			t.pos++ // closing quote
		}
		return decodeEntities(val)
	}
	start := t.pos
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '>' || c == '/' {
			break
		}
		t.pos++
	}
	return decodeEntities(t.input[start:t.pos])
}

func (t *tokenizer) skipSpace() {
	for t.pos < len(t.input) {
		switch t.input[t.pos] {
		case ' ', '\t', '\n', '\r':
			t.pos++
		default:
			return
		}
	}
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '-' || c == '_' || c == ':'
}

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
	"&amp;", "&",
)

func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityReplacer.Replace(s)
}
