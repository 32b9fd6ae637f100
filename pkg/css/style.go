package css

import (
	"sort"
	"strconv"
	"strings"
)

// Style is a flat property map with typed accessors for the properties
// the layout engine consumes.
type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

func (s *Style) Get(property string) (string, bool) {
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

func (s *Style) Remove(property string) {
	delete(s.Properties, property)
}

func (s *Style) GetLength(property string) (float64, bool) {
	val, ok := s.Get(property)
	if !ok {
		return 0, false
	}
	return ParseLength(val)
}

// ParseLength parses a pixel length ("100px" or bare "100").
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// BoxEdge holds per-side lengths for margin, padding, or border.
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

func (s *Style) GetMargin() BoxEdge {
	return s.edge("margin")
}

func (s *Style) GetPadding() BoxEdge {
	return s.edge("padding")
}

func (s *Style) GetBorderWidth() BoxEdge {
	return BoxEdge{
		Top:    s.lengthOrZero("border-top-width"),
		Right:  s.lengthOrZero("border-right-width"),
		Bottom: s.lengthOrZero("border-bottom-width"),
		Left:   s.lengthOrZero("border-left-width"),
	}
}

func (s *Style) edge(prefix string) BoxEdge {
	return BoxEdge{
		Top:    s.lengthOrZero(prefix + "-top"),
		Right:  s.lengthOrZero(prefix + "-right"),
		Bottom: s.lengthOrZero(prefix + "-bottom"),
		Left:   s.lengthOrZero(prefix + "-left"),
	}
}

func (s *Style) lengthOrZero(property string) float64 {
	val, ok := s.GetLength(property)
	if !ok {
		return 0
	}
	return val
}

type PositionType string

const (
	PositionStatic   PositionType = "static"
	PositionRelative PositionType = "relative"
	PositionAbsolute PositionType = "absolute"
	PositionFixed    PositionType = "fixed"
)

func (s *Style) GetPosition() PositionType {
	if pos, ok := s.Get("position"); ok {
		switch pos {
		case "relative":
			return PositionRelative
		case "absolute":
			return PositionAbsolute
		case "fixed":
			return PositionFixed
		}
	}
	return PositionStatic
}

// PositionOffset carries the top/right/bottom/left offsets of a
// positioned element, with presence flags for each side.
type PositionOffset struct {
	Top, Right, Bottom, Left             float64
	HasTop, HasRight, HasBottom, HasLeft bool
}

func (s *Style) GetPositionOffset() PositionOffset {
	var off PositionOffset
	if v, ok := s.GetLength("top"); ok {
		off.Top, off.HasTop = v, true
	}
	if v, ok := s.GetLength("right"); ok {
		off.Right, off.HasRight = v, true
	}
	if v, ok := s.GetLength("bottom"); ok {
		off.Bottom, off.HasBottom = v, true
	}
	if v, ok := s.GetLength("left"); ok {
		off.Left, off.HasLeft = v, true
	}
	return off
}

func (s *Style) GetZIndex() int {
	if z, ok := s.Get("z-index"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(z)); err == nil {
			return n
		}
	}
	return 0
}

type DisplayType string

const (
	DisplayBlock  DisplayType = "block"
	DisplayInline DisplayType = "inline"
	DisplayFlex   DisplayType = "flex"
	DisplayNone   DisplayType = "none"
)

func (s *Style) GetDisplay() DisplayType {
	if display, ok := s.Get("display"); ok {
		switch display {
		case "inline":
			return DisplayInline
		case "flex":
			return DisplayFlex
		case "none":
			return DisplayNone
		}
	}
	return DisplayBlock
}

// ParseInlineStyle parses a style attribute value into a Style,
// expanding margin/padding/border shorthands.
func ParseInlineStyle(styleAttr string) *Style {
	style := NewStyle()
	for _, decl := range strings.Split(styleAttr, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		property := strings.TrimSpace(strings.ToLower(parts[0]))
		value := strings.TrimSpace(parts[1])
		if property == "" || value == "" {
			continue
		}
		expandShorthand(style, property, value)
	}
	return style
}

// Serialize renders the style as an inline attribute value with
// properties in sorted order, so rewrites are deterministic.
func (s *Style) Serialize() string {
	if len(s.Properties) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(s.Properties[k])
	}
	return sb.String()
}

func expandShorthand(style *Style, property, value string) {
	switch property {
	case "margin", "padding":
		expandBoxProperty(style, property, value)
	case "border":
		expandBorderProperty(style, value)
	default:
		style.Set(property, value)
	}
}

func expandBoxProperty(style *Style, prefix, value string) {
	parts := strings.Fields(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}
	style.Set(prefix+"-top", top)
	style.Set(prefix+"-right", right)
	style.Set(prefix+"-bottom", bottom)
	style.Set(prefix+"-left", left)
}

func expandBorderProperty(style *Style, value string) {
	for _, part := range strings.Fields(value) {
		switch {
		case strings.HasSuffix(part, "px"):
			style.Set("border-top-width", part)
			style.Set("border-right-width", part)
			style.Set("border-bottom-width", part)
			style.Set("border-left-width", part)
		case part == "solid" || part == "dotted" || part == "dashed" || part == "double":
			style.Set("border-style", part)
		default:
			style.Set("border-color", part)
		}
	}
}

type Color struct {
	R, G, B uint8
}

var namedColors = map[string]Color{
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"white":   {255, 255, 255},
	"black":   {0, 0, 0},
	"gray":    {128, 128, 128},
	"orange":  {255, 165, 0},
	"purple":  {128, 0, 128},
	"pink":    {255, 192, 203},
	"lime":    {0, 255, 0},
	"navy":    {0, 0, 128},
	"teal":    {0, 128, 128},
	"silver":  {192, 192, 192},
	"tomato":  {255, 99, 71},
	"gold":    {255, 215, 0},
}

// ParseColor resolves a named color or #rgb/#rrggbb hex value.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	if c, ok := namedColors[colorStr]; ok {
		return c, true
	}
	if strings.HasPrefix(colorStr, "#") {
		return parseHexColor(colorStr[1:])
	}
	return Color{}, false
}

func parseHexColor(hex string) (Color, bool) {
	switch len(hex) {
	case 3:
		r, ok1 := hexNibble(hex[0])
		g, ok2 := hexNibble(hex[1])
		b, ok3 := hexNibble(hex[2])
		if !ok1 || !ok2 || !ok3 {
			return Color{}, false
		}
		return Color{r * 17, g * 17, b * 17}, true
	case 6:
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, false
		}
		return Color{uint8(n >> 16), uint8(n >> 8), uint8(n)}, true
	}
	return Color{}, false
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
