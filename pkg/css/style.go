package css

import (
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Declaration is one property: value pair of an inline style.
type Declaration struct {
	Property string
	Value    string
}

// Declarations is an inline style attribute in source order. Setting a
// property that already exists replaces it in place.
type Declarations []Declaration

// ParseInlineStyle parses the content of a style attribute. Malformed
// entries are skipped.
func ParseInlineStyle(styleAttr string) Declarations {
	var decls Declarations
	for _, part := range strings.Split(styleAttr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		colonPos := strings.Index(part, ":")
		if colonPos == -1 {
			continue
		}
		property := strings.ToLower(strings.TrimSpace(part[:colonPos]))
		value := strings.TrimSpace(part[colonPos+1:])
		if property != "" && value != "" {
			decls.Set(property, value)
		}
	}
	return decls
}

func (d Declarations) Get(property string) (string, bool) {
	for _, decl := range d {
		if decl.Property == property {
			return decl.Value, true
		}
	}
	return "", false
}

// Set replaces or appends property. An empty value removes it.
func (d *Declarations) Set(property, value string) {
	property = strings.ToLower(strings.TrimSpace(property))
	value = strings.TrimSpace(value)
	for i, decl := range *d {
		if decl.Property != property {
			continue
		}
		if value == "" {
			*d = append((*d)[:i], (*d)[i+1:]...)
		} else {
			(*d)[i].Value = value
		}
		return
	}
	if value != "" {
		*d = append(*d, Declaration{Property: property, Value: value})
	}
}

// String serializes the declarations back into style attribute form.
func (d Declarations) String() string {
	parts := make([]string, 0, len(d))
	for _, decl := range d {
		parts = append(parts, decl.Property+": "+decl.Value)
	}
	return strings.Join(parts, "; ")
}

// Map flattens the declarations, expanding margin and padding shorthands
// into their longhands alongside the shorthand itself.
func (d Declarations) Map() map[string]string {
	out := make(map[string]string, len(d))
	for _, decl := range d {
		out[decl.Property] = decl.Value
		switch decl.Property {
		case "margin", "padding":
			expandBoxProperty(out, decl.Property, decl.Value)
		}
	}
	return out
}

// expandBoxProperty expands margin/padding shorthand
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
// "10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l)
func expandBoxProperty(out map[string]string, prefix, value string) {
	parts := strings.Fields(value)

	switch len(parts) {
	case 1:
		parts = []string{parts[0], parts[0], parts[0], parts[0]}
	case 2:
		parts = []string{parts[0], parts[1], parts[0], parts[1]}
	case 3:
		parts = []string{parts[0], parts[1], parts[2], parts[1]}
	case 4:
	default:
		return
	}
	out[prefix+"-top"] = parts[0]
	out[prefix+"-right"] = parts[1]
	out[prefix+"-bottom"] = parts[2]
	out[prefix+"-left"] = parts[3]
}

// CamelToKebab converts a script-side property name such as
// backgroundColor to its CSS form background-color.
func CamelToKebab(s string) string {
	if s == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r + ('a' - 'A'))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// ParseLength reads a non-negative pixel length such as "100", "12.5"
// or "100px".
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSuffix(strings.TrimSpace(val), "px")
	num, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || num < 0 || math.IsInf(num, 0) || math.IsNaN(num) {
		return 0, false
	}
	return num, true
}

var namedColors = map[string]color.NRGBA{
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"pink":        {255, 192, 203, 255},
	"brown":       {165, 42, 42, 255},
	"lime":        {0, 255, 0, 255},
	"navy":        {0, 0, 128, 255},
	"teal":        {0, 128, 128, 255},
	"silver":      {192, 192, 192, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor understands named colors, #rgb, #rrggbb and rgb()/rgba().
func ParseColor(colorStr string) (color.NRGBA, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	if c, ok := namedColors[colorStr]; ok {
		return c, true
	}
	if strings.HasPrefix(colorStr, "#") {
		return parseHexColor(colorStr[1:])
	}
	if args, ok := functionArgs(colorStr, "rgba"); ok {
		return parseRGBArgs(args, true)
	}
	if args, ok := functionArgs(colorStr, "rgb"); ok {
		return parseRGBArgs(args, false)
	}
	return color.NRGBA{}, false
}

func parseHexColor(hex string) (color.NRGBA, bool) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

func functionArgs(s, name string) ([]string, bool) {
	if !strings.HasPrefix(s, name+"(") || !strings.HasSuffix(s, ")") {
		return nil, false
	}
	inner := s[len(name)+1 : len(s)-1]
	args := strings.Split(inner, ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return args, true
}

func parseRGBArgs(args []string, withAlpha bool) (color.NRGBA, bool) {
	want := 3
	if withAlpha {
		want = 4
	}
	if len(args) != want {
		return color.NRGBA{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(args[i])
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, false
		}
		ch[i] = uint8(v)
	}
	alpha := uint8(255)
	if withAlpha {
		a, err := strconv.ParseFloat(args[3], 64)
		if err != nil || a < 0 || a > 1 {
			return color.NRGBA{}, false
		}
		alpha = uint8(a*255 + 0.5)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}
