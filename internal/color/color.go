// Package color implements the prompt rendering core's color value type: a
// small tagged union over "no color" / 8-color "basic" / 256-color /
// 24-bit truecolor, plus the downgrade rules that let a theme written for a
// truecolor terminal degrade gracefully on a basic one, and the %F{}/%K{}
// color-spec grammar used by the zsh escape table.
package color

import (
	"fmt"
	"strconv"
	"strings"
)

// Depth is a terminal's color capability, ordered from least to most
// capable so comparisons like `depth < DepthTrueColor` work as expected.
type Depth int

const (
	DepthBasic Depth = iota
	Depth256
	DepthTrueColor
)

// Kind discriminates the Color variants.
type Kind int

const (
	KindNone Kind = iota
	KindBasic
	Kind256
	KindTrueColor
)

// Color is a tagged union: {none}, {basic, index 0..7}, {256, index 0..255},
// {true, r,g,b 0..255}, each with an optional bold flag. The zero value is
// KindNone, which by invariant emits no bytes.
type Color struct {
	Kind  Kind
	Index uint8 // used by KindBasic (0..7) and Kind256 (0..255)
	R, G, B uint8 // used by KindTrueColor
	Bold  bool
}

// None is the color that emits no bytes.
var None = Color{Kind: KindNone}

// Basic constructs an 8-color ANSI color from index as given. Index 9 is
// reserved for "default" (SGR 39/49, reset to the terminal's own
// foreground/background) and must reach Emit unchanged; callers that want
// 0..7 wraparound (e.g. an arbitrary numeric color spec) must mod before
// calling Basic, since Basic itself no longer wraps index 9 away.
func Basic(index uint8, bold bool) Color {
	return Color{Kind: KindBasic, Index: index, Bold: bold}
}

// C256 constructs a 256-color palette entry.
func C256(index uint8, bold bool) Color {
	return Color{Kind: Kind256, Index: index, Bold: bold}
}

// TrueColor constructs a 24-bit RGB color.
func TrueColor(r, g, b uint8, bold bool) Color {
	return Color{Kind: KindTrueColor, R: r, G: g, B: b, Bold: bold}
}

// namedBasic maps the zsh/bash named colors to their 0..7 ANSI index, plus
// "default" which maps to index 9 (the terminal's default foreground, per
// SGR 39/49 semantics) and is treated specially by Emit.
var namedBasic = map[string]int{
	"black": 0, "red": 1, "green": 2, "yellow": 3,
	"blue": 4, "magenta": 5, "cyan": 6, "white": 7,
	"default": 9,
}

// Downgrade reduces c to fit within depth, per spec: truecolor -> 256 when
// depth < DepthTrueColor, then 256 -> basic (index mod 8, as Parse maps
// numeric specs) when depth < Depth256. Truecolor RGB arriving directly at
// basic depth has no approximation and is dropped to None, matching the
// "silently drop" contract for #RRGGBB under color_depth == basic.
func Downgrade(c Color, depth Depth) Color {
	if c.Kind == KindTrueColor && depth < DepthTrueColor {
		if depth >= Depth256 {
			return C256(rgbTo256(c.R, c.G, c.B), c.Bold)
		}
		return None
	}
	if c.Kind == Kind256 && depth < Depth256 {
		return Basic(c.Index%8, c.Bold)
	}
	return c
}

// rgbTo256 approximates an RGB triple to the xterm 6x6x6 color cube using
// idx = 16 + 36*ri + 6*gi + bi, with ci = (c>47) ? (c-35)/40 : 0 per spec.
func rgbTo256(r, g, b uint8) uint8 {
	cube := func(c uint8) int {
		if c > 47 {
			return (int(c) - 35) / 40
		}
		return 0
	}
	ri, gi, bi := cube(r), cube(g), cube(b)
	return uint8(16 + 36*ri + 6*gi + bi)
}

// Emit renders the ANSI SGR sequence for c as a foreground (fg=true) or
// background color. A KindNone color emits the empty string. Bold is only
// meaningful (and only emitted) for foreground colors; background bold has
// no standard SGR meaning.
func Emit(c Color, fg bool) string {
	var sb strings.Builder
	if fg && c.Bold {
		sb.WriteString("\x1b[1m")
	}
	switch c.Kind {
	case KindNone:
		return sb.String()
	case KindBasic:
		base := 30
		if !fg {
			base = 40
		}
		// Index is emitted unmodded: 0..7 for the named ANSI colors, 9 for
		// "default" (SGR 39/49). Basic/Parse are responsible for ensuring
		// Index never arrives holding anything else.
		fmt.Fprintf(&sb, "\x1b[%dm", base+int(c.Index))
	case Kind256:
		if fg {
			fmt.Fprintf(&sb, "\x1b[38;5;%dm", c.Index)
		} else {
			fmt.Fprintf(&sb, "\x1b[48;5;%dm", c.Index)
		}
	case KindTrueColor:
		if fg {
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
		} else {
			fmt.Fprintf(&sb, "\x1b[48;2;%d;%d;%dm", c.R, c.G, c.B)
		}
	}
	return sb.String()
}

// ResetFG is the SGR sequence that resets only the foreground color (39),
// used by %f and by the powerline renderer between segments.
const ResetFG = "\x1b[39m"

// ResetBG is the SGR sequence that resets only the background color (49).
const ResetBG = "\x1b[49m"

// Reset is the full SGR reset sequence (0).
const Reset = "\x1b[0m"

// Parse interprets a %F{...}/%K{...} color spec body (the text between the
// braces, not including "%F{" or "}") against depth, returning the resolved
// Color and whether the spec was recognized at all. An unrecognized spec
// returns (None, false) so the caller can decide to drop it silently, per
// spec.md's "Unrecognised -> drop silently" rule.
func Parse(spec string, depth Depth) (Color, bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return None, false
	}

	if strings.HasPrefix(spec, "#") && len(spec) == 7 {
		r, g, b, ok := parseHexRGB(spec[1:])
		if !ok {
			return None, false
		}
		switch {
		case depth >= DepthTrueColor:
			return TrueColor(r, g, b, false), true
		case depth >= Depth256:
			return C256(rgbTo256(r, g, b), false), true
		default:
			// No good 8-color approximation: silently drop.
			return None, false
		}
	}

	if n, err := strconv.Atoi(spec); err == nil {
		if n < 0 || n > 255 {
			return None, false
		}
		if depth >= Depth256 {
			return C256(uint8(n), false), true
		}
		return Basic(uint8(n%8), false), true
	}

	if idx, ok := namedBasic[strings.ToLower(spec)]; ok {
		// idx is already canonical (0..7, or 9 for "default") — do not mod.
		return Basic(uint8(idx), false), true
	}

	return None, false
}

func parseHexRGB(hex string) (r, g, b uint8, ok bool) {
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
