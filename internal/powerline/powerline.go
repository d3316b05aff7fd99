// Package powerline renders prompt segments as colored blocks joined by
// arrow glyphs, the alternative render path the composer dispatches to
// when the active theme's layout style is "powerline". It is the direct
// Go translation of
// _examples/original_source/src/lle/prompt/powerline_renderer.c, including
// its default per-segment-name background palette and its left-to-right
// (PS1) / right-to-left (RPROMPT) assembly rules.
package powerline

import (
	"strings"

	"github.com/berrym/lush/internal/color"
	"github.com/berrym/lush/internal/lerrors"
	"github.com/berrym/lush/internal/promptctx"
	"github.com/berrym/lush/internal/segment"
	"github.com/berrym/lush/internal/theme"
)

// MaxVisible bounds the number of segments a single render can assemble.
const MaxVisible = 32

// DefaultSeparatorLeft and DefaultSeparatorRight are the powerline arrow
// glyphs used when a theme sets no explicit separator: U+E0B0 (right-pointing
// solid arrow, PS1 direction) and U+E0B2 (left-pointing solid arrow,
// RPROMPT direction).
const (
	DefaultSeparatorLeft  = ""
	DefaultSeparatorRight = ""
)

// Direction selects left-to-right (PS1) or right-to-left (RPROMPT)
// assembly order.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

// defaultBackground is the per-segment-name default palette; names not
// present fall back to "unknown"'s dark gray.
var defaultBackground = map[string]color.Color{
	"user":         color.TrueColor(68, 68, 68, false),
	"hostname":     color.TrueColor(68, 68, 68, false),
	"directory":    color.TrueColor(0, 95, 175, false),
	"git":          color.TrueColor(135, 95, 175, false),
	"status":       color.TrueColor(175, 0, 0, false),
	"jobs":         color.TrueColor(175, 95, 0, false),
	"time":         color.TrueColor(58, 58, 58, false),
	"shlvl":        color.TrueColor(68, 68, 68, false),
	"ssh":          color.TrueColor(175, 95, 0, false),
	"cmd_duration": color.TrueColor(175, 95, 0, false),
	"virtualenv":   color.TrueColor(0, 135, 0, false),
	"container":    color.TrueColor(0, 135, 135, false),
	"aws":          color.TrueColor(175, 95, 0, false),
	"kubernetes":   color.TrueColor(0, 95, 175, false),
	"unknown":      color.TrueColor(68, 68, 68, false),
}

func defaultSegmentBG(name string) color.Color {
	if c, ok := defaultBackground[name]; ok {
		return c
	}
	return defaultBackground["unknown"]
}

type renderedSegment struct {
	content string
	fg      color.Color
	bg      color.Color
}

// resolveColors computes a segment's final fg/bg, applying theme overrides
// and then downgrading to the terminal's actual capability.
func resolveColors(th theme.Theme, name string, ctx *promptctx.Context) (fg, bg color.Color) {
	fg = color.TrueColor(255, 255, 255, true)
	bg = defaultSegmentBG(name)

	if th.Colors.Text != "" {
		if c, ok := color.Parse(th.Colors.Text, color.DepthTrueColor); ok {
			fg = c
		}
	}

	if ov, ok := th.Override(name); ok {
		if ov.FGSet {
			if c, ok := color.Parse(ov.FG, color.DepthTrueColor); ok {
				fg = c
			}
		}
		if ov.BGSet {
			if c, ok := color.Parse(ov.BG, color.DepthTrueColor); ok {
				bg = c
			}
		}
	}

	depth := ctx.Depth()
	return color.Downgrade(fg, depth), color.Downgrade(bg, depth)
}

// stripANSI removes every CSI sequence (ESC '[' ... final-byte) from s, so
// a segment's own embedded colors never clobber the powerline palette.
func stripANSI(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && !(s[i] >= 0x40 && s[i] <= 0x7e) {
				i++
			}
			if i < len(s) {
				i++ // consume final byte
			}
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// collectVisible walks the theme's enabled-segment list and returns the
// resolved, color-tagged segments to render, in theme order, bounded by
// MaxVisible.
func collectVisible(th theme.Theme, registry *segment.Registry, ctx *promptctx.Context) []renderedSegment {
	var out []renderedSegment
	for _, name := range th.Enabled {
		if len(out) >= MaxVisible {
			break
		}
		if ov, ok := th.Override(name); ok && ov.ShowSet && !ov.Show {
			continue
		}
		result, found := registry.RenderNamed(name, ctx, th)
		if !found || result.IsEmpty || result.Content == "" {
			continue
		}
		fg, bg := resolveColors(th, name, ctx)
		out = append(out, renderedSegment{content: stripANSI(result.Content), fg: fg, bg: bg})
	}
	return out
}

// separatorFor returns the theme's configured separator for direction,
// falling back to the default powerline arrow glyphs.
func separatorFor(th theme.Theme, direction Direction) string {
	if direction == LeftToRight {
		if th.Symbols.SeparatorLeft != "" {
			return th.Symbols.SeparatorLeft
		}
		return ""
	}
	if th.Symbols.SeparatorRight != "" {
		return th.Symbols.SeparatorRight
	}
	return ""
}

// Render assembles the powerline prompt for the given theme, segment
// registry, runtime context and direction.
func Render(th theme.Theme, registry *segment.Registry, ctx *promptctx.Context, direction Direction) (string, error) {
	if registry == nil || ctx == nil {
		return "", lerrors.ErrNullPointer
	}
	if len(th.Enabled) == 0 {
		return "", nil
	}

	segs := collectVisible(th, registry, ctx)
	if len(segs) == 0 {
		return "", nil
	}

	separator := separatorFor(th, direction)

	var b strings.Builder
	if direction == LeftToRight {
		renderLeftToRight(&b, segs, separator)
	} else {
		renderRightToLeft(&b, segs, separator)
	}
	return b.String(), nil
}

func renderLeftToRight(b *strings.Builder, segs []renderedSegment, separator string) {
	for i, seg := range segs {
		b.WriteString(color.Emit(seg.bg, false))
		b.WriteString(color.Emit(seg.fg, true))
		b.WriteByte(' ')
		b.WriteString(seg.content)
		b.WriteByte(' ')

		if i+1 < len(segs) {
			next := segs[i+1]
			b.WriteString(color.Emit(seg.bg, true))
			b.WriteString(color.Emit(next.bg, false))
			b.WriteString(separator)
		} else {
			b.WriteString(color.Reset)
			b.WriteString(color.Emit(seg.bg, true))
			b.WriteString(separator)
			b.WriteString(color.Reset)
		}
	}
}

func renderRightToLeft(b *strings.Builder, segs []renderedSegment, separator string) {
	for i, seg := range segs {
		if i == 0 {
			b.WriteString(color.Emit(seg.bg, true))
			b.WriteString(separator)
		} else {
			prev := segs[i-1]
			b.WriteString(color.Emit(seg.bg, true))
			b.WriteString(color.Emit(prev.bg, false))
			b.WriteString(separator)
		}

		b.WriteString(color.Emit(seg.bg, false))
		b.WriteString(color.Emit(seg.fg, true))
		b.WriteByte(' ')
		b.WriteString(seg.content)
		b.WriteByte(' ')
	}
	b.WriteString(color.Reset)
}
