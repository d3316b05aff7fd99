// Package expand implements Pass 2 of the prompt expansion pipeline: a
// single forward scan that expands bash "\X" and zsh "%X" prompt escapes
// while leaving any ANSI CSI sequence emitted by Pass 1
// (internal/expand/template) untouched.
//
// This is the direct Go translation of
// _examples/original_source/src/lle/prompt/prompt_expansion.c's
// expand_prompt_escapes, built around a strings.Builder instead of a fixed
// C buffer; MaxOutput below reproduces the original's silent-truncation
// behavior rather than growing unbounded.
package expand

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/berrym/lush/internal/color"
	"github.com/berrym/lush/internal/expand/template"
	"github.com/berrym/lush/internal/lerrors"
)

// MaxOutput bounds the final rendered prompt, mirroring the fixed 4096-byte
// output buffer of the original engine.
const MaxOutput = 4096

// RuntimeContext carries the shell-state values bash/zsh escapes depend on.
// Fields left at their zero value render as "0", matching an uninitialized
// C int in the original engine.
type RuntimeContext struct {
	LastExitStatus int
	JobCount       int
	HistoryNumber  int
	CommandNumber  int

	// ColorDepth gates %F{...}/%K{...} color emission; see internal/color.
	ColorDepth color.Depth

	// ShellName, ShellVersionMajor/Minor and ShellVersionFull back \s, \v,
	// \V, injected by the caller rather than hardcoded, since the original
	// engine sources them from a version header external to this package.
	ShellName         string
	ShellVersionMajor int
	ShellVersionMinor int
	ShellVersionFull  string

	// TTYName backs \l; empty means "no controlling tty" and renders "?".
	TTYName string

	// Now, if non-zero, is used in place of time.Now() so callers (and
	// tests) get deterministic \d/\t/%D{...} output. Zero means "use the
	// real clock".
	Now time.Time
}

// TemplateContext is the Pass-1 evaluation context; nil skips Pass 1
// entirely, matching spec.md's "template_ctx == NULL -> skip" contract.
type TemplateContext = template.Context

// Expand runs the full two-pass pipeline over format: Pass 1 resolves
// "${...}" segments (skipped if tmplCtx is nil), Pass 2 expands "\X"/"%X"
// escapes. The result is always non-empty-safe and never exceeds
// MaxOutput bytes.
func Expand(format string, tmplCtx *TemplateContext, runtimeCtx *RuntimeContext) (string, error) {
	if runtimeCtx == nil {
		return "", lerrors.ErrNullPointer
	}

	pass2Input := format
	if tmplCtx != nil {
		pass2Input = template.Evaluate(format, *tmplCtx)
	}

	out := expandEscapes(pass2Input, runtimeCtx)
	if len(out) > MaxOutput {
		out = out[:MaxOutput]
	}
	return out, nil
}

func expandEscapes(input string, ctx *RuntimeContext) string {
	var b strings.Builder
	p := input

	for len(p) > 0 {
		if b.Len() >= MaxOutput {
			break
		}

		c := p[0]

		// ANSI passthrough is checked first so embedded CSI sequences from
		// Pass 1 survive Pass 2 untouched.
		if c == 0x1b {
			consumed := copyANSI(&b, p)
			p = p[consumed:]
			continue
		}

		if c == '\\' && len(p) > 1 {
			consumed := expandBash(&b, p, ctx)
			p = p[consumed:]
			continue
		}

		if c == '%' && len(p) > 1 {
			consumed := expandZsh(&b, p, ctx)
			p = p[consumed:]
			continue
		}

		b.WriteByte(c)
		p = p[1:]
	}

	return b.String()
}

// copyANSI copies an ESC '[' ... final-byte sequence verbatim and returns
// how many input bytes were consumed. If p isn't actually a CSI sequence
// (ESC not followed by '['), only the ESC byte is consumed.
func copyANSI(b *strings.Builder, p string) int {
	b.WriteByte(p[0])
	if len(p) < 2 || p[1] != '[' {
		return 1
	}
	b.WriteByte(p[1])
	i := 2
	for i < len(p) && p[i] < 0x40 {
		b.WriteByte(p[i])
		i++
	}
	if i < len(p) {
		b.WriteByte(p[i])
		i++
	}
	return i
}

func now(ctx *RuntimeContext) time.Time {
	if ctx.Now.IsZero() {
		return time.Now()
	}
	return ctx.Now
}

func username() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}

func homeDir() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.HomeDir
}

func hostnameShort() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	if i := strings.IndexByte(h, '.'); i >= 0 {
		return h[:i]
	}
	return h
}

func hostnameFull() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}

func cwdTilde() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	home := homeDir()
	if home != "" && (cwd == home || strings.HasPrefix(cwd, home+"/")) {
		return "~" + cwd[len(home):]
	}
	return cwd
}

func cwdBasename() string {
	tilde := cwdTilde()
	switch tilde {
	case "~", "/":
		return tilde
	}
	if i := strings.LastIndexByte(tilde, '/'); i >= 0 {
		return tilde[i+1:]
	}
	return tilde
}

// expandBash expands one bash "\X" escape starting at p (p[0] == '\\') and
// returns the number of input bytes consumed.
func expandBash(b *strings.Builder, p string, ctx *RuntimeContext) int {
	next := p[1]
	consumed := 2

	switch next {
	case 'u':
		b.WriteString(username())
	case 'h':
		b.WriteString(hostnameShort())
	case 'H':
		b.WriteString(hostnameFull())
	case 'w':
		b.WriteString(cwdTilde())
	case 'W':
		b.WriteString(cwdBasename())
	case 'd':
		b.WriteString(now(ctx).Format("Mon Jan 02"))
	case 't':
		b.WriteString(now(ctx).Format("15:04:05"))
	case 'T':
		b.WriteString(now(ctx).Format("03:04:05"))
	case '@':
		b.WriteString(now(ctx).Format("03:04 PM"))
	case 'A':
		b.WriteString(now(ctx).Format("15:04"))
	case '$':
		if os.Geteuid() == 0 {
			b.WriteByte('#')
		} else {
			b.WriteByte('$')
		}
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case '\\':
		b.WriteByte('\\')
	case '[', ']':
		// Non-printing markers: consumed, emit nothing.
	case '!':
		b.WriteString(strconv.Itoa(ctx.HistoryNumber))
	case '#':
		b.WriteString(strconv.Itoa(ctx.CommandNumber))
	case 'j':
		b.WriteString(strconv.Itoa(ctx.JobCount))
	case 'l':
		if ctx.TTYName == "" {
			b.WriteByte('?')
		} else {
			b.WriteString(ctx.TTYName)
		}
	case 's':
		b.WriteString(ctx.ShellName)
	case 'v':
		fmt.Fprintf(b, "%d.%d", ctx.ShellVersionMajor, ctx.ShellVersionMinor)
	case 'V':
		b.WriteString(ctx.ShellVersionFull)
	case 'e':
		b.WriteByte(0x1b)
	case 'a':
		b.WriteByte(0x07)
	case '0':
		n, consumedDigits := readOctal(p[2:])
		if n <= 255 {
			b.WriteByte(byte(n))
		}
		consumed += consumedDigits
	case 'x':
		n, consumedDigits := readHex(p[2:])
		if n <= 255 {
			b.WriteByte(byte(n))
		}
		consumed += consumedDigits
	default:
		b.WriteByte('\\')
		b.WriteByte(next)
	}

	return consumed
}

func readOctal(s string) (val int, consumed int) {
	for consumed < 3 && consumed < len(s) && s[consumed] >= '0' && s[consumed] <= '7' {
		val = val*8 + int(s[consumed]-'0')
		consumed++
	}
	return val, consumed
}

func readHex(s string) (val int, consumed int) {
	for consumed < 2 && consumed < len(s) && isHexDigit(s[consumed]) {
		val = val*16 + hexDigitValue(s[consumed])
		consumed++
	}
	return val, consumed
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexDigitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

// expandZsh expands one zsh "%X" escape starting at p (p[0] == '%') and
// returns the number of input bytes consumed.
func expandZsh(b *strings.Builder, p string, ctx *RuntimeContext) int {
	next := p[1]
	consumed := 2

	switch next {
	case 'n':
		b.WriteString(username())
	case 'm':
		b.WriteString(hostnameShort())
	case 'M':
		b.WriteString(hostnameFull())
	case 'd', '/':
		if cwd, err := os.Getwd(); err == nil {
			b.WriteString(cwd)
		}
	case '~':
		b.WriteString(cwdTilde())
	case 'c', '.':
		b.WriteString(cwdBasename())
	case '#':
		if os.Geteuid() == 0 {
			b.WriteByte('#')
		} else {
			b.WriteByte('%')
		}
	case '%':
		b.WriteByte('%')
	case 'T':
		b.WriteString(now(ctx).Format("15:04"))
	case 't', '@':
		b.WriteString(strings.TrimLeft(now(ctx).Format("03:04 PM"), "0"))
	case '*':
		b.WriteString(now(ctx).Format("15:04:05"))
	case 'j':
		b.WriteString(strconv.Itoa(ctx.JobCount))
	case 'l':
		b.WriteString(ctx.TTYName)
	case '?':
		b.WriteString(strconv.Itoa(ctx.LastExitStatus))
	case 'D':
		n := expandZshDate(b, p[2:], ctx)
		consumed += n
	case 'B':
		b.WriteString("\x1b[1m")
	case 'b':
		b.WriteString("\x1b[22m")
	case 'U':
		b.WriteString("\x1b[4m")
	case 'u':
		b.WriteString("\x1b[24m")
	case 'S':
		b.WriteString("\x1b[7m")
	case 's':
		b.WriteString("\x1b[27m")
	case 'F':
		n := expandZshColor(b, p[2:], ctx, true)
		consumed += n
	case 'f':
		b.WriteString(color.ResetFG)
	case 'K':
		n := expandZshColor(b, p[2:], ctx, false)
		consumed += n
	case 'k':
		b.WriteString(color.ResetBG)
	default:
		b.WriteByte('%')
		b.WriteByte(next)
	}

	return consumed
}

// expandZshDate handles "%D{fmt}" / bare "%D" and returns bytes consumed
// from rest (i.e. not counting the "%D" already accounted for).
func expandZshDate(b *strings.Builder, rest string, ctx *RuntimeContext) int {
	if len(rest) == 0 || rest[0] != '{' {
		b.WriteString(now(ctx).Format("06-01-02"))
		return 0
	}
	end := strings.IndexByte(rest, '}')
	if end < 0 {
		b.WriteString(now(ctx).Format("06-01-02"))
		return 0
	}
	cFormat := rest[1:end]
	b.WriteString(now(ctx).Format(strftimeToGo(cFormat)))
	return end + 1
}

// expandZshColor handles "%F{spec}" / "%K{spec}" and returns bytes
// consumed from rest.
func expandZshColor(b *strings.Builder, rest string, ctx *RuntimeContext, fg bool) int {
	if len(rest) == 0 || rest[0] != '{' {
		return 0
	}
	end := strings.IndexByte(rest, '}')
	if end < 0 {
		return 0
	}
	spec := rest[1:end]
	if c, ok := color.Parse(spec, ctx.ColorDepth); ok {
		b.WriteString(color.Emit(c, fg))
	}
	return end + 1
}

// strftimeToGo translates the small set of strftime directives the
// original engine's %D{...} supports into a Go reference-time layout.
func strftimeToGo(cFormat string) string {
	replacer := strings.NewReplacer(
		"%Y", "2006",
		"%y", "06",
		"%m", "01",
		"%d", "02",
		"%H", "15",
		"%M", "04",
		"%S", "05",
		"%a", "Mon",
		"%A", "Monday",
		"%b", "Jan",
		"%B", "January",
	)
	return replacer.Replace(cFormat)
}
