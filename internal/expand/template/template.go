// Package template implements Pass 1 of the prompt expansion pipeline: a
// small recursive-descent resolver for "${segment}", "${segment.property}"
// and "${?cond:then:else}" syntax, plus its own "\n", "\\", "\$" escapes.
// Everything else — bash "\X" and zsh "%X" escapes — is left untouched for
// Pass 2 (internal/expand) to pick up.
//
// The scanner shape (a pos int cursor over a string with peek/advance
// helpers) follows the teacher's hand-rolled line scanners rather than a
// parser-generator or regexp approach, which is how the rest of the pack
// handles small embedded grammars.
package template

import "strings"

// Segment resolves a single "${name}" or "${name.property}" reference to its
// rendered text. property is empty for a bare "${name}" reference.
type Segment func(name, property string) (string, bool)

// Cond resolves the condition clause of "${?cond:then:else}" to a boolean.
type Cond func(name string) bool

// Context supplies the callbacks the resolver needs to evaluate a template.
// A nil Resolve makes segment references resolve to empty output, and a nil
// Eval makes every conditional take its else branch, rather than panicking,
// matching the "unknown names are silently skipped" invariant used
// elsewhere in the rendering core.
type Context struct {
	Resolve Segment
	Eval    Cond
}

// MaxOutput bounds the size of the resolved template, mirroring the
// original engine's fixed 4096-byte intermediate buffer between Pass 1 and
// Pass 2. Output beyond this size is silently truncated.
const MaxOutput = 4096

// Evaluate runs Pass 1 over format and returns the resolved string,
// truncated to MaxOutput bytes if necessary.
func Evaluate(format string, ctx Context) string {
	var b strings.Builder
	p := &parser{input: format, ctx: ctx}
	for p.pos < len(p.input) {
		if b.Len() >= MaxOutput {
			break
		}
		p.step(&b)
	}
	out := b.String()
	if len(out) > MaxOutput {
		out = out[:MaxOutput]
	}
	return out
}

type parser struct {
	input string
	pos   int
	ctx   Context
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) peekAt(offset int) byte {
	i := p.pos + offset
	if i >= len(p.input) {
		return 0
	}
	return p.input[i]
}

// step consumes exactly one construct (a literal byte, an escape, or a
// "${...}" reference) and appends its resolution to b.
func (p *parser) step(b *strings.Builder) {
	c := p.peek()

	if c == '\\' && p.pos+1 < len(p.input) {
		next := p.peekAt(1)
		switch next {
		case 'n':
			b.WriteByte('\n')
			p.pos += 2
			return
		case '\\':
			b.WriteByte('\\')
			p.pos += 2
			return
		case '$':
			b.WriteByte('$')
			p.pos += 2
			return
		default:
			// Not one of the template engine's own escapes: pass the
			// backslash through literally so Pass 2 sees it.
			b.WriteByte(c)
			p.pos++
			return
		}
	}

	if c == '$' && p.peekAt(1) == '{' {
		p.pos += 2 // consume "${"
		p.resolveReference(b)
		return
	}

	b.WriteByte(c)
	p.pos++
}

// resolveReference parses the body of a "${...}" construct, assuming "${"
// has already been consumed, and leaves pos just past the matching "}".
func (p *parser) resolveReference(b *strings.Builder) {
	start := p.pos
	depth := 1
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				body := p.input[start:p.pos]
				p.pos++ // consume closing "}"
				b.WriteString(p.evalBody(body))
				return
			}
		}
		p.pos++
	}
	// Unterminated "${": emit nothing further, matching "silently skipped".
	_ = p.input[start:p.pos]
}

// evalBody dispatches on whether body is a conditional ("?cond:then:else")
// or a plain segment reference ("name" or "name.property").
func (p *parser) evalBody(body string) string {
	if strings.HasPrefix(body, "?") {
		return p.evalConditional(body[1:])
	}
	name, property, _ := strings.Cut(body, ".")
	if p.ctx.Resolve == nil {
		return ""
	}
	text, ok := p.ctx.Resolve(name, property)
	if !ok {
		return ""
	}
	return text
}

// evalConditional splits "cond:then:else" on unescaped ':' and evaluates
// cond through ctx.Eval.
func (p *parser) evalConditional(rest string) string {
	parts := splitUnescapedColon(rest, 3)
	if len(parts) != 3 {
		return ""
	}
	cond, thenText, elseText := parts[0], parts[1], parts[2]
	taken := false
	if p.ctx.Eval != nil {
		taken = p.ctx.Eval(cond)
	}
	if taken {
		return thenText
	}
	return elseText
}

// splitUnescapedColon splits s into at most n fields on ':' bytes that are
// not preceded by a backslash; the backslash is consumed (not retained) in
// the output fields.
func splitUnescapedColon(s string, n int) []string {
	var fields []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == ':' {
			cur.WriteByte(':')
			i++
			continue
		}
		if s[i] == ':' && len(fields) < n-1 {
			fields = append(fields, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	fields = append(fields, cur.String())
	return fields
}
