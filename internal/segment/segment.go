// Package segment implements the named segment registry and built-in
// segments (user, directory, git, status, ...) the powerline renderer and
// the template engine's "${segment}" resolution both draw from. The
// presentation-vs-assessment split — a segment formats what a lower-level
// probe already computed, it never shells out itself — follows the CPI-SI
// statusline example's statusline/lib/git.go next to its system/lib/git.go
// assessment layer.
package segment

import (
	"github.com/berrym/lush/internal/promptctx"
	"github.com/berrym/lush/internal/theme"
)

// Result is a segment's rendered content plus an explicit empty flag, so
// "" (legitimately empty, e.g. a clean status icon) and "nothing to show,
// skip this segment" stay distinguishable from each other per spec.md §3.
type Result struct {
	Content string
	IsEmpty bool
}

func emptyResult() Result { return Result{IsEmpty: true} }

func textResult(s string) Result {
	if s == "" {
		return emptyResult()
	}
	return Result{Content: s}
}

// RenderFunc computes a segment's content for a given runtime context and
// the active theme, so a segment can consult the theme's configurable
// glyphs (SymbolSet: branch/dirty/clean icons, separators) instead of
// hardcoding them.
type RenderFunc func(ctx *promptctx.Context, th theme.Theme) Result

// VisibleFunc reports whether a segment should be considered for this
// render at all, independent of whether its render happens to be empty.
type VisibleFunc func(ctx *promptctx.Context, th theme.Theme) bool

// Descriptor is a single registry row: a name, its render function, and an
// optional visibility predicate. It carries no state beyond these.
type Descriptor struct {
	Name    string
	Render  RenderFunc
	Visible VisibleFunc
}

// Registry is a name -> Descriptor lookup table.
type Registry struct {
	segments map[string]Descriptor
}

// NewRegistry builds a Registry pre-populated with the built-in segments.
func NewRegistry() *Registry {
	r := &Registry{segments: make(map[string]Descriptor)}
	for _, d := range builtins() {
		r.Register(d)
	}
	return r
}

// Register adds or replaces a segment under its Name.
func (r *Registry) Register(d Descriptor) {
	r.segments[d.Name] = d
}

// Lookup returns the segment registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.segments[name]
	return d, ok
}

// RenderNamed looks up name and renders it; unknown names resolve as the
// empty, not-empty-flagged result so callers can skip them the same way
// an unfound segment is skipped in the enabled-segment walk.
func (r *Registry) RenderNamed(name string, ctx *promptctx.Context, th theme.Theme) (Result, bool) {
	d, ok := r.Lookup(name)
	if !ok {
		return Result{}, false
	}
	if d.Visible != nil && !d.Visible(ctx, th) {
		return emptyResult(), true
	}
	return d.Render(ctx, th), true
}
