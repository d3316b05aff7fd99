// Package theme decodes and holds named prompt themes: layout, symbol set,
// color set, and the bounded enabled-segment list with per-segment
// overrides. The struct shapes and the defaults-then-decode merge pattern
// are carried over from the teacher's internal/config.Config, which solves
// the same "nested YAML-tagged struct with sane zero-value defaults"
// problem for AgentOps's own settings file.
package theme

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/berrym/lush/internal/lerrors"
)

// MaxEnabledSegments bounds the enabled-segment list, per spec.md §3.
const MaxEnabledSegments = 32

// Style selects the render path the composer dispatches to.
type Style string

const (
	StylePlain     Style = "plain"
	StylePowerline Style = "powerline"
)

// Layout holds the top-level rendering knobs of a theme.
type Layout struct {
	Style               Style  `yaml:"style"`
	PS1Format           string `yaml:"ps1_format"`
	PS2Format           string `yaml:"ps2_format"`
	EnableTransient     bool   `yaml:"enable_transient"`
	TransientFormat     string `yaml:"transient_format"`
	NewlineBeforePrompt bool   `yaml:"newline_before_prompt"`
}

// SymbolSet holds the glyphs a theme renders with: separators and
// branch/status icons.
type SymbolSet struct {
	SeparatorLeft  string `yaml:"separator_left"`
	SeparatorRight string `yaml:"separator_right"`
	BranchIcon     string `yaml:"branch_icon"`
	DirtyIcon      string `yaml:"dirty_icon"`
	CleanIcon      string `yaml:"clean_icon"`
}

// ColorSet holds the theme-wide text/accent colors (as parseable specs, the
// same vocabulary internal/color.Parse accepts).
type ColorSet struct {
	Text   string `yaml:"text"`
	Accent string `yaml:"accent"`
}

// SegmentOverride overrides a single segment's fg/bg/visibility. The *Set
// fields distinguish "field absent from YAML" from "field present and set
// to its zero value", since an override explicitly setting fg to "" (clear
// it) differs from not mentioning fg at all.
type SegmentOverride struct {
	FG      string `yaml:"fg,omitempty"`
	FGSet   bool   `yaml:"-"`
	BG      string `yaml:"bg,omitempty"`
	BGSet   bool   `yaml:"-"`
	Show    bool   `yaml:"show,omitempty"`
	ShowSet bool   `yaml:"-"`
}

// UnmarshalYAML implements custom decoding so the *Set bits reflect which
// keys were actually present in the document, not just their zero values.
func (o *SegmentOverride) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		FG   *string `yaml:"fg"`
		BG   *string `yaml:"bg"`
		Show *bool   `yaml:"show"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.FG != nil {
		o.FG, o.FGSet = *raw.FG, true
	}
	if raw.BG != nil {
		o.BG, o.BGSet = *raw.BG, true
	}
	if raw.Show != nil {
		o.Show, o.ShowSet = *raw.Show, true
	}
	return nil
}

// Theme is a complete named prompt theme.
type Theme struct {
	Name     string                     `yaml:"name"`
	Layout   Layout                     `yaml:"layout"`
	Symbols  SymbolSet                  `yaml:"symbols"`
	Colors   ColorSet                   `yaml:"colors"`
	Enabled  []string                   `yaml:"enabled_segments"`
	Segments map[string]SegmentOverride `yaml:"segments"`
}

// Default returns the built-in fallback theme: plain style, a minimal
// "user@host path $ " PS1, no segments enabled.
func Default() Theme {
	return Theme{
		Name: "default",
		Layout: Layout{
			Style:     StylePlain,
			PS1Format: `\u@\h \w \$ `,
			PS2Format: "> ",
		},
		Symbols: SymbolSet{
			SeparatorLeft:  "",
			SeparatorRight: "",
			BranchIcon:     "",
			DirtyIcon:      "*",
			CleanIcon:      "",
		},
	}
}

// Powerline returns a built-in preset exercising the powerline render path:
// user/directory/git/status segments, left-to-right block assembly.
func Powerline() Theme {
	return Theme{
		Name: "powerline",
		Layout: Layout{
			Style:     StylePowerline,
			PS2Format: "> ",
		},
		Symbols: SymbolSet{
			SeparatorLeft:  "",
			SeparatorRight: "",
			BranchIcon:     "",
			DirtyIcon:      "*",
			CleanIcon:      "",
		},
		Enabled: []string{"user", "directory", "git", "status"},
	}
}

// Decode parses YAML theme bytes into a Theme, starting from Default() so
// unset fields keep sane values — the same "defaults, then overlay the
// decoded document" shape as the teacher's config loader.
func Decode(data []byte) (Theme, error) {
	th := Default()
	if len(data) == 0 {
		return th, nil
	}
	if err := yaml.Unmarshal(data, &th); err != nil {
		return Theme{}, fmt.Errorf("lush: decode theme: %w", err)
	}
	if len(th.Enabled) > MaxEnabledSegments {
		th.Enabled = th.Enabled[:MaxEnabledSegments]
	}
	return th, nil
}

// Override returns the per-segment override for name, and whether one was
// configured at all.
func (t Theme) Override(name string) (SegmentOverride, bool) {
	o, ok := t.Segments[name]
	return o, ok
}

// Validate reports lerrors.ErrInvalidParameter if the theme's style isn't
// one of the two recognised values or empty.
func (t Theme) Validate() error {
	switch t.Layout.Style {
	case StylePlain, StylePowerline, "":
		return nil
	default:
		return fmt.Errorf("%w: unknown layout style %q", lerrors.ErrInvalidParameter, t.Layout.Style)
	}
}

// Registry is a named collection of themes, the "themes" argument to the
// composer's init(segments, themes) operation.
type Registry struct {
	themes map[string]Theme
}

// NewRegistry builds a Registry seeded with Default() under the name
// "default", plus any themes supplied.
func NewRegistry(themes ...Theme) *Registry {
	r := &Registry{themes: make(map[string]Theme)}
	d := Default()
	r.themes[d.Name] = d
	for _, th := range themes {
		r.Add(th)
	}
	return r
}

// Add registers or replaces a theme under its Name.
func (r *Registry) Add(th Theme) {
	r.themes[th.Name] = th
}

// Get looks up a theme by name.
func (r *Registry) Get(name string) (Theme, bool) {
	th, ok := r.themes[name]
	return th, ok
}

// Names returns the registered theme names in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	return names
}
