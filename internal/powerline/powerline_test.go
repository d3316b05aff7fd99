package powerline

import (
	"strings"
	"testing"

	"github.com/berrym/lush/internal/promptctx"
	"github.com/berrym/lush/internal/segment"
	"github.com/berrym/lush/internal/theme"
)

func testTheme(enabled ...string) theme.Theme {
	th := theme.Default()
	th.Layout.Style = theme.StylePowerline
	th.Enabled = enabled
	return th
}

func TestRenderNoEnabledSegmentsIsEmpty(t *testing.T) {
	r := segment.NewRegistry()
	out, err := Render(theme.Default(), r, &promptctx.Context{}, LeftToRight)
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestRenderNilRegistryFails(t *testing.T) {
	_, err := Render(theme.Default(), nil, &promptctx.Context{}, LeftToRight)
	if err == nil {
		t.Fatal("expected error for nil registry")
	}
}

func TestRenderSkipsEmptySegments(t *testing.T) {
	r := segment.NewRegistry()
	th := testTheme("user", "directory")
	ctx := &promptctx.Context{Cwd: "/tmp"} // no username set
	out, err := Render(th, r, ctx, LeftToRight)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "/tmp") {
		t.Errorf("expected directory content present, got %q", out)
	}
}

func TestRenderSkipsHiddenViaOverride(t *testing.T) {
	r := segment.NewRegistry()
	th := testTheme("user", "directory")
	th.Segments = map[string]theme.SegmentOverride{
		"directory": {Show: false, ShowSet: true},
	}
	ctx := &promptctx.Context{Username: "alice", Cwd: "/tmp"}
	out, err := Render(th, r, ctx, LeftToRight)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "/tmp") {
		t.Errorf("expected directory suppressed by override, got %q", out)
	}
	if !strings.Contains(out, "alice") {
		t.Errorf("expected user content present, got %q", out)
	}
}

func TestRenderSeparatorCountMatchesVisibleSegments(t *testing.T) {
	r := segment.NewRegistry()
	th := testTheme("user", "directory")
	ctx := &promptctx.Context{Username: "alice", Cwd: "/tmp"}
	out, err := Render(th, r, ctx, LeftToRight)
	if err != nil {
		t.Fatal(err)
	}
	count := strings.Count(out, DefaultSeparatorLeft)
	if count != 2 {
		t.Errorf("expected 2 separators (one per segment, left-to-right), got %d in %q", count, out)
	}
}

func TestRenderRightToLeftUsesRightSeparator(t *testing.T) {
	r := segment.NewRegistry()
	th := testTheme("user")
	ctx := &promptctx.Context{Username: "alice"}
	out, err := Render(th, r, ctx, RightToLeft)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, DefaultSeparatorRight) {
		t.Errorf("expected right separator glyph present, got %q", out)
	}
}

func TestStripANSIRemovesCSISequences(t *testing.T) {
	got := stripANSI("\x1b[31mred\x1b[0m text")
	if got != "red text" {
		t.Errorf("got %q", got)
	}
}

func TestStripANSIPassesPlainTextThrough(t *testing.T) {
	got := stripANSI("plain text")
	if got != "plain text" {
		t.Errorf("got %q", got)
	}
}

func TestResolveColorsUsesDefaultBackgroundForUnknownSegment(t *testing.T) {
	fg, bg := resolveColors(theme.Default(), "made-up-segment", &promptctx.Context{HasTrueColor: true})
	if fg.R != 255 || fg.G != 255 || fg.B != 255 {
		t.Errorf("expected default white foreground, got %+v", fg)
	}
	if bg != defaultBackground["unknown"] {
		t.Errorf("expected unknown-segment default background, got %+v", bg)
	}
}

func TestResolveColorsAppliesOverride(t *testing.T) {
	th := theme.Default()
	th.Segments = map[string]theme.SegmentOverride{
		"directory": {BG: "#000000", BGSet: true},
	}
	_, bg := resolveColors(th, "directory", &promptctx.Context{HasTrueColor: true})
	if bg.R != 0 || bg.G != 0 || bg.B != 0 {
		t.Errorf("expected overridden black background, got %+v", bg)
	}
}

func TestRenderMaxVisibleBound(t *testing.T) {
	r := segment.NewRegistry()
	names := make([]string, 0, MaxVisible+5)
	for i := 0; i < MaxVisible+5; i++ {
		names = append(names, "user")
	}
	th := testTheme(names...)
	ctx := &promptctx.Context{Username: "alice"}
	_, err := Render(th, r, ctx, LeftToRight)
	if err != nil {
		t.Fatal(err)
	}
}
