package viz

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/phsim/internal/beaker"
	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/grid"
)

var testColors = chem.Colors{Substance: "#f2c94c", Primary: "#eb5757", Secondary: "#9b51e0"}

func testApp(s chem.Substance) *App {
	s.Colors = testColors
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return NewApp(AppConfig{
		Substance:       s,
		Molarity:        0.1,
		BeakerVolume:    50,
		TitrantMolarity: 0.1,
		MaxVolume:       100,
		Columns:         10,
		Rows:            8,
		Seed:            5,
		Scheduler:       beaker.ImmediateScheduler(),
		Clock:           func() time.Time { return epoch },
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var acetic = chem.NewWeakAcid("acetic_acid", "CH3COOH", "CH₃COO⁻", 1.8e-5, 2)

func TestAppTitration(t *testing.T) {
	app := testApp(acetic)
	defer app.Close()
	start := app.ph

	app.Update(key("a"))
	if app.volume != 5 {
		t.Errorf("expected volume 5, got %f", app.volume)
	}
	if app.ph <= start {
		t.Errorf("expected pH to rise from %f, got %f", start, app.ph)
	}
	if len(app.curve) != 2 {
		t.Errorf("expected 2 curve points, got %d", len(app.curve))
	}
	if app.beaker.Counts().Total() > app.capacity() {
		t.Error("beaker overflowed")
	}

	app.Update(key("s"))
	if app.salt != 0 || app.status == "" {
		t.Error("salt should be refused during a titration")
	}
}

func TestAppSalt(t *testing.T) {
	app := testApp(acetic)
	defer app.Close()
	before := app.beaker.Counts()

	app.Update(key("s"))
	if app.salt == 0 {
		t.Fatal("expected salt to be added")
	}
	after := app.beaker.Counts()
	if after.Primary >= before.Primary {
		t.Errorf("salt should consume primary ions: %+v -> %+v", before, after)
	}
	if want := app.saltModel.PH(float64(app.salt)); app.ph != want {
		t.Errorf("expected pH %f, got %f", want, app.ph)
	}
	if len(app.curve) != 2 {
		t.Errorf("expected 2 curve points, got %d", len(app.curve))
	}
}

func TestAppSaltRefusedForStrong(t *testing.T) {
	app := testApp(chem.NewStrongAcid("hydrochloric_acid", "HCl", "Cl⁻"))
	defer app.Close()
	app.Update(key("s"))
	if app.salt != 0 || app.status == "" {
		t.Error("strong acids take no salt")
	}
}

func TestAppUndo(t *testing.T) {
	app := testApp(acetic)
	defer app.Close()
	initial := app.beaker.Particles()

	app.Update(key("a"))
	app.Update(key("a"))
	app.Update(key("u"))
	app.Update(key("u"))

	if app.volume != 0 || len(app.curve) != 1 {
		t.Errorf("undo left volume %f and %d curve points", app.volume, len(app.curve))
	}
	got := app.beaker.Particles()
	if len(got) != len(initial) {
		t.Fatalf("expected %d particles, got %d", len(initial), len(got))
	}
	for i := range got {
		if got[i].ID != initial[i].ID || got[i].Type != initial[i].Type {
			t.Errorf("particle %d not restored", i)
		}
	}

	app.Update(key("u"))
	if app.status == "" {
		t.Error("expected a status for an empty history")
	}
}

func TestAppWater(t *testing.T) {
	app := testApp(acetic)
	defer app.Close()

	app.Update(key("down"))
	app.Update(key("down"))
	if app.beaker.EffectiveRows() != 6 {
		t.Errorf("expected 6 rows, got %d", app.beaker.EffectiveRows())
	}
	for _, p := range app.beaker.Particles() {
		if p.Position.Row >= 6 {
			t.Errorf("particle above the water at %v", p.Position)
		}
	}

	for i := 0; i < 5; i++ {
		app.Update(key("up"))
	}
	if app.beaker.EffectiveRows() != 8 {
		t.Errorf("expected water capped at 8 rows, got %d", app.beaker.EffectiveRows())
	}
}

func TestAppView(t *testing.T) {
	app := testApp(acetic)
	defer app.Close()
	app.Update(key("a"))

	view := app.View()
	for _, want := range []string{"ACETIC ACID", "pH", "titration", "A:Titrant"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppQuit(t *testing.T) {
	app := testApp(acetic)
	defer app.Close()
	_, cmd := app.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestRenderBeaker(t *testing.T) {
	particles := []beaker.Particle{
		{ID: "a", Position: grid.Position{Col: 0, Row: 0}, DisplayColor: "#ff0000", TargetColor: "#ff0000"},
		{ID: "b", Position: grid.Position{Col: 3, Row: 2}, DisplayColor: "#0000ff", TargetColor: "#0000ff"},
	}
	out := RenderBeaker(particles, 4, 5, 3, nil, time.Now())
	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 5 rows and a base, got %d lines", len(lines))
	}
	if strings.Count(out, particleGlyph) != 2 {
		t.Errorf("expected 2 particles, got %d", strings.Count(out, particleGlyph))
	}
	if strings.Contains(lines[0], waterGlyph) {
		t.Error("row above the water should be empty")
	}
	if !strings.Contains(lines[4], particleGlyph) {
		t.Error("row 0 should be drawn last")
	}
}

func TestRenderBeaker_HidesPendingAppearance(t *testing.T) {
	now := time.Now()
	particles := []beaker.Particle{
		{ID: "a", IsInitialAppearance: true, CreatedAt: now, TransitionDelayMs: 100, DisplayColor: "#ff0000", TargetColor: "#ff0000"},
	}
	if strings.Contains(RenderBeaker(particles, 2, 2, 2, nil, now), particleGlyph) {
		t.Error("particle drawn before its delay")
	}
	if !strings.Contains(RenderBeaker(particles, 2, 2, 2, nil, now.Add(time.Second)), particleGlyph) {
		t.Error("particle hidden after its delay")
	}
}

func TestTransitions(t *testing.T) {
	now := time.Now()
	ts := make(Transitions)
	ts.Track(beaker.Diff{Transmuted: []beaker.Transmutation{{ID: "x", From: beaker.PrimaryIon, To: beaker.Substance}}}, testColors, now)

	tr, ok := ts["x"]
	if !ok {
		t.Fatal("transition not tracked")
	}
	if tr.From != testColors.Primary {
		t.Errorf("expected from %s, got %s", testColors.Primary, tr.From)
	}
	if p := tr.Progress(now); p != 0 {
		t.Errorf("expected progress 0 before the delay, got %f", p)
	}

	ts.Prune(now.Add(time.Second))
	if len(ts) != 0 {
		t.Error("finished transition not pruned")
	}

	ts.Track(beaker.Diff{Transmuted: []beaker.Transmutation{{ID: "y"}}}, testColors, now)
	ts.Track(beaker.Diff{Reset: true}, testColors, now)
	if len(ts) != 0 {
		t.Error("reset should clear transitions")
	}
}

func TestGaugeSettles(t *testing.T) {
	g := NewGauge(fps, 7)
	g.SetTarget(3)
	for i := 0; i < 10*fps; i++ {
		g.Update()
	}
	if !g.Settled(1e-3) {
		t.Errorf("gauge did not settle: %f", g.Value())
	}
	if math.Abs(g.Value()-3) > 1e-3 {
		t.Errorf("expected 3, got %f", g.Value())
	}
}

func TestRenderPHScale(t *testing.T) {
	out := RenderPHScale(7, 15)
	if !strings.Contains(out, "pH 7.00") {
		t.Errorf("missing label: %q", out)
	}
	if strings.Count(out, "▼") != 1 {
		t.Error("expected one marker")
	}
	if !strings.Contains(RenderPHScale(-3, 15), "▼") {
		t.Error("out of range pH should clamp onto the scale")
	}
}

func TestPlotCurve(t *testing.T) {
	curve := chem.GenerateTitrationCurveN(acetic, 0.1, 50, 0.1, 100, 30)
	if PlotCurve(curve, 30, 6, "pH") == "" {
		t.Error("expected a plot")
	}
	if PlotCurve(curve[:1], 30, 6, "pH") != "" {
		t.Error("expected no plot for one point")
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme(ThemeIndicator.Name)
	if PHColor(0) != ThemeIndicator.Acid {
		t.Errorf("pH 0 should be the acid color, got %s", PHColor(0))
	}
	if PHColor(14) != ThemeIndicator.Base {
		t.Errorf("pH 14 should be the base color, got %s", PHColor(14))
	}

	SetTheme("litmus")
	if CurrentTheme.Name != "litmus" {
		t.Errorf("expected litmus, got %s", CurrentTheme.Name)
	}
	NextTheme()
	if CurrentTheme.Name != "minimal" {
		t.Errorf("expected minimal, got %s", CurrentTheme.Name)
	}
	if GetTheme("nope").Name != ThemeIndicator.Name {
		t.Error("unknown theme should fall back to indicator")
	}
}
