package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/phsim/internal/beaker"
	"github.com/san-kum/phsim/internal/buffer"
	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/experiment"
)

const (
	fps             = 30
	titrantSteps    = 20
	saltSteps       = 10
	historyCapacity = 100
	gaugeWidth      = 29
)

type TickMsg time.Time

type AppConfig struct {
	Substance       chem.Substance
	Molarity        float64
	BeakerVolume    float64
	TitrantMolarity float64
	MaxVolume       float64
	Columns         int
	Rows            int
	WaterLevel      float64
	Seed            int64
	Scheduler       beaker.Scheduler // nil uses real timers
	Clock           func() time.Time
}

type scenario int

const (
	scenarioNone scenario = iota
	scenarioTitration
	scenarioBuffer
)

// snapshot is what undo restores.
type snapshot struct {
	particles []beaker.Particle
	scenario  scenario
	volume    float64
	salt      int
	ph        float64
	curveLen  int
}

// App is the interactive beaker. All mutation happens on the Bubble Tea
// goroutine; the beaker's own timers only recolor particles, which the view
// re-reads every tick.
type App struct {
	cfg         AppConfig
	beaker      *beaker.Model
	transitions Transitions
	unsubscribe func()
	gauge       *Gauge

	scenario   scenario
	initial    chem.Counts
	saltModel  *buffer.Model
	salt       int
	volume     float64
	ph         float64
	curve      []chem.CurvePoint
	history    []snapshot
	waterLevel float64
	status     string
}

func NewApp(cfg AppConfig) *App {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Columns <= 0 {
		cfg.Columns = beaker.DefaultColumns
	}
	if cfg.Rows <= 0 {
		cfg.Rows = beaker.DefaultRows
	}
	if cfg.WaterLevel <= 0 {
		cfg.WaterLevel = float64(cfg.Rows)
	}

	a := &App{
		cfg: cfg,
		beaker: beaker.New(beaker.Config{
			Columns:   cfg.Columns,
			Rows:      cfg.Rows,
			Seed:      cfg.Seed,
			Scheduler: cfg.Scheduler,
			Clock:     cfg.Clock,
		}),
		transitions: make(Transitions),
		gauge:       NewGauge(fps, chem.NeutralPH),
		waterLevel:  cfg.WaterLevel,
	}
	a.unsubscribe = a.beaker.Subscribe(a.track)
	a.reset()
	a.gauge.Jump(a.ph)
	return a
}

// track runs synchronously inside this App's own beaker calls. Recolor-only
// diffs arrive from timer goroutines and are ignored.
func (a *App) track(d beaker.Diff) {
	if !d.Reset && len(d.Removed) == 0 && len(d.Transmuted) == 0 {
		return
	}
	a.transitions.Track(d, a.cfg.Substance.Colors, a.cfg.Clock())
}

func (a *App) Close() { a.unsubscribe() }

func (a *App) capacity() int { return a.beaker.Columns() * a.beaker.EffectiveRows() }

func (a *App) units() int { return a.capacity() / 2 }

func (a *App) reset() {
	s := a.cfg.Substance
	a.beaker.SetWaterLevel(a.waterLevel)
	a.initial = chem.SpeciesCounts(s, a.cfg.Molarity, a.units())
	a.beaker.Initialize(a.initial, s.Colors)

	a.saltModel = nil
	if !s.IsStrong() {
		a.saltModel = buffer.NewForSubstance(s, a.cfg.Molarity, a.initial)
	}
	a.scenario = scenarioNone
	a.salt = 0
	a.volume = 0
	a.ph = chem.CalculatePH(s, a.cfg.Molarity)
	a.curve = []chem.CurvePoint{{Volume: 0, PH: a.ph}}
	a.history = nil
	a.status = ""
	a.gauge.SetTarget(a.ph)
}

func (a *App) push() {
	a.history = append(a.history, snapshot{
		particles: a.beaker.Particles(),
		scenario:  a.scenario,
		volume:    a.volume,
		salt:      a.salt,
		ph:        a.ph,
		curveLen:  len(a.curve),
	})
	if len(a.history) > historyCapacity {
		a.history = a.history[1:]
	}
}

func (a *App) addTitrant() {
	if a.scenario == scenarioBuffer {
		a.status = "reset (r) before titrating a buffer"
		return
	}
	next := min(a.volume+a.cfg.MaxVolume/titrantSteps, a.cfg.MaxVolume)
	if next == a.volume {
		a.status = "burette empty"
		return
	}
	a.push()
	a.scenario = scenarioTitration
	a.volume = next

	s := a.cfg.Substance
	sp := chem.TitrationSpecies(s, a.cfg.Molarity, a.cfg.BeakerVolume, a.cfg.TitrantMolarity, a.volume)
	target := experiment.ToCounts(sp, float64(a.units())/a.cfg.Molarity, a.capacity())
	a.beaker.UpdateParticles(target, s.Colors, beaker.UpdateOptions{})

	a.ph = chem.TitrationPH(s, a.cfg.Molarity, a.cfg.BeakerVolume, a.cfg.TitrantMolarity, a.volume)
	a.curve = append(a.curve, chem.CurvePoint{Volume: a.volume, PH: a.ph})
	a.gauge.SetTarget(a.ph)
	a.status = ""
}

func (a *App) addSalt() {
	switch {
	case a.saltModel == nil:
		a.status = "salt needs a weak acid or base"
		return
	case a.scenario == scenarioTitration:
		a.status = "reset (r) before adding salt"
		return
	}
	maxSalt := a.saltModel.MaxSubstance()
	next := min(a.salt+max(1, maxSalt/saltSteps), maxSalt)
	if next <= a.salt {
		a.status = "no more salt dissolves"
		return
	}
	a.push()
	a.scenario = scenarioBuffer
	a.beaker.AddWithReaction(beaker.CommonIonRule, next-a.salt, a.cfg.Substance.Colors)
	a.salt = next

	a.ph = a.saltModel.PH(float64(a.salt))
	a.curve = append(a.curve, chem.CurvePoint{Volume: float64(a.salt), PH: a.ph})
	a.gauge.SetTarget(a.ph)
	a.status = ""
}

func (a *App) undo() {
	if len(a.history) == 0 {
		a.status = "nothing to undo"
		return
	}
	snap := a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]

	a.beaker.SetParticles(snap.particles)
	a.scenario = snap.scenario
	a.volume = snap.volume
	a.salt = snap.salt
	a.ph = snap.ph
	a.curve = a.curve[:snap.curveLen]
	a.gauge.SetTarget(a.ph)
	a.status = ""
}

func (a *App) adjustWater(delta float64) {
	level := min(max(a.waterLevel+delta, 1), float64(a.cfg.Rows))
	if level == a.waterLevel {
		return
	}
	a.waterLevel = level
	a.reset()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (a *App) Init() tea.Cmd { return tick() }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "a":
			a.addTitrant()
		case "s":
			a.addSalt()
		case "u":
			a.undo()
		case "r":
			a.reset()
		case "t":
			NextTheme()
		case "up", "k":
			a.adjustWater(1)
		case "down", "j":
			a.adjustWater(-1)
		}
	case TickMsg:
		a.gauge.Update()
		a.transitions.Prune(a.cfg.Clock())
		return a, tick()
	}
	return a, nil
}

func (a *App) View() string {
	s := a.cfg.Substance
	now := a.cfg.Clock()

	title := HeaderStyle.Render(fmt.Sprintf("%s  %s  %.3g M", strings.ToUpper(strings.ReplaceAll(s.Name, "_", " ")), s.Symbol, a.cfg.Molarity))
	beakerView := RenderBeaker(a.beaker.Particles(), a.beaker.Columns(), a.beaker.Rows(), a.beaker.EffectiveRows(), a.transitions, now)
	left := lipgloss.JoinVertical(lipgloss.Left, title, "", GlassPanel.Render(beakerView), "", a.legend())

	counts := a.beaker.Counts()
	var stats strings.Builder
	stats.WriteString(a.gauge.View(gaugeWidth) + "\n\n")
	stats.WriteString(Metric("scenario", a.scenarioName()) + "\n")
	switch a.scenario {
	case scenarioTitration:
		veq := chem.EquivalenceVolume(a.cfg.Molarity, a.cfg.BeakerVolume, a.cfg.TitrantMolarity)
		stats.WriteString(Metric("titrant", fmt.Sprintf("%.1f / %.1f", a.volume, a.cfg.MaxVolume)) + "\n")
		stats.WriteString(Metric("equivalence", fmt.Sprintf("%.1f", veq)) + "\n")
	case scenarioBuffer:
		stats.WriteString(Metric("salt", fmt.Sprintf("%d / %d", a.salt, a.saltModel.MaxSubstance())) + "\n")
	}
	stats.WriteString(Metric("water", fmt.Sprintf("%d rows", a.beaker.EffectiveRows())) + "\n")
	stats.WriteString(Metric(s.Symbol, fmt.Sprintf("%d", counts.Substance)) + "\n")
	stats.WriteString(Metric(s.PrimaryIon, fmt.Sprintf("%d", counts.Primary)) + "\n")
	stats.WriteString(Metric(s.SecondaryIon, fmt.Sprintf("%d", counts.Secondary)) + "\n")
	if plot := StyledCurve(a.curve, 30, 6, "pH"); plot != "" {
		stats.WriteString(plot + "\n")
	}
	if a.status != "" {
		stats.WriteString(StatusWarn.Render(a.status) + "\n")
	}
	stats.WriteString("\n" + Separator(gaugeWidth) + "\n")
	stats.WriteString(KeyHint.Render("A:Titrant S:Salt U:Undo R:Reset\n↑↓:Water  T:Theme  Q:Quit"))

	right := lipgloss.NewStyle().PaddingLeft(2).Render(BoxWithTitle("readout", stats.String(), gaugeWidth+4))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (a *App) legend() string {
	s := a.cfg.Substance
	swatch := func(color, label string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(particleGlyph) + " " + label
	}
	return strings.Join([]string{
		swatch(s.Colors.Substance, s.Symbol),
		swatch(s.Colors.Primary, s.PrimaryIon),
		swatch(s.Colors.Secondary, s.SecondaryIon),
	}, "   ")
}

func (a *App) scenarioName() string {
	switch a.scenario {
	case scenarioTitration:
		return "titration"
	case scenarioBuffer:
		return "buffer"
	default:
		return "equilibrium"
	}
}

// RunBeaker runs the interactive beaker until the user quits.
func RunBeaker(cfg AppConfig) error {
	app := NewApp(cfg)
	defer app.Close()
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}
