// Package beaker holds the particle view of a beaker and reconciles it with
// target species counts.
//
// A Model owns a particle list and the grid occupancy backing it. Mutating
// calls change both together, then notify listeners once with a Diff.
// Reconciliation prefers changing a particle's type in place over removing
// one particle and placing another, so ions appear to convert rather than
// vanish and reappear elsewhere.
//
// The only asynchrony is the deferred color transition after a type change.
// Those callbacks filter by particle id, so a callback that fires after a
// reset touches nothing.
package beaker

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/grid"
)

const (
	DefaultColumns = 14
	DefaultRows    = 12
)

// waterLevelRoundUp is the fractional row above which a partially filled
// row counts as visible.
const waterLevelRoundUp = 0.4

type Config struct {
	Columns   int
	Rows      int
	Seed      int64 // 0 seeds from the clock
	Scheduler Scheduler
	Timing    Timing
	Clock     func() time.Time
	NewID     func() string
}

func DefaultConfig() Config {
	return Config{Columns: DefaultColumns, Rows: DefaultRows}
}

// Listener receives the Diff of every mutating call.
type Listener func(Diff)

// UpdateOptions tune UpdateParticles.
type UpdateOptions struct {
	// Instant recolors transmuted particles immediately instead of
	// scheduling a color transition.
	Instant bool
}

type Model struct {
	mu            sync.Mutex
	cfg           Config
	grid          *grid.Grid
	particles     []Particle
	effectiveRows int
	listeners     map[int]Listener
	nextListener  int
}

func New(cfg Config) *Model {
	if cfg.Columns <= 0 {
		cfg.Columns = DefaultColumns
	}
	if cfg.Rows <= 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler()
	}
	if cfg.Timing == nil {
		cfg.Timing = DefaultTiming()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	return &Model{
		cfg:           cfg,
		grid:          grid.New(cfg.Columns, cfg.Rows, rng),
		effectiveRows: cfg.Rows,
		listeners:     make(map[int]Listener),
	}
}

func (m *Model) Columns() int { return m.cfg.Columns }
func (m *Model) Rows() int    { return m.cfg.Rows }

func (m *Model) EffectiveRows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effectiveRows
}

// Particles returns a copy of the live particle list.
func (m *Model) Particles() []Particle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Particle, len(m.particles))
	copy(out, m.particles)
	return out
}

func (m *Model) Counts() chem.Counts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts()
}

// Occupied returns the occupied grid cells in row-major order.
func (m *Model) Occupied() []grid.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grid.Positions()
}

// Subscribe registers l and returns a function that removes it.
func (m *Model) Subscribe(l Listener) func() {
	m.mu.Lock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = l
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// SetWaterLevel sets the visible row count from a fractional level. A
// fractional part above 0.4 shows the partial row. Particles above the new
// level are removed. Nothing happens, and nobody is notified, when the row
// count does not change.
func (m *Model) SetWaterLevel(rows float64) {
	n := RowsForLevel(rows, m.cfg.Rows)
	m.mutate(func(d *Diff) bool {
		if n == m.effectiveRows {
			return false
		}
		m.effectiveRows = n
		kept := m.particles[:0]
		for _, p := range m.particles {
			if p.Position.Row >= n {
				m.grid.Release(p.Position)
				d.Removed = append(d.Removed, p)
				continue
			}
			kept = append(kept, p)
		}
		m.particles = kept
		return true
	}, UpdateOptions{})
}

// RowsForLevel converts a fractional water level into a row count in
// [1, maxRows].
func RowsForLevel(level float64, maxRows int) int {
	whole := math.Floor(level)
	n := int(whole)
	if level-whole > waterLevelRoundUp {
		n++
	}
	return min(max(n, 1), maxRows)
}

// AddDirectly places up to count new particles of type t on free cells. The
// grid may hold fewer free cells than requested; the surplus is dropped.
func (m *Model) AddDirectly(t ParticleType, count int, color string) {
	m.mutate(func(d *Diff) bool {
		m.addDirectly(d, t, count, color)
		return true
	}, UpdateOptions{})
}

// AddWithReaction adds count particles of rule.Reactant. Each one first
// consumes an existing rule.ReactingWith particle, which turns into
// rule.Producing where it stands; reactants left over once nothing remains
// to react with are placed as new particles.
//
// Consumption starts from the most recently added particles. That order is
// a presentation policy that keeps replays stable; the chemistry has no
// such preference.
func (m *Model) AddWithReaction(rule Rule, count int, colors chem.Colors) {
	m.mutate(func(d *Diff) bool {
		if count <= 0 {
			return true
		}
		reacted := 0
		for i := len(m.particles) - 1; i >= 0 && reacted < count; i-- {
			if m.particles[i].Type != rule.ReactingWith {
				continue
			}
			m.transmute(d, &m.particles[i], rule.Producing, ColorOf(colors, rule.Producing))
			reacted++
		}
		if surplus := count - reacted; surplus > 0 {
			m.addDirectly(d, rule.Reactant, surplus, ColorOf(colors, rule.Reactant))
		}
		return true
	}, UpdateOptions{})
}

// UpdateParticles reconciles the particle list with target. Particles of
// over-represented types (oldest first) form a surplus pool; under-represented
// types are filled by converting pool particles in place, then by placing new
// particles. Pool particles still unused at the end are removed.
//
// Counts may fall short of target when the visible rows have no free cells.
func (m *Model) UpdateParticles(target chem.Counts, colors chem.Colors, opts UpdateOptions) {
	m.mutate(func(d *Diff) bool {
		current := m.counts()

		var excess chem.Counts
		for _, t := range Types {
			if over := CountOf(current, t) - max(CountOf(target, t), 0); over > 0 {
				addCount(&excess, t, over)
			}
		}

		var pool []Particle
		kept := make([]Particle, 0, len(m.particles))
		for _, p := range m.particles {
			if CountOf(excess, p.Type) > 0 {
				addCount(&excess, p.Type, -1)
				pool = append(pool, p)
				continue
			}
			kept = append(kept, p)
		}
		m.particles = kept

		for _, t := range Types {
			need := max(CountOf(target, t), 0) - CountOf(current, t)
			color := ColorOf(colors, t)
			for ; need > 0 && len(pool) > 0; need-- {
				p := pool[0]
				pool = pool[1:]
				m.transmute(d, &p, t, color)
				if opts.Instant {
					p.DisplayColor = color
				}
				m.particles = append(m.particles, p)
			}
			if need > 0 {
				m.addDirectly(d, t, need, color)
			}
		}

		for _, p := range pool {
			m.grid.Release(p.Position)
			d.Removed = append(d.Removed, p)
		}
		return true
	}, opts)
}

// Initialize replaces the particle list with freshly placed particles.
func (m *Model) Initialize(counts chem.Counts, colors chem.Colors) {
	m.mutate(func(d *Diff) bool {
		d.Reset = true
		d.Removed = append(d.Removed, m.particles...)
		m.particles = nil
		m.grid.Clear()
		for _, t := range Types {
			m.addDirectly(d, t, CountOf(counts, t), ColorOf(colors, t))
		}
		return true
	}, UpdateOptions{})
}

// SetParticles restores an exact snapshot, for example when stepping back
// through history. The snapshot is trusted; occupancy is rebuilt from its
// positions and no particle replays its entry animation.
func (m *Model) SetParticles(particles []Particle) {
	m.mu.Lock()
	d := Diff{Reset: true, Removed: m.particles}
	m.particles = make([]Particle, len(particles))
	copy(m.particles, particles)
	m.grid.Clear()
	for i := range m.particles {
		m.particles[i].IsInitialAppearance = false
		m.grid.Occupy(m.particles[i].Position)
	}
	d.Added = make([]Particle, len(m.particles))
	copy(d.Added, m.particles)
	listeners := m.listenerList()
	m.mu.Unlock()

	for _, l := range listeners {
		l(d)
	}
}

// mutate runs fn under the lock, stamps animation metadata on what fn
// changed, notifies listeners once, then schedules the color transition.
// fn returns false when it changed nothing and nobody should be notified.
func (m *Model) mutate(fn func(d *Diff) bool, opts UpdateOptions) {
	m.mu.Lock()
	var d Diff
	if !fn(&d) {
		m.mu.Unlock()
		return
	}
	pending := m.applyTiming(&d)
	listeners := m.listenerList()
	m.mu.Unlock()

	for _, l := range listeners {
		l(d)
	}
	if !opts.Instant && len(pending) > 0 {
		m.cfg.Scheduler.AfterFunc(MinTransitionDelay, func() { m.finishTransition(pending) })
	}
}

// applyTiming fills the timing fields of added and transmuted particles and
// returns the ids still waiting for their display color.
func (m *Model) applyTiming(d *Diff) []string {
	if len(d.Added) == 0 && len(d.Transmuted) == 0 {
		return nil
	}
	index := make(map[string]int, len(m.particles))
	for i, p := range m.particles {
		index[p.ID] = i
	}

	for i := range d.Added {
		delay := int(m.cfg.Timing.AppearDelay(i) / time.Millisecond)
		d.Added[i].TransitionDelayMs = delay
		if j, ok := index[d.Added[i].ID]; ok {
			m.particles[j].TransitionDelayMs = delay
		}
	}

	var pending []string
	transition := int(m.cfg.Timing.TransitionDuration() / time.Millisecond)
	for _, tr := range d.Transmuted {
		j, ok := index[tr.ID]
		if !ok {
			continue
		}
		p := &m.particles[j]
		p.TransitionMs = transition
		p.TransitionDelayMs = int(MinTransitionDelay / time.Millisecond)
		if p.DisplayColor != p.TargetColor {
			pending = append(pending, p.ID)
		}
	}
	return pending
}

// finishTransition moves display colors to target colors for the given ids.
// Ids that no longer exist are skipped.
func (m *Model) finishTransition(ids []string) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	m.mu.Lock()
	var d Diff
	for i := range m.particles {
		p := &m.particles[i]
		if _, ok := want[p.ID]; !ok || p.DisplayColor == p.TargetColor {
			continue
		}
		p.DisplayColor = p.TargetColor
		d.Recolored = append(d.Recolored, p.ID)
	}
	listeners := m.listenerList()
	m.mu.Unlock()

	if len(d.Recolored) == 0 {
		return
	}
	for _, l := range listeners {
		l(d)
	}
}

func (m *Model) addDirectly(d *Diff, t ParticleType, count int, color string) {
	if count <= 0 {
		return
	}
	now := m.cfg.Clock()
	for _, pos := range m.grid.RandomAvailable(count, nil, m.effectiveRows) {
		p := Particle{
			ID:                  m.cfg.NewID(),
			Position:            pos,
			Type:                t,
			DisplayColor:        color,
			TargetColor:         color,
			IsInitialAppearance: true,
			CreatedAt:           now,
		}
		m.grid.Occupy(pos)
		m.particles = append(m.particles, p)
		d.Added = append(d.Added, p)
	}
}

func (m *Model) transmute(d *Diff, p *Particle, to ParticleType, color string) {
	d.Transmuted = append(d.Transmuted, Transmutation{
		ID:       p.ID,
		Position: p.Position,
		From:     p.Type,
		To:       to,
	})
	p.Type = to
	p.TargetColor = color
	p.IsInitialAppearance = false
}

func (m *Model) counts() chem.Counts {
	var c chem.Counts
	for _, p := range m.particles {
		addCount(&c, p.Type, 1)
	}
	return c
}

func (m *Model) listenerList() []Listener {
	out := make([]Listener, 0, len(m.listeners))
	for id := 0; id < m.nextListener; id++ {
		if l, ok := m.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}
