package beaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/grid"
)

var (
	testColors = chem.Colors{Substance: "#aaaaaa", Primary: "#ff0000", Secondary: "#0000ff"}
	testEpoch  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

// manualScheduler queues callbacks until Flush.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, f)
	s.delays = append(s.delays, d)
}

func (s *manualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *manualScheduler) Flush() {
	s.mu.Lock()
	fns := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

func newTestModel(cols, rows int) (*Model, *manualScheduler) {
	sched := &manualScheduler{}
	n := 0
	m := New(Config{
		Columns:   cols,
		Rows:      rows,
		Seed:      1,
		Scheduler: sched,
		Clock:     func() time.Time { return testEpoch },
		NewID: func() string {
			n++
			return fmt.Sprintf("p%d", n)
		},
	})
	return m, sched
}

func positionsOf(ps []Particle) []grid.Position {
	out := make([]grid.Position, len(ps))
	for i, p := range ps {
		out[i] = p.Position
	}
	return out
}

// occupancyError reports a mismatch between grid occupancy and particle
// positions, or nil.
func occupancyError(m *Model) error {
	particles := m.Particles()
	seen := make(map[grid.Position]string, len(particles))
	for _, p := range particles {
		if other, ok := seen[p.Position]; ok {
			return fmt.Errorf("%s and %s share %v", other, p.ID, p.Position)
		}
		seen[p.Position] = p.ID
	}
	occupied := m.Occupied()
	if len(occupied) != len(seen) {
		return fmt.Errorf("%d occupied cells for %d particles", len(occupied), len(seen))
	}
	for _, pos := range occupied {
		if _, ok := seen[pos]; !ok {
			return fmt.Errorf("cell %v occupied by no particle", pos)
		}
	}
	return nil
}
