package beaker

import (
	"testing"
	"time"

	"github.com/san-kum/phsim/internal/chem"
)

func TestRowsForLevel(t *testing.T) {
	tests := []struct {
		level float64
		want  int
	}{
		{3.0, 3},
		{3.4, 3},
		{3.41, 4},
		{3.5, 4},
		{0.2, 1},
		{0, 1},
		{-2, 1},
		{11.9, 12},
		{40, 12},
	}
	for _, tt := range tests {
		if got := RowsForLevel(tt.level, 12); got != tt.want {
			t.Errorf("RowsForLevel(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestSetWaterLevel(t *testing.T) {
	m, _ := newTestModel(6, 6)
	m.Initialize(chem.Counts{Substance: 10, Primary: 10, Secondary: 10}, testColors)

	notified := 0
	var last Diff
	m.Subscribe(func(d Diff) {
		notified++
		last = d
	})

	m.SetWaterLevel(2.3)
	if m.EffectiveRows() != 2 {
		t.Fatalf("EffectiveRows = %d, want 2", m.EffectiveRows())
	}
	for _, p := range m.Particles() {
		if p.Position.Row >= 2 {
			t.Errorf("%s left above the water at %v", p.ID, p.Position)
		}
	}
	if err := occupancyError(m); err != nil {
		t.Error(err)
	}
	if notified != 1 {
		t.Errorf("notified %d times, want 1", notified)
	}
	if len(m.Particles())+len(last.Removed) != 30 {
		t.Errorf("removed %d, kept %d, want 30 total", len(last.Removed), len(m.Particles()))
	}

	m.SetWaterLevel(2.1)
	if notified != 1 {
		t.Error("unchanged row count should not notify")
	}
}

func TestAddDirectly(t *testing.T) {
	m, _ := newTestModel(10, 10)
	m.AddDirectly(PrimaryIon, 4, "#ff0000")

	ps := m.Particles()
	if len(ps) != 4 {
		t.Fatalf("len = %d, want 4", len(ps))
	}
	for i, p := range ps {
		if p.Type != PrimaryIon || p.DisplayColor != "#ff0000" || p.TargetColor != "#ff0000" {
			t.Errorf("particle %d = %+v", i, p)
		}
		if !p.IsInitialAppearance {
			t.Errorf("particle %d should be an initial appearance", i)
		}
		if want := i * 50; p.TransitionDelayMs != want {
			t.Errorf("particle %d delay = %d, want %d", i, p.TransitionDelayMs, want)
		}
		if !p.CreatedAt.Equal(testEpoch) {
			t.Errorf("particle %d CreatedAt = %v", i, p.CreatedAt)
		}
	}
}

func TestAddDirectly_FullGrid(t *testing.T) {
	m, _ := newTestModel(2, 2)
	m.AddDirectly(Substance, 10, "#aaaaaa")
	if got := len(m.Particles()); got != 4 {
		t.Errorf("len = %d, want 4", got)
	}
	if err := occupancyError(m); err != nil {
		t.Error(err)
	}
}

func TestAddWithReaction_ConsumesNewestFirst(t *testing.T) {
	m, sched := newTestModel(10, 10)
	m.AddDirectly(PrimaryIon, 3, testColors.Primary)
	before := m.Particles()

	m.AddWithReaction(CommonIonRule, 2, testColors)

	after := m.Particles()
	if after[0].Type != PrimaryIon {
		t.Errorf("oldest particle should remain primary, got %v", after[0].Type)
	}
	for i := 1; i < 3; i++ {
		p := after[i]
		if p.Type != Substance {
			t.Errorf("particle %d type = %v, want substance", i, p.Type)
		}
		if p.Position != before[i].Position || p.ID != before[i].ID {
			t.Errorf("particle %d moved or changed identity", i)
		}
		if p.DisplayColor != testColors.Primary || p.TargetColor != testColors.Substance {
			t.Errorf("particle %d colors = %s -> %s", i, p.DisplayColor, p.TargetColor)
		}
		if p.TransitionMs != 400 {
			t.Errorf("particle %d TransitionMs = %d, want 400", i, p.TransitionMs)
		}
	}

	if sched.Len() != 1 || sched.delays[0] != MinTransitionDelay {
		t.Fatalf("expected one transition scheduled at %v, got %v", MinTransitionDelay, sched.delays)
	}
	sched.Flush()
	for _, p := range m.Particles()[1:] {
		if p.DisplayColor != testColors.Substance {
			t.Errorf("%s display color = %s after transition", p.ID, p.DisplayColor)
		}
	}
}

func TestAddWithReaction_Surplus(t *testing.T) {
	m, _ := newTestModel(10, 10)
	m.AddDirectly(PrimaryIon, 2, testColors.Primary)

	var d Diff
	m.Subscribe(func(got Diff) { d = got })
	m.AddWithReaction(CommonIonRule, 5, testColors)

	want := chem.Counts{Substance: 2, Primary: 0, Secondary: 3}
	if got := m.Counts(); got != want {
		t.Errorf("Counts = %+v, want %+v", got, want)
	}
	if len(d.Transmuted) != 2 || len(d.Added) != 3 {
		t.Errorf("diff transmuted=%d added=%d, want 2 and 3", len(d.Transmuted), len(d.Added))
	}

	m.AddWithReaction(CommonIonRule, 4, testColors)
	if got := m.Counts(); got.Primary != 0 || got.Secondary != 7 {
		t.Errorf("Counts = %+v", got)
	}
}

func TestUpdateParticles_TransmutesBeforePlacing(t *testing.T) {
	m, _ := newTestModel(10, 10)
	m.AddDirectly(Substance, 5, testColors.Substance)
	positions := positionsOf(m.Particles())

	var d Diff
	m.Subscribe(func(got Diff) { d = got })
	m.UpdateParticles(chem.Counts{Substance: 2, Primary: 3}, testColors, UpdateOptions{})

	if got := m.Counts(); got != (chem.Counts{Substance: 2, Primary: 3}) {
		t.Fatalf("Counts = %+v", got)
	}
	if d.Churn() != 0 || len(d.Transmuted) != 3 {
		t.Errorf("diff churn=%d transmuted=%d, want 0 and 3", d.Churn(), len(d.Transmuted))
	}
	for i, tr := range d.Transmuted {
		if tr.From != Substance || tr.To != PrimaryIon {
			t.Errorf("transmutation %d = %+v", i, tr)
		}
		if tr.Position != positions[i] {
			t.Errorf("transmutation %d at %v, want the oldest substance at %v", i, tr.Position, positions[i])
		}
	}
}

func TestUpdateParticles_AddsAndRemoves(t *testing.T) {
	m, _ := newTestModel(10, 10)
	m.UpdateParticles(chem.Counts{Substance: 4, Primary: 6, Secondary: 6}, testColors, UpdateOptions{})
	if got := m.Counts(); got != (chem.Counts{Substance: 4, Primary: 6, Secondary: 6}) {
		t.Fatalf("Counts = %+v", got)
	}

	var d Diff
	m.Subscribe(func(got Diff) { d = got })
	m.UpdateParticles(chem.Counts{Substance: 1}, testColors, UpdateOptions{})
	if got := m.Counts(); got != (chem.Counts{Substance: 1}) {
		t.Fatalf("Counts = %+v", got)
	}
	if len(d.Removed) != 15 || len(d.Added) != 0 {
		t.Errorf("removed=%d added=%d, want 15 and 0", len(d.Removed), len(d.Added))
	}
	if err := occupancyError(m); err != nil {
		t.Error(err)
	}
}

func TestUpdateParticles_Instant(t *testing.T) {
	m, sched := newTestModel(10, 10)
	m.AddDirectly(Substance, 3, testColors.Substance)
	m.UpdateParticles(chem.Counts{Secondary: 3}, testColors, UpdateOptions{Instant: true})

	for _, p := range m.Particles() {
		if p.DisplayColor != testColors.Secondary {
			t.Errorf("%s display = %s, want immediate recolor", p.ID, p.DisplayColor)
		}
	}
	if sched.Len() != 0 {
		t.Errorf("instant update scheduled %d transitions", sched.Len())
	}
}

func TestUpdateParticles_NegativeTargetsClampToZero(t *testing.T) {
	m, _ := newTestModel(5, 5)
	m.AddDirectly(PrimaryIon, 3, testColors.Primary)
	m.UpdateParticles(chem.Counts{Primary: -4}, testColors, UpdateOptions{})
	if got := m.Counts(); got != (chem.Counts{}) {
		t.Errorf("Counts = %+v, want empty", got)
	}
}

func TestSetParticles(t *testing.T) {
	m, _ := newTestModel(8, 8)
	m.Initialize(chem.Counts{Substance: 3, Primary: 2, Secondary: 2}, testColors)
	snapshot := m.Particles()

	m.UpdateParticles(chem.Counts{Primary: 20}, testColors, UpdateOptions{})

	calls := 0
	m.Subscribe(func(d Diff) {
		calls++
		if !d.Reset {
			t.Error("restore should be a reset")
		}
	})
	m.SetParticles(snapshot)

	if calls != 1 {
		t.Errorf("notified %d times, want 1", calls)
	}
	got := m.Particles()
	if len(got) != len(snapshot) {
		t.Fatalf("len = %d, want %d", len(got), len(snapshot))
	}
	for i := range got {
		if got[i].ID != snapshot[i].ID || got[i].Position != snapshot[i].Position {
			t.Errorf("particle %d not restored", i)
		}
		if got[i].IsInitialAppearance {
			t.Errorf("particle %d replays its entry animation", i)
		}
	}
	if err := occupancyError(m); err != nil {
		t.Error(err)
	}
	if !snapshot[0].IsInitialAppearance {
		t.Error("SetParticles must not modify the caller's slice")
	}
}

func TestStaleTransitionAfterReset(t *testing.T) {
	m, sched := newTestModel(8, 8)
	m.AddDirectly(PrimaryIon, 3, testColors.Primary)
	m.AddWithReaction(CommonIonRule, 3, testColors)

	restored := []Particle{
		{ID: "other-1", Type: PrimaryIon, DisplayColor: "#123456", TargetColor: "#abcdef"},
		{ID: "other-2", Type: Substance, DisplayColor: "#123456", TargetColor: "#abcdef"},
	}
	restored[1].Position.Col = 1
	m.SetParticles(restored)

	recolored := 0
	m.Subscribe(func(d Diff) { recolored += len(d.Recolored) })
	sched.Flush()

	if recolored != 0 {
		t.Errorf("stale transition recolored %d particles", recolored)
	}
	for _, p := range m.Particles() {
		if p.DisplayColor != "#123456" {
			t.Errorf("%s display changed to %s", p.ID, p.DisplayColor)
		}
	}
}

func TestTransitionWithRealTimer(t *testing.T) {
	m := New(Config{Columns: 4, Rows: 4, Seed: 3})
	m.AddDirectly(PrimaryIon, 2, testColors.Primary)

	done := make(chan struct{})
	m.Subscribe(func(d Diff) {
		if len(d.Recolored) > 0 {
			close(done)
		}
	})
	m.AddWithReaction(CommonIonRule, 2, testColors)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("color transition never fired")
	}
	for _, p := range m.Particles() {
		if p.DisplayColor != p.TargetColor {
			t.Errorf("%s still transitioning", p.ID)
		}
	}
}

func TestSubscribe(t *testing.T) {
	m, _ := newTestModel(4, 4)
	calls := 0
	unsubscribe := m.Subscribe(func(Diff) { calls++ })

	m.AddDirectly(Substance, 1, "#aaaaaa")
	m.UpdateParticles(chem.Counts{Substance: 3, Primary: 2}, testColors, UpdateOptions{})
	if calls != 2 {
		t.Errorf("calls = %d, want one per mutating call", calls)
	}

	unsubscribe()
	unsubscribe()
	m.AddDirectly(Substance, 1, "#aaaaaa")
	if calls != 2 {
		t.Errorf("listener called after unsubscribe")
	}
}

func TestInitialize(t *testing.T) {
	m, _ := newTestModel(10, 10)
	m.AddDirectly(PrimaryIon, 7, testColors.Primary)

	var d Diff
	m.Subscribe(func(got Diff) { d = got })
	m.Initialize(chem.Counts{Substance: 5, Primary: 1, Secondary: 1}, testColors)

	if got := m.Counts(); got != (chem.Counts{Substance: 5, Primary: 1, Secondary: 1}) {
		t.Errorf("Counts = %+v", got)
	}
	if !d.Reset || len(d.Removed) != 7 || len(d.Added) != 7 {
		t.Errorf("diff reset=%v removed=%d added=%d", d.Reset, len(d.Removed), len(d.Added))
	}
	if err := occupancyError(m); err != nil {
		t.Error(err)
	}
}

func TestParticleTypeText(t *testing.T) {
	for _, pt := range Types {
		b, _ := pt.MarshalText()
		var back ParticleType
		if err := back.UnmarshalText(b); err != nil || back != pt {
			t.Errorf("%v did not survive text encoding: %v", pt, err)
		}
	}
	var bad ParticleType
	if err := bad.UnmarshalText([]byte("electron")); err == nil {
		t.Error("expected error for unknown type")
	}
}
