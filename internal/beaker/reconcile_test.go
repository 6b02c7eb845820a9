package beaker

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/phsim/internal/chem"
)

func randomTarget(rng *rand.Rand, capacity int) chem.Counts {
	s := rng.Intn(capacity + 1)
	p := rng.Intn(capacity - s + 1)
	q := rng.Intn(capacity - s - p + 1)
	return chem.Counts{Substance: s, Primary: p, Secondary: q}
}

var _ = Describe("Model", func() {
	var (
		m     *Model
		sched *manualScheduler
		rng   *rand.Rand
	)

	BeforeEach(func() {
		m, sched = newTestModel(9, 7)
		rng = rand.New(rand.NewSource(99))
	})

	Describe("UpdateParticles", func() {
		It("matches every target that fits the visible rows", func() {
			for i := 0; i < 200; i++ {
				if i%25 == 0 {
					m.SetWaterLevel(float64(rng.Intn(m.Rows())) + rng.Float64())
				}
				target := randomTarget(rng, m.Columns()*m.EffectiveRows())
				m.UpdateParticles(target, testColors, UpdateOptions{Instant: i%3 == 0})

				Expect(m.Counts()).To(Equal(target), "step %d", i)
				Expect(occupancyError(m)).NotTo(HaveOccurred(), "step %d", i)
				for _, p := range m.Particles() {
					Expect(p.Position.Row).To(BeNumerically("<", m.EffectiveRows()))
				}
				if i%7 == 0 {
					sched.Flush()
				}
			}
		})

		It("only churns the net change in total particles", func() {
			m.UpdateParticles(chem.Counts{Substance: 10, Primary: 5, Secondary: 5}, testColors, UpdateOptions{})

			var d Diff
			m.Subscribe(func(got Diff) { d = got })
			m.UpdateParticles(chem.Counts{Substance: 4, Primary: 11, Secondary: 7}, testColors, UpdateOptions{})

			Expect(d.Removed).To(BeEmpty())
			Expect(d.Added).To(HaveLen(2))
			Expect(d.Transmuted).To(HaveLen(6))
		})

		It("settles display colors once transitions run", func() {
			m.UpdateParticles(chem.Counts{Substance: 12}, testColors, UpdateOptions{})
			m.UpdateParticles(chem.Counts{Primary: 6, Secondary: 6}, testColors, UpdateOptions{})
			sched.Flush()

			for _, p := range m.Particles() {
				Expect(p.DisplayColor).To(Equal(p.TargetColor))
				Expect(p.TargetColor).To(Equal(ColorOf(testColors, p.Type)))
			}
		})
	})

	Describe("AddWithReaction", func() {
		It("never drives a count negative and conserves reactant", func() {
			m.AddDirectly(PrimaryIon, 20, testColors.Primary)
			for i := 0; i < 40; i++ {
				before := m.Counts()
				n := rng.Intn(5)
				m.AddWithReaction(CommonIonRule, n, testColors)
				after := m.Counts()

				Expect(after.Primary).To(BeNumerically(">=", 0))
				reacted := before.Primary - after.Primary
				Expect(reacted).To(Equal(min(n, before.Primary)))
				Expect(after.Substance - before.Substance).To(Equal(reacted))
				Expect(occupancyError(m)).NotTo(HaveOccurred())
			}
		})
	})

	Context("after a snapshot restore", func() {
		It("drops pending transitions for particles that no longer exist", func() {
			m.AddDirectly(PrimaryIon, 4, testColors.Primary)
			snapshot := m.Particles()
			m.AddWithReaction(CommonIonRule, 4, testColors)
			m.SetParticles(snapshot)

			sched.Flush()
			Expect(m.Particles()).To(HaveLen(4))
			for _, p := range m.Particles() {
				Expect(p.Type).To(Equal(PrimaryIon))
				Expect(p.DisplayColor).To(Equal(testColors.Primary))
			}
		})
	})
})
