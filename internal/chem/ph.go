package chem

import "math"

// CalculatePH returns the pH of substance dissolved to concentration.
//
// concentration must be positive; callers clamp to a small floor (1e-10)
// first. The result is not clamped to [0, 14].
func CalculatePH(s Substance, concentration float64) float64 {
	switch s.Type {
	case StrongAcid:
		return -math.Log10(concentration)
	case StrongBase:
		return PKw + math.Log10(concentration)
	case WeakAcid:
		return -math.Log10(WeakIonConcentration(s.KA, concentration))
	case WeakBase:
		return PKw + math.Log10(WeakIonConcentration(s.KB, concentration))
	}
	return math.NaN()
}

// WeakIonConcentration solves x² + k·x − k·c = 0 for its positive root, the
// free ion concentration of a weak electrolyte with constant k at formal
// concentration c. Water autoionization is ignored.
//
// The root is evaluated as 2kc / (k + √(k² + 4kc)), which equals the textbook
// (−k + √(k² + 4kc)) / 2 without the cancellation when k ≫ c.
func WeakIonConcentration(k, c float64) float64 {
	return 2 * k * c / (k + math.Sqrt(k*k+4*k*c))
}

// Concentrations returns the equilibrium concentrations of the undissociated
// substance, the primary ion and the secondary ion.
func Concentrations(s Substance, concentration float64) Species {
	if s.IsStrong() {
		return Species{Substance: 0, Primary: concentration, Secondary: concentration}
	}
	x := WeakIonConcentration(s.DissociationConstant(), concentration)
	return Species{Substance: concentration - x, Primary: x, Secondary: x}
}

// SpeciesCounts converts a plain dissolved state into particle counts.
// total is the number of substance units represented; each unit is drawn
// either as a neutral molecule or as one primary + one secondary ion, so
// Substance + Primary == total and Primary == Secondary.
//
// Strong electrolytes dissociate fully. Weak ones use SubstanceAddedPerIon
// neutral molecules per ion pair when it is set, and the equilibrium
// ionized fraction at molarity otherwise.
func SpeciesCounts(s Substance, molarity float64, total int) Counts {
	if total <= 0 {
		return Counts{}
	}
	if s.IsStrong() {
		return Counts{Primary: total, Secondary: total}
	}

	var pairs int
	if r := s.SubstanceAddedPerIon; r > 0 {
		pairs = int(math.Round(float64(total) / float64(r+1)))
	} else if molarity > 0 {
		frac := WeakIonConcentration(s.DissociationConstant(), molarity) / molarity
		pairs = int(math.Round(float64(total) * frac))
	}
	pairs = min(max(pairs, 0), total)

	return Counts{Substance: total - pairs, Primary: pairs, Secondary: pairs}
}

// HydrogenConcentration converts a pH to [H⁺].
func HydrogenConcentration(pH float64) float64 { return math.Pow(10, -pH) }

// HydroxideConcentration converts a pH to [OH⁻].
func HydroxideConcentration(pH float64) float64 { return math.Pow(10, pH-PKw) }

func POH(pH float64) float64 { return PKw - pH }

// PrimaryIonConcentration is [H⁺] for acids and [OH⁻] for bases.
func PrimaryIonConcentration(s Substance, pH float64) float64 {
	if s.IsAcid() {
		return HydrogenConcentration(pH)
	}
	return HydroxideConcentration(pH)
}

func strongPH(acid bool, concentration float64) float64 {
	if acid {
		return -math.Log10(concentration)
	}
	return PKw + math.Log10(concentration)
}
