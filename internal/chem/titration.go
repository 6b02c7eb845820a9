package chem

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultCurveSamples is the number of points produced by
// GenerateTitrationCurve.
const DefaultCurveSamples = 100

// stoichTolerance is the relative mole difference treated as an exact
// stoichiometric match.
const stoichTolerance = 1e-9

// CurvePoint is one sample of a titration curve.
type CurvePoint struct {
	Volume float64 `json:"volume"`
	PH     float64 `json:"ph"`
}

// EquivalenceVolume is the titrant volume whose moles match the substance
// moles 1:1. titrantMolarity must be non-zero.
func EquivalenceVolume(substanceMolarity, beakerVolume, titrantMolarity float64) float64 {
	return substanceMolarity * beakerVolume / titrantMolarity
}

// TitrationPH returns the pH after titrantVolume of a strong titrant (a
// strong base for acids, a strong acid for bases) at titrantMolarity has
// been added to beakerVolume of substance at substanceMolarity.
//
// titrantVolume <= 0 is the untitrated solution.
//
// Strong substances: pH 7 within tolerance of the equivalence point,
// otherwise the strong formula applied to whichever side is in excess in the
// combined volume.
//
// Weak substances: Henderson–Hasselbalch on the remaining/converted mole
// ratio before equivalence, bounded by the untitrated pH and the
// equivalence-point pH. At and past equivalence the conjugate hydrolyses with
// Kw/Ka (or Kw/Kb) at its diluted concentration; any excess titrant adds its
// own ions on top.
func TitrationPH(s Substance, substanceMolarity, beakerVolume, titrantMolarity, titrantVolume float64) float64 {
	if titrantVolume <= 0 {
		return CalculatePH(s, substanceMolarity)
	}

	substanceMoles := substanceMolarity * beakerVolume
	titrantMoles := titrantMolarity * titrantVolume
	totalVolume := beakerVolume + titrantVolume
	excess := substanceMoles - titrantMoles

	if s.IsStrong() {
		if math.Abs(excess) <= stoichTolerance*math.Max(substanceMoles, titrantMoles) {
			return NeutralPH
		}
		if excess > 0 {
			return strongPH(s.IsAcid(), excess/totalVolume)
		}
		return strongPH(!s.IsAcid(), -excess/totalVolume)
	}

	conjugate := substanceMoles / totalVolume
	hydrolysis := WeakIonConcentration(Kw/s.DissociationConstant(), conjugate)
	// The conjugate of an acid is a base, so its ions are OH⁻.
	atEquivalence := strongPH(!s.IsAcid(), hydrolysis)

	if excess > stoichTolerance*substanceMoles {
		ratio := math.Log10(titrantMoles / excess)
		untitrated := CalculatePH(s, substanceMolarity)
		if s.IsAcid() {
			return math.Min(math.Max(s.PKA()+ratio, untitrated), atEquivalence)
		}
		return math.Max(math.Min(PKw-(s.PKB()+ratio), untitrated), atEquivalence)
	}
	if excess >= 0 {
		return atEquivalence
	}
	return strongPH(!s.IsAcid(), hydrolysis-excess/totalVolume)
}

// TitrationSpecies returns the species concentrations in the combined volume
// during a titration: remaining substance, free primary ion (from the pH),
// and the secondary ion (the conjugate produced plus, for weak substances,
// what the remaining substance dissociates into).
func TitrationSpecies(s Substance, substanceMolarity, beakerVolume, titrantMolarity, titrantVolume float64) Species {
	if titrantVolume <= 0 {
		return Concentrations(s, substanceMolarity)
	}

	totalVolume := beakerVolume + titrantVolume
	substanceMoles := substanceMolarity * beakerVolume
	reacted := math.Min(titrantMolarity*titrantVolume, substanceMoles)
	pH := TitrationPH(s, substanceMolarity, beakerVolume, titrantMolarity, titrantVolume)
	primary := PrimaryIonConcentration(s, pH)

	if s.IsStrong() {
		return Species{Substance: 0, Primary: primary, Secondary: substanceMoles / totalVolume}
	}

	remaining := (substanceMoles - reacted) / totalVolume
	secondary := reacted / totalVolume
	if remaining > 0 {
		secondary = math.Max(secondary, primary)
	}
	return Species{Substance: remaining, Primary: primary, Secondary: secondary}
}

// GenerateTitrationCurve samples DefaultCurveSamples evenly spaced volumes
// from 0 to maxVolume inclusive.
func GenerateTitrationCurve(s Substance, substanceMolarity, beakerVolume, titrantMolarity, maxVolume float64) []CurvePoint {
	return GenerateTitrationCurveN(s, substanceMolarity, beakerVolume, titrantMolarity, maxVolume, DefaultCurveSamples)
}

// GenerateTitrationCurveN is GenerateTitrationCurve with an explicit sample
// count; counts below 2 are raised to 2. The result depends only on the
// arguments.
func GenerateTitrationCurveN(s Substance, substanceMolarity, beakerVolume, titrantMolarity, maxVolume float64, samples int) []CurvePoint {
	if samples < 2 {
		samples = 2
	}
	volumes := floats.Span(make([]float64, samples), 0, maxVolume)

	curve := make([]CurvePoint, samples)
	for i, v := range volumes {
		curve[i] = CurvePoint{
			Volume: v,
			PH:     TitrationPH(s, substanceMolarity, beakerVolume, titrantMolarity, v),
		}
	}
	return curve
}
