// Package analysis extracts landmarks from sampled titration curves.
//
//   - [SteepestPoint]: the numerical equivalence point, where |dpH/dV| peaks
//   - [HalfEquivalencePH]: the pH halfway to equivalence, ≈ pKa for weak acids
//   - [BufferRegion]: the volume span where pH stays within a band around pKa
//   - [Summarize]: all of the above plus the pH range
//
// # Estimating pKa
//
// For a weak acid titrated with a strong base the half-equivalence pH
// approximates pKa:
//
//	pka, err := analysis.HalfEquivalencePH(curve, veq)
package analysis
