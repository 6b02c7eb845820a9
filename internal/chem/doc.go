// Package chem computes pH and species concentrations for mono-protic acids
// and bases.
//
// All functions are pure and safe for concurrent use. They are total over
// their documented domain; out-of-domain input (non-positive concentrations,
// zero titrant molarity) is a caller precondition violation and yields NaN or
// ±Inf rather than an error. Callers clamp before display.
//
//   - [CalculatePH]: pH of a substance dissolved to a molarity
//   - [Concentrations]: equilibrium concentrations of the three species
//   - [SpeciesCounts]: integer particle counts for the plain equilibrium view
//   - [TitrationPH]: pH after adding titrant of known molarity and volume
//   - [EquivalenceVolume]: titrant volume at the stoichiometric point
//   - [GenerateTitrationCurve]: sampled pH-vs-volume curve
//
// Volumes may use any unit as long as it is consistent across arguments.
package chem
