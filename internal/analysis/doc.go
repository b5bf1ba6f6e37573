// Package analysis sweeps one parameter of a Solution and records how the
// equilibrium and transport properties respond.
//
// The sweeps are:
//
//   - [TitrationCurve]: pH against added titrant
//   - [TemperatureSweep]: the same composition from one temperature to another
//   - [IonicStrengthSweep]: the composition with increasing inert salt
//   - [DilutionSweep]: the composition diluted over log-spaced factors
//
// Every point is an independent Solution, so points are solved in parallel.
//
// # Equivalence Points
//
// The steepest section of a titration curve marks an equivalence point:
//
//	curve, _ := analysis.TitrationCurve(ctx, buffer, hcl, 0.1, 200)
//	x, pH := curve.Steepest()
package analysis
