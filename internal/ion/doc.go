// Package ion describes a weak polyprotic electrolyte dissolved in water.
//
// An [Ion] is an immutable value built from reference data: a ladder of
// consecutive non-zero charge states, the pKa of each transition and the
// fully ionized mobility of each state at a reference temperature and zero
// ionic strength. Every query takes the ambient pH, ionic strength (mol/L)
// and temperature (degC) explicitly:
//
//	acetate, _ := ion.New("acetic acid", []int{-1}, []float64{4.756}, []float64{-42.4e-9})
//	mu, _ := acetate.Mobility(5.0, 0.01, 25)
//
// # Corrections
//
// Acidity constants are corrected for temperature (Clark-Glew when both
// enthalpy and heat capacity are known, van't Hoff with enthalpy only) and
// then for ionic strength with Debye-Huckel activity coefficients. Mobilities
// are corrected for temperature with Walden's rule and for ionic strength with
// the Robinson-Stokes extension of the Onsager limiting law.
//
// # Sign corrections
//
// A mobility whose sign disagrees with its charge is flipped during
// construction and recorded in [Ion.Corrections]; construction still
// succeeds so legacy data sets load unchanged.
//
// # Context
//
// [Ion.At] binds an explicit [Context] to produce a [Snapshot] for repeated
// queries at one condition. Snapshots never change the Ion they wrap.
package ion
