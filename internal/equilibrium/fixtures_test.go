package equilibrium

import "github.com/san-kum/ionize/internal/ion"

var (
	hydrochloric = ion.MustNew("hydrochloric acid", []int{-1}, []float64{-2}, []float64{-79.1e-9})
	sodium       = ion.MustNew("sodium", []int{1}, []float64{13.7}, []float64{51.9e-9})
	acetic       = ion.MustNew("acetic acid", []int{-1}, []float64{4.756}, []float64{-42.4e-9},
		ion.WithEnthalpy([]float64{-390}))
	tris = ion.MustNew("tris", []int{1}, []float64{8.076}, []float64{29.5e-9},
		ion.WithEnthalpy([]float64{47450}), ion.WithHeatCapacity([]float64{-59}))
	histidine = ion.MustNew("histidine", []int{-1, 1, 2}, []float64{9.33, 6.04, 1.82}, []float64{-28.8e-9, 28.8e-9, 48.0e-9})
)
