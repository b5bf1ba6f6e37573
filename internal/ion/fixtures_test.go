package ion

func hydrochloric() *Ion {
	return MustNew("hydrochloric acid", []int{-1}, []float64{-2}, []float64{-79.1e-9})
}

func tris() *Ion {
	return MustNew("tris", []int{1}, []float64{8.076}, []float64{29.5e-9},
		WithEnthalpy([]float64{47450}), WithHeatCapacity([]float64{-59}))
}

func histidine() *Ion {
	return MustNew("histidine", []int{-1, 1, 2}, []float64{9.33, 6.04, 1.82}, []float64{-28.8e-9, 28.8e-9, 48.0e-9},
		WithEnthalpy([]float64{43800, 29500, 3600}))
}

func phosphoric() *Ion {
	return MustNew("phosphoric acid", []int{-3, -2, -1}, []float64{12.67, 7.21, 2.148}, []float64{-71.5e-9, -61.4e-9, -35.1e-9})
}

func fixtures() []*Ion {
	return []*Ion{hydrochloric(), tris(), histidine(), phosphoric()}
}
