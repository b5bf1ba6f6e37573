package equilibrium

// Observer is notified as the solver iterates. Implementations must be safe
// for concurrent use when one Solver serves several goroutines.
type Observer interface {
	OnIteration(stage Stage, iteration int, pH, ionicStrength, residual float64)
	OnConverged(state State)
	OnFailure(err error)
}

func (s *Solver) iteration(stage Stage, n int, pH, ionicStrength, residual float64) {
	for _, o := range s.observers {
		o.OnIteration(stage, n, pH, ionicStrength, residual)
	}
}

func (s *Solver) converged(state State) {
	for _, o := range s.observers {
		o.OnConverged(state)
	}
}

func (s *Solver) failed(err error) error {
	for _, o := range s.observers {
		o.OnFailure(err)
	}
	return err
}
