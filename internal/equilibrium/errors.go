package equilibrium

import (
	"fmt"

	"github.com/san-kum/ionize/internal/chem"
)

// Stage names the loop that produced an iteration or a failure.
type Stage string

const (
	StageCharge        Stage = "charge"
	StageIonicStrength Stage = "ionic_strength"
	StageTitration     Stage = "titration"
)

// ConvergenceError carries the last iterate of a loop that ran out of budget.
type ConvergenceError struct {
	Stage         Stage
	Iterations    int
	PH            float64
	IonicStrength float64
	Residual      float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("equilibrium: %s loop did not converge after %d iterations (pH %.4f, I %.3g, residual %.3g)",
		e.Stage, e.Iterations, e.PH, e.IonicStrength, e.Residual)
}

func (e *ConvergenceError) Unwrap() error {
	return chem.ErrConvergence
}
