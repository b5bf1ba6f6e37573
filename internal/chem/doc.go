// Package chem holds the physical constants and the error taxonomy shared by
// the equilibrium packages.
//
//   - [DomainError]: malformed input (charge ladder, lengths, negative
//     concentration, temperature outside the liquid range)
//   - [LookupError]: an ion that is not part of a solution or database
//   - [ErrConvergence]: the solver ran out of iterations
//
// Use [errors.Is] with the sentinels and [errors.As] with the struct types:
//
//	var de *chem.DomainError
//	if errors.As(err, &de) {
//	    fmt.Println(de.Field)
//	}
package chem
