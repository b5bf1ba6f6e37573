// Package equilibrium finds the self-consistent pH and ionic strength of a
// mixture of weak electrolytes.
//
// # Algorithm
//
// The solver nests two loops. The inner loop bisects the electroneutrality
// residual
//
//	f(pH) = sum_i c_i * sum_k z_k*alpha_ik(pH, I) + [H+] - [OH-]
//
// which decreases monotonically in pH, so a sign change brackets exactly one
// root. The outer loop is a fixed point on ionic strength:
//
//	I' = 1/2 * (sum_i c_i * sum_k z_k^2*alpha_ik + [H+] + [OH-])
//
// evaluated at the pH found for the previous I. Acidity constants and
// activity coefficients are recomputed at each new I.
//
// With no solutes the answer is closed form: pH = -log10(sqrt(Kw)) and the
// ionic strength is that of water's own ions.
//
// # Titration
//
// Titrate wraps Solve in a third root-find on the amount of titrant: the
// bracket is grown by doubling until the solved pH passes the target, then
// bisected.
//
// # Observers
//
// An Observer receives every iteration of every loop. The metrics package
// provides observers that count iterations and export them to Prometheus.
package equilibrium
