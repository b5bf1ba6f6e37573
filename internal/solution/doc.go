// Package solution describes a fixed mixture of ions in water and the
// transport properties that follow from its equilibrium.
//
// # Lifecycle
//
// A Solution never changes. Its equilibrium is computed on first use and
// cached; operations that change composition (Titrate, EquilibrateCO2,
// Dilute, Add, Mix) return a new Solution. Queries are safe from many
// goroutines.
//
// # Transport
//
// Conductivity sums the molar conductivity of every ion and of water's own
// H+ and OH-. Transference numbers split that conductivity by carrier and
// sum to one. Zone-transfer numbers give the moles of an ion carried across
// a stationary boundary per Faraday of charge.
//
// # Conservation functions
//
// Kohlrausch, Alberty, Jovin and Gas are the regulating functions used to
// check that a discontinuous buffer system will form stable boundaries.
package solution
