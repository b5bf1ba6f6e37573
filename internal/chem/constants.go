package chem

const (
	Faraday      = 96485.34          // C/mol
	GasConstant  = 8.314             // J/(mol K)
	Permittivity = 8.854e-12         // vacuum permittivity, F/m
	LitersPerM3  = 1000.0            // L/m^3
	KelvinOffset = 273.15            // K
	Pitts        = 1.5               // ion-size term of the extended Debye-Huckel law, (L/mol)^1/2
	ReferenceT   = 25.0              // degC
	FreezingT    = 0.0               // degC
	BoilingT     = 100.0             // degC
	Ln10         = 2.302585092994046 // natural log of 10
)

// Kelvin converts a temperature in degrees Celsius to kelvin.
func Kelvin(celsius float64) float64 {
	return celsius + KelvinOffset
}
