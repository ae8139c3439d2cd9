package md

// Metal-style units: lengths in angstroms, energies in eV, masses in
// amu, time in picoseconds, temperature in kelvin.
const (
	// KB is Boltzmann's constant, eV/K.
	KB = 8.617333262e-5

	// Mvv2E converts amu*(A/ps)^2 to eV.
	Mvv2E = 1.0364269e-4

	// Ftm2V converts force over mass, (eV/A)/amu, to acceleration in
	// A/ps^2.
	Ftm2V = 1 / Mvv2E
)
