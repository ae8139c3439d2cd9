package md

import (
	"math"
	"math/rand"

	"github.com/stevetorr/flare-pp/internal/atoms"
)

// InitVelocities draws owned-atom velocities from a Maxwell-Boltzmann
// distribution at tempK, removes the net momentum drift and rescales to
// the exact target temperature. The seed makes runs reproducible.
func InitVelocities(st *atoms.Structure, tempK float64, seed int64) {
	n := st.NLocal
	if n == 0 || tempK <= 0 {
		for i := range st.Vel {
			st.Vel[i] = 0
		}
		return
	}

	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		m := st.Masses[st.Species[i]]
		sigma := math.Sqrt(KB * tempK / (m * Mvv2E))
		for c := 0; c < 3; c++ {
			st.Vel[3*i+c] = sigma * rng.NormFloat64()
		}
	}

	// Zero the center-of-mass momentum.
	var p [3]float64
	var mass float64
	for i := 0; i < n; i++ {
		m := st.Masses[st.Species[i]]
		mass += m
		for c := 0; c < 3; c++ {
			p[c] += m * st.Vel[3*i+c]
		}
	}
	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			st.Vel[3*i+c] -= p[c] / mass
		}
	}

	// Rescale to the requested temperature.
	cur := Temperature(st)
	if cur > 0 {
		scale := math.Sqrt(tempK / cur)
		for i := range st.Vel {
			st.Vel[i] *= scale
		}
	}
}

// KineticEnergy returns the total kinetic energy of the owned atoms, eV.
func KineticEnergy(st *atoms.Structure) float64 {
	ke := 0.0
	for i := 0; i < st.NLocal; i++ {
		m := st.Masses[st.Species[i]]
		vx, vy, vz := st.Vel[3*i], st.Vel[3*i+1], st.Vel[3*i+2]
		ke += 0.5 * m * (vx*vx + vy*vy + vz*vz) * Mvv2E
	}
	return ke
}

// Temperature returns the instantaneous kinetic temperature over 3N
// degrees of freedom, K.
func Temperature(st *atoms.Structure) float64 {
	if st.NLocal == 0 {
		return 0
	}
	return 2 * KineticEnergy(st) / (3 * float64(st.NLocal) * KB)
}

// NetMomentum returns the total momentum of the owned atoms, amu*A/ps.
func NetMomentum(st *atoms.Structure) [3]float64 {
	var p [3]float64
	for i := 0; i < st.NLocal; i++ {
		m := st.Masses[st.Species[i]]
		for c := 0; c < 3; c++ {
			p[c] += m * st.Vel[3*i+c]
		}
	}
	return p
}
