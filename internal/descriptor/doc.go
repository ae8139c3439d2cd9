// Package descriptor builds rotation-invariant descriptions of atomic
// neighborhoods together with their exact derivatives.
//
// The pipeline is a two-step contraction. First a covariant single-bond
// sum accumulates, per radial channel and spherical harmonic, the
// enveloped contributions of every neighbor. Second, the invariant
// power spectrum contracts all unordered pairs of radial channels at
// equal angular momentum. Every intermediate carries its Cartesian
// gradient with respect to each neighbor displacement, so force and
// uncertainty contractions downstream stay exact.
//
// Neighbor filtering happens exactly once per atom: a Neighborhood is
// gathered from the host's candidate list and the same ordered slice is
// walked by the descriptor, force and uncertainty passes.
package descriptor
