// Package analysis provides structural analysis tools for atomic
// configurations.
//
//   - [ComputeRDF]: radial distribution function with coordination counts
//
// # Shell Structure
//
// The first peak of g(r) sits at the nearest-neighbor distance, and the
// coordination number just past it counts the first shell:
//
//	rdf, err := analysis.ComputeRDF(st, 6.0, 120)
//	if err == nil {
//	    // rdf.G peaks near a/sqrt(2) for an fcc crystal
//	}
package analysis
