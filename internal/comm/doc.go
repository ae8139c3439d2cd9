// Package comm provides the rank-group collectives the potential engine
// runs over: model broadcast at load time and summation of per-rank
// partial accumulators at the end of a step.
package comm
