// Package analysis provides the chaos diagnostics layer.
//
// The package quantifies the dynamics produced by the evolution engine:
//
//   - [Lyapunov]: finite-difference largest Lyapunov exponent from a
//     perturbed twin trajectory
//   - [ReturnMap]: Poincaré return-map samples of a scalar observable
//   - [Sweep]: bifurcation sweep over an operator-generation parameter
//
// # Chaos Detection
//
// A positive Lyapunov estimate indicates sensitive dependence on the
// initial population:
//
//	lambda, err := analysis.Lyapunov(topo, factory, cfg)
//	if err == nil && lambda > 0 {
//	    // dynamics are chaotic
//	}
package analysis
