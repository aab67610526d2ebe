// Package dynamo provides the core primitives shared by the Hamiltonian
// Monte Carlo samplers.
//
// The package defines the chain state and the narrow contracts the samplers
// consume from their collaborators:
//
//   - [ChainState]: position, momentum and integration direction
//   - [System]: Hamiltonian energy, momentum gradient and momentum sampling
//   - [Integrator]: one reversible, volume preserving step that may fail
//   - [Rand]: reproducible source of uniform and normal variates
//   - [Sampler]: momentum refresh plus one dynamics transition
//
// # Example
//
//	sys := physics.NewEuclideanSystem(physics.NewStdGaussian(2), nil)
//	integ := integrators.NewLeapfrog(sys, 0.25)
//	sampler := hmc.NewStaticMetropolis(sys, integ, dynamo.NewRand(42), 6)
//	chain := sim.New(sampler)
//	result, _ := chain.Run(ctx, dynamo.NewChainState(x0, nil, 1), 1000)
//
// # Thread Safety
//
// Samplers and chain states are NOT thread-safe. A transition owns the
// states it creates until it returns them.
package dynamo
