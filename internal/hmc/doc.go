// Package hmc implements Hamiltonian Monte Carlo transition drivers.
//
// Every sampler augments the target with a momentum variable and applies two
// Markov transitions per chain iteration: a momentum refresh, then a
// dynamics transition which simulates the Hamiltonian dynamics with a
// symplectic integrator and selects the next state so that the joint
// distribution is left exactly invariant.
//
// Two families of dynamics transitions are provided:
//
//   - [Metropolis]: integrate a fixed ([StaticLength]) or random
//     ([RandomLength]) number of steps and accept or reject the end point.
//     The integration direction is negated on rejection so the next
//     trajectory can explore the opposite direction.
//   - [DynamicMultinomial]: grow a binary tree of states by repeated
//     doubling until a no-U-turn criterion fires, and pick the next state by
//     progressive multinomial resampling.
//
// How momentum is refreshed is an independent choice: [IndependentRefresh]
// draws a fresh momentum, [CorrelatedRefresh] applies a Crank-Nicolson
// partial update for zero mean Gaussian momenta.
package hmc
