// Package physics provides target distributions and the Hamiltonian systems
// built on them.
//
// Each target implements [Potential], the negative log density of the
// distribution to sample and its gradient:
//
//   - [Gaussian]: independent normal coordinates
//   - [DoubleWell]: bistable quartic potential per coordinate
//   - [Funnel]: Neal's funnel, a hierarchical scale mixture
//   - [Rosenbrock]: curved banana shaped density
//
// [EuclideanSystem] augments a potential with a Gaussian momentum with
// diagonal mass matrix, giving H(q, p) = V(q) + p'M^-1p/2. It implements
// [dynamo.EuclideanSystem] and so can be integrated with a leapfrog scheme.
//
// Targets with tunable parameters implement [Configurable]:
//
//	dw := physics.NewDoubleWell(1)
//	_ = dw.SetParam("B", 2)
package physics
