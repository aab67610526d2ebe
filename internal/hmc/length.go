package hmc

import "github.com/san-kum/hmcsim/internal/dynamo"

// TrajectoryLength chooses the number of integrator steps of a trajectory.
type TrajectoryLength interface {
	NumSteps(rng dynamo.Rand) int
}

// StaticLength always integrates the same number of steps.
type StaticLength int

func NewStaticLength(n int) (StaticLength, error) {
	if n < 0 {
		return 0, dynamo.ConfigError("number of steps must be non-negative, got %d", n)
	}
	return StaticLength(n), nil
}

func (l StaticLength) NumSteps(dynamo.Rand) int { return int(l) }

// RandomLength draws the number of steps uniformly from [Lo, Hi]. Jittering
// the trajectory length avoids poor mixing on (near) periodic systems.
type RandomLength struct {
	Lo, Hi int
}

func NewRandomLength(lo, hi int) (RandomLength, error) {
	if lo <= 0 || lo >= hi {
		return RandomLength{}, dynamo.ConfigError("step range must satisfy 0 < lo < hi, got (%d, %d)", lo, hi)
	}
	return RandomLength{Lo: lo, Hi: hi}, nil
}

func (l RandomLength) NumSteps(rng dynamo.Rand) int {
	return dynamo.UniformInt(rng, l.Lo, l.Hi)
}
