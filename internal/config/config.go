package config

import (
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/hmcsim/internal/dynamo"
)

const (
	DefaultDim          = 2
	DefaultStepSize     = 0.2
	DefaultNumSteps     = 10
	DefaultStepLo       = 5
	DefaultStepHi       = 15
	DefaultCoeff        = 0.5
	DefaultMaxTreeDepth = 5
	DefaultMaxDeltaH    = 1000.0
	DefaultSamples      = 1000
)

// Sampler names accepted in Config.Sampler.
var Samplers = []string{"static", "random", "static_correlated", "random_correlated", "dynamic"}

type Config struct {
	Target       string             `yaml:"target"`
	Dim          int                `yaml:"dim"`
	TargetParams map[string]float64 `yaml:"target_params,omitempty"`
	// Mass is the diagonal of the mass matrix, empty for the identity.
	Mass       []float64 `yaml:"mass,omitempty"`
	Integrator string    `yaml:"integrator"`
	StepSize   float64   `yaml:"step_size"`

	Sampler          string  `yaml:"sampler"`
	NumSteps         int     `yaml:"n_step"`
	StepRange        [2]int  `yaml:"step_range"`
	MomResampleCoeff float64 `yaml:"mom_resample_coeff"`
	MaxTreeDepth     int     `yaml:"max_tree_depth"`
	MaxDeltaH        float64 `yaml:"max_delta_h"`

	Samples int       `yaml:"samples"`
	Seed    int64     `yaml:"seed"`
	InitPos []float64 `yaml:"init_pos,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Target:           "gaussian",
		Dim:              DefaultDim,
		Integrator:       "leapfrog",
		StepSize:         DefaultStepSize,
		Sampler:          "dynamic",
		NumSteps:         DefaultNumSteps,
		StepRange:        [2]int{DefaultStepLo, DefaultStepHi},
		MomResampleCoeff: DefaultCoeff,
		MaxTreeDepth:     DefaultMaxTreeDepth,
		MaxDeltaH:        DefaultMaxDeltaH,
		Samples:          DefaultSamples,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings shared by all samplers. Sampler specific
// ranges are checked by the sampler constructors.
func (c *Config) Validate() error {
	switch {
	case c.Dim < 1:
		return dynamo.ConfigError("dim must be positive, got %d", c.Dim)
	case c.StepSize <= 0:
		return dynamo.ConfigError("step_size must be positive, got %g", c.StepSize)
	case c.Samples < 1:
		return dynamo.ConfigError("samples must be positive, got %d", c.Samples)
	case len(c.Mass) != 0 && len(c.Mass) != c.Dim:
		return dynamo.ConfigError("mass has %d entries, dim is %d", len(c.Mass), c.Dim)
	case len(c.InitPos) != 0 && len(c.InitPos) != c.Dim:
		return dynamo.ConfigError("init_pos has %d entries, dim is %d", len(c.InitPos), c.Dim)
	case !slices.Contains(Samplers, c.Sampler):
		return dynamo.ConfigError("unknown sampler %q", c.Sampler)
	}
	for i, m := range c.Mass {
		if m <= 0 {
			return dynamo.ConfigError("mass[%d] must be positive, got %g", i, m)
		}
	}
	return nil
}

// GetInitPos returns a copy of the initial position, the origin if unset.
func (c *Config) GetInitPos() []float64 {
	pos := make([]float64, c.Dim)
	copy(pos, c.InitPos)
	return pos
}

func (c *Config) Clone() *Config {
	out := *c
	out.Mass = slices.Clone(c.Mass)
	out.InitPos = slices.Clone(c.InitPos)
	if c.TargetParams != nil {
		out.TargetParams = make(map[string]float64, len(c.TargetParams))
		for k, v := range c.TargetParams {
			out.TargetParams[k] = v
		}
	}
	return &out
}
