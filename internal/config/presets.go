package config

import "sort"

func preset(target string, dim int, sampler string, stepSize float64, mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Target = target
	cfg.Dim = dim
	cfg.Sampler = sampler
	cfg.StepSize = stepSize
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

var Presets = map[string]map[string]*Config{
	"gaussian": {
		"nuts": preset("gaussian", 10, "dynamic", 0.3, nil),
		"static": preset("gaussian", 10, "static", 0.25, func(c *Config) {
			c.NumSteps = 6
		}),
		"correlated": preset("gaussian", 10, "static_correlated", 0.25, func(c *Config) {
			c.NumSteps = 6
			c.MomResampleCoeff = 0.3
		}),
		"scaled": preset("gaussian", 2, "dynamic", 0.2, func(c *Config) {
			c.TargetParams = map[string]float64{"std": 3}
			c.Mass = []float64{1.0 / 9, 1.0 / 9}
		}),
	},
	"doublewell": {
		"nuts": preset("doublewell", 1, "dynamic", 0.1, func(c *Config) {
			c.InitPos = []float64{1}
			c.Samples = 5000
		}),
		"random": preset("doublewell", 1, "random", 0.1, func(c *Config) {
			c.StepRange = [2]int{10, 30}
			c.InitPos = []float64{1}
			c.Samples = 5000
		}),
	},
	"funnel": {
		"nuts": preset("funnel", 5, "dynamic", 0.1, func(c *Config) {
			c.MaxTreeDepth = 8
			c.Samples = 2000
		}),
		"static": preset("funnel", 5, "static", 0.2, func(c *Config) {
			c.NumSteps = 20
			c.Samples = 2000
		}),
	},
	"rosenbrock": {
		"nuts": preset("rosenbrock", 2, "dynamic", 0.05, func(c *Config) {
			c.MaxTreeDepth = 8
			c.Samples = 2000
		}),
		"correlated": preset("rosenbrock", 2, "random_correlated", 0.05, func(c *Config) {
			c.StepRange = [2]int{20, 60}
			c.MomResampleCoeff = 0.2
			c.Samples = 2000
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(target, name string) *Config {
	targetPresets, ok := Presets[target]
	if !ok {
		return nil
	}
	cfg, ok := targetPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(target string) []string {
	targetPresets, ok := Presets[target]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(targetPresets))
	for name := range targetPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
