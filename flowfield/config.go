package flowfield

import (
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the envelope wrapping any config document: a kind selector
// and an untyped definition decoded in a second pass.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config holds every parameter of a run: grid size, relaxation time, step
// count, obstacle geometry, the initial perturbation, and the snapshot
// cadence. Values not present in the yaml keep their defaults.
type Config struct {
	// Nx and Ny are the grid resolution in the x and y direction.
	Nx int `yaml:"nx"`
	Ny int `yaml:"ny"`
	// Tau is the BGK relaxation time; stable well above 0.5.
	Tau float64 `yaml:"tau"`
	// Steps is the total number of timesteps to run.
	Steps int `yaml:"steps"`
	// PlotEvery is the snapshot cadence in steps.
	PlotEvery int `yaml:"plot_every"`
	// Seed seeds the noise source for the initial field.
	Seed int64 `yaml:"seed"`

	Obstacle ObstacleConfig `yaml:"obstacle"`
	Noise    NoiseConfig    `yaml:"noise"`
	Inflow   InflowConfig   `yaml:"inflow"`
}

// ObstacleConfig places a circular obstacle. Radius is compared strictly
// against the Euclidean distance from the center, so cells exactly on the
// circle stay fluid.
type ObstacleConfig struct {
	X      int     `yaml:"x"`
	Y      int     `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// NoiseConfig describes the initial Gaussian perturbation of the field.
type NoiseConfig struct {
	Base   float64 `yaml:"base"`
	StdDev float64 `yaml:"std_dev"`
}

// InflowConfig biases one direction to a constant at initialization,
// establishing the inlet flow.
type InflowConfig struct {
	Direction int     `yaml:"direction"`
	Value     float64 `yaml:"value"`
}

// DefaultConfig mirrors the reference cylinder-flow run: a 400x100 grid,
// tau 0.65, obstacle of radius 13 centered at (Nx/4, Ny/2), and a +x inflow
// bias of 2.3 on direction 3.
func DefaultConfig() Config {
	return Config{
		Nx:        400,
		Ny:        100,
		Tau:       0.65,
		Steps:     5000,
		PlotEvery: 100,
		Seed:      42,
		Obstacle:  ObstacleConfig{X: 100, Y: 50, Radius: 13},
		Noise:     NoiseConfig{Base: 1.0, StdDev: 0.01},
		Inflow:    InflowConfig{Direction: 3, Value: 2.3},
	}
}

// Validate implements the pre-run configuration checks. Obstacle emptiness
// is checked when the mask is built, since it requires the geometry pass.
func (cfg *Config) Validate() error {
	if cfg.Nx <= 0 || cfg.Ny <= 0 {
		return fmt.Errorf("%w: non-positive grid dimensions %dx%d", ErrConfig, cfg.Nx, cfg.Ny)
	}
	// The inlet/outlet extrapolation reads the column adjacent to each open
	// boundary, so the grid needs an interior.
	if cfg.Nx < 3 {
		return fmt.Errorf("%w: grid width %d too small for open boundaries", ErrConfig, cfg.Nx)
	}
	if cfg.Tau <= 0 {
		return fmt.Errorf("%w: non-positive tau %v", ErrConfig, cfg.Tau)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: negative step count %d", ErrConfig, cfg.Steps)
	}
	if cfg.PlotEvery <= 0 {
		return fmt.Errorf("%w: non-positive snapshot cadence %d", ErrConfig, cfg.PlotEvery)
	}
	if cfg.Obstacle.Radius <= 0 {
		return fmt.Errorf("%w: non-positive obstacle radius %v", ErrConfig, cfg.Obstacle.Radius)
	}
	if cfg.Obstacle.X < 0 || cfg.Obstacle.X >= cfg.Nx ||
		cfg.Obstacle.Y < 0 || cfg.Obstacle.Y >= cfg.Ny {
		return fmt.Errorf("%w: obstacle center (%d,%d) outside %dx%d grid",
			ErrConfig, cfg.Obstacle.X, cfg.Obstacle.Y, cfg.Nx, cfg.Ny)
	}
	if cfg.Inflow.Direction < 0 || cfg.Inflow.Direction > 8 {
		return fmt.Errorf("%w: inflow direction %d outside 0..8", ErrConfig, cfg.Inflow.Direction)
	}
	return nil
}

// FromYaml loads a Config from a yaml file wrapped in the kind/def envelope.
// Viper reads and unmarshals the envelope; the untyped def is re-marshaled
// and decoded strictly as yaml, since viper on its own lowercases keys in
// nested maps.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	def, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(def, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
