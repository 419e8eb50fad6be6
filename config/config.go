package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/demand"
	"github.com/kilianp07/baysim/core/factory"
	"github.com/kilianp07/baysim/core/metrics"
	"github.com/kilianp07/baysim/core/policy"
	"github.com/kilianp07/baysim/core/queue"
	"github.com/kilianp07/baysim/core/sim"
)

// EnvPrefix prefixes environment overrides. BAYSIM_SIMULATION__BAYS=4 sets
// simulation.bays.
const EnvPrefix = "BAYSIM_"

type Config struct {
	Simulation SimulationConfig `json:"simulation"`
	Queue      QueueConfig      `json:"queue"`
	// Shared overrides the FCFS arrival parameters.
	Shared *demand.SharedQueueModel `json:"shared"`
	// ProfileFile points to a YAML or JSON independent-bay profile. It takes
	// precedence over an inline Profile.
	ProfileFile string                 `json:"profile_file"`
	Profile     demand.Profile         `json:"profile"`
	Export      ExportConfig           `json:"export"`
	Outputs     []factory.ModuleConfig `json:"outputs"`
	Metrics     metrics.Config         `json:"metrics"`
	Logging     LoggingConfig          `json:"logging"`
	Sentry      SentryConfig           `json:"sentry"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads the configuration file at path and applies environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	// A partial shared section overrides the defaults field by field.
	shared := demand.DefaultShared()
	cfg := Config{Shared: &shared}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Queue.SetDefaults()
	c.Export.SetDefaults()
	c.Logging.SetDefaults()
	if c.Shared == nil {
		s := demand.DefaultShared()
		c.Shared = &s
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Shared != nil {
		if err := c.Shared.Validate(); err != nil {
			return fmt.Errorf("shared: %w", err)
		}
	}
	if len(c.Profile) > 0 && c.ProfileFile == "" {
		if err := c.Profile.Validate(); err != nil {
			return fmt.Errorf("profile: %w", err)
		}
	}
	for i, o := range c.Outputs {
		if o.Type == "" {
			return fmt.Errorf("outputs[%d]: type is required", i)
		}
	}
	return nil
}

// ResolveProfile returns the profile file contents, the inline profile or
// the built-in default, in that order.
func (c Config) ResolveProfile() (demand.Profile, error) {
	if c.ProfileFile != "" {
		return demand.LoadProfile(c.ProfileFile)
	}
	if len(c.Profile) > 0 {
		return c.Profile, nil
	}
	return demand.DefaultProfile(), nil
}

// SimConfig converts the configuration into driver settings.
func (c Config) SimConfig() (sim.Config, error) {
	sc := sim.DefaultConfig()
	sc.Bays = c.Simulation.Bays
	sc.Steps = c.Simulation.Steps
	sc.Seed = c.Simulation.Seed
	sc.Policy = policy.Kind(c.Simulation.Policy)
	sc.Separator = c.Simulation.Separator
	if len(c.Simulation.WinterRanges) > 0 {
		sc.Calendar.WinterRanges = append([]calendar.Range(nil), c.Simulation.WinterRanges...)
	}
	if c.Shared != nil {
		sc.Shared = *c.Shared
	}
	sc.QueueCapacity = c.Queue.Capacity
	sc.DropPolicy = queue.DropPolicy(c.Queue.DropPolicy)
	if sc.Policy == policy.KindIndependent {
		p, err := c.ResolveProfile()
		if err != nil {
			return sim.Config{}, err
		}
		sc.Profile = p
	}
	return sc, sc.Validate()
}

// SimulationConfig holds the run dimensions.
type SimulationConfig struct {
	Bays   int    `json:"bays"`
	Steps  int    `json:"steps"`
	Seed   int64  `json:"seed"`
	Policy string `json:"policy"`
	// Separator overrides the policy's timestep type separator.
	Separator    string           `json:"separator"`
	WinterRanges []calendar.Range `json:"winter_ranges"`
	// Origin is the simulated instant of step 0, used to timestamp metrics.
	Origin string `json:"origin"`
}

// SetDefaults applies the reference dimensions.
func (c *SimulationConfig) SetDefaults() {
	if c.Bays == 0 {
		c.Bays = 10
	}
	if c.Steps == 0 {
		c.Steps = calendar.StepsPerYear
	}
	if c.Policy == "" {
		c.Policy = string(policy.KindFCFS)
	}
	if c.Origin == "" {
		c.Origin = "2024-01-01T00:00:00Z"
	}
}

// Validate checks mandatory fields.
func (c SimulationConfig) Validate() error {
	if c.Bays < 1 {
		return fmt.Errorf("bays must be at least 1")
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must not be negative")
	}
	if _, err := policy.ParseKind(c.Policy); err != nil {
		return err
	}
	for _, r := range c.WinterRanges {
		if r.End < r.Start {
			return fmt.Errorf("winter range [%d,%d) is inverted", r.Start, r.End)
		}
	}
	if _, err := c.OriginTime(); err != nil {
		return err
	}
	return nil
}

// OriginTime parses Origin.
func (c SimulationConfig) OriginTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, c.Origin)
	if err != nil {
		return time.Time{}, fmt.Errorf("origin: %w", err)
	}
	return t, nil
}

// QueueConfig bounds the FCFS queue. Capacity 0 keeps it unbounded.
type QueueConfig struct {
	Capacity   int    `json:"capacity"`
	DropPolicy string `json:"drop_policy"`
}

func (c *QueueConfig) SetDefaults() {
	if c.DropPolicy == "" {
		c.DropPolicy = string(queue.DropNewest)
	}
}

func (c QueueConfig) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative")
	}
	_, err := queue.ParseDropPolicy(c.DropPolicy)
	return err
}
