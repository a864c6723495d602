// Package config loads ls-orrery settings from defaults, an optional config
// file, ORRERY_* environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/litescript/ls-orrery/internal/orbit"
)

// EnvPrefix is the prefix for environment overrides, e.g. ORRERY_SIM_TICK.
const EnvPrefix = "ORRERY"

// Keys
const (
	KeyLogLevel          = "log.level"
	KeyCatalogPath       = "catalog.path"
	KeyAUScale           = "units.au_scale"
	KeySizeScale         = "units.size_scale"
	KeyYOffset           = "units.y_offset"
	KeyTimeScale         = "sim.time_scale"
	KeyTick              = "sim.tick"
	KeyRotationStep      = "sim.rotation_step"
	KeySegments          = "sim.segments"
	KeyParallelThreshold = "sim.parallel_threshold"
	KeyServerAddr        = "server.addr"
	KeyServerMaxFPS      = "server.max_fps"
)

// Config is the resolved configuration.
type Config struct {
	LogLevel    string
	CatalogPath string
	Units       UnitsConfig
	Sim         SimConfig
	Server      ServerConfig
}

// UnitsConfig is the single unit policy applied to every dataset.
type UnitsConfig struct {
	AUScale   float64 // display units per AU
	SizeScale float64 // multiplier on size hints
	YOffset   float64 // height of bodies above the orbital plane
}

// SimConfig controls the simulation clock and tick loop.
type SimConfig struct {
	TimeScale         float64 // simulated days per wall-clock second
	Tick              time.Duration
	RotationStep      float64 // radians per tick
	Segments          int
	ParallelThreshold int // advance bodies concurrently above this count; 0 disables
}

// ServerConfig controls the HTTP/websocket adapter.
type ServerConfig struct {
	Addr   string
	MaxFPS float64 // per-client websocket frame limit
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Units: UnitsConfig{
			AUScale:   orbit.DefaultAUScale,
			SizeScale: 1,
		},
		Sim: SimConfig{
			TimeScale:         10,
			Tick:              50 * time.Millisecond,
			RotationStep:      orbit.DefaultRotationStep,
			Segments:          orbit.DefaultSegments,
			ParallelThreshold: 256,
		},
		Server: ServerConfig{
			Addr:   "127.0.0.1:8089",
			MaxFPS: 10,
		},
	}
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers Default() on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyCatalogPath, d.CatalogPath)
	v.SetDefault(KeyAUScale, d.Units.AUScale)
	v.SetDefault(KeySizeScale, d.Units.SizeScale)
	v.SetDefault(KeyYOffset, d.Units.YOffset)
	v.SetDefault(KeyTimeScale, d.Sim.TimeScale)
	v.SetDefault(KeyTick, d.Sim.Tick)
	v.SetDefault(KeyRotationStep, d.Sim.RotationStep)
	v.SetDefault(KeySegments, d.Sim.Segments)
	v.SetDefault(KeyParallelThreshold, d.Sim.ParallelThreshold)
	v.SetDefault(KeyServerAddr, d.Server.Addr)
	v.SetDefault(KeyServerMaxFPS, d.Server.MaxFPS)
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":  KeyLogLevel,
	"catalog":    KeyCatalogPath,
	"au-scale":   KeyAUScale,
	"size-scale": KeySizeScale,
	"y-offset":   KeyYOffset,
	"time-scale": KeyTimeScale,
	"tick":       KeyTick,
	"rotation":   KeyRotationStep,
	"segments":   KeySegments,
	"parallel":   KeyParallelThreshold,
	"addr":       KeyServerAddr,
	"max-fps":    KeyServerMaxFPS,
}

// BindFlags binds every known flag present in fs to its key.
// Flags only override lower layers when explicitly set.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional config file at path and resolves the final Config.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		LogLevel:    v.GetString(KeyLogLevel),
		CatalogPath: v.GetString(KeyCatalogPath),
		Units: UnitsConfig{
			AUScale:   v.GetFloat64(KeyAUScale),
			SizeScale: v.GetFloat64(KeySizeScale),
			YOffset:   v.GetFloat64(KeyYOffset),
		},
		Sim: SimConfig{
			TimeScale:         v.GetFloat64(KeyTimeScale),
			Tick:              v.GetDuration(KeyTick),
			RotationStep:      v.GetFloat64(KeyRotationStep),
			Segments:          v.GetInt(KeySegments),
			ParallelThreshold: v.GetInt(KeyParallelThreshold),
		},
		Server: ServerConfig{
			Addr:   v.GetString(KeyServerAddr),
			MaxFPS: v.GetFloat64(KeyServerMaxFPS),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	var errs []error
	if c.Units.AUScale <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive, got %v", KeyAUScale, c.Units.AUScale))
	}
	if c.Units.SizeScale <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive, got %v", KeySizeScale, c.Units.SizeScale))
	}
	if c.Sim.Tick <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive, got %v", KeyTick, c.Sim.Tick))
	}
	if c.Sim.Segments < orbit.MinSegments {
		errs = append(errs, fmt.Errorf("%s: %w", KeySegments,
			&orbit.ParameterError{Name: "segments", Value: float64(c.Sim.Segments), Reason: "degenerate polygon"}))
	}
	if c.Sim.ParallelThreshold < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative, got %d", KeyParallelThreshold, c.Sim.ParallelThreshold))
	}
	if c.Server.MaxFPS <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive, got %v", KeyServerMaxFPS, c.Server.MaxFPS))
	}
	return errors.Join(errs...)
}
