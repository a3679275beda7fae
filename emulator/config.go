package emulator

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/secure32/cpu"
)

const (
	DEFAULT_DELAY_MS = 400 // Default delay between stages.
	SLIDER_BASE_MS   = 800 // Delay at slider position 0.
	SLIDER_MAX       = 700 // Fastest slider position.
)

// Clock paces stage progression.
// Slider, when set, overrides DelayMs with SliderDelay(Slider).
type Clock struct {
	DelayMs int  `toml:"delay_ms"`
	Slider  *int `toml:"slider"`
}

// Config is the emulator configuration file.
//
//	mode = "kernel"
//
//	[cpu]
//	memory_size = 64
//	protected_boundary = 16
//
//	[clock]
//	delay_ms = 400
type Config struct {
	Mode  string     `toml:"mode"`
	Cpu   cpu.Config `toml:"cpu"`
	Clock Clock      `toml:"clock"`
}

// DefaultConfig returns the USER mode, 64 cell, 400ms configuration.
func DefaultConfig() Config {
	return Config{
		Mode:  cpu.MODE_USER.String(),
		Cpu:   cpu.DefaultConfig(),
		Clock: Clock{DelayMs: DEFAULT_DELAY_MS},
	}
}

// LoadConfig reads a TOML configuration over the defaults.
func LoadConfig(r io.Reader) (cfg Config, err error) {
	cfg = DefaultConfig()

	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return
	}

	if keys := md.Undecoded(); len(keys) != 0 {
		names := make([]string, len(keys))
		for n, key := range keys {
			names[n] = key.String()
		}
		err = fmt.Errorf("%w: %v", ErrConfigKey, strings.Join(names, ", "))
		return
	}

	err = cfg.Validate()
	return
}

// Validate checks the configuration is usable.
func (cfg Config) Validate() (err error) {
	err = cfg.Cpu.Validate()
	if err != nil {
		return
	}

	_, err = cfg.ExecutionMode()
	if err != nil {
		return
	}

	if cfg.Clock.DelayMs < 0 {
		err = ErrClockDelay
		return
	}

	if cfg.Clock.Slider != nil && (*cfg.Clock.Slider < 0 || *cfg.Clock.Slider > SLIDER_MAX) {
		err = ErrClockSlider
		return
	}

	return
}

// ExecutionMode returns the configured privilege level.
func (cfg Config) ExecutionMode() (mode cpu.Mode, err error) {
	return cpu.ParseMode(cfg.Mode)
}

// Delay returns the configured delay between stages.
func (cfg Config) Delay() time.Duration {
	if cfg.Clock.Slider != nil {
		return SliderDelay(*cfg.Clock.Slider)
	}

	return time.Duration(cfg.Clock.DelayMs) * time.Millisecond
}

// SliderDelay maps a slider position in [0, SLIDER_MAX] to a stage delay.
// Higher positions are faster. Out of range positions are clamped.
func SliderDelay(position int) time.Duration {
	position = min(max(position, 0), SLIDER_MAX)
	return time.Duration(SLIDER_BASE_MS-position) * time.Millisecond
}
