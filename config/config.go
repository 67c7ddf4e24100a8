// Package config holds the options that control compilation and execution.
//
// Options are read from YAML:
//
//   memoize: true    # packrat caching of rule results
//   trace: false     # per-rule execution trace
//   listing: false   # disassembly of every compiled program
//   color: auto      # auto | always | never
//
// and may be overridden from the environment (see ApplyEnv).
//
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var ErrBadColor = errors.New("color must be one of auto, always, never")

// Options controls the compiler and the engine.
type Options struct {
	Memoize bool   `yaml:"memoize"`
	Trace   bool   `yaml:"trace"`
	Listing bool   `yaml:"listing"`
	Color   string `yaml:"color"`
}

// Default returns the options used when nothing else is configured.
func Default() Options {
	return Options{
		Memoize: true,
		Color:   ColorAuto,
	}
}

// Validate checks the option values.
func (o Options) Validate() error {
	switch o.Color {
	case ColorAuto, ColorAlways, ColorNever:
		return nil
	}
	return fmt.Errorf("config: %q: %w", o.Color, ErrBadColor)
}

// Parse reads options from YAML. Keys that are absent keep their defaults.
func Parse(data []byte) (Options, error) {
	o := Default()
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Load reads options from a YAML file.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// ApplyEnv overrides o from environment variables, looked up through
// getenv (os.Getenv when nil):
//
// • TOKAY_DEBUG: 0 disables listing and trace, 1 enables the listing,
// 2 or more enables listing and trace.
//
// • TOKAY_MEMOIZE: any value accepted by strconv.ParseBool.
//
// • TOKAY_COLOR: auto, always or never.
//
func ApplyEnv(o *Options, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if s := strings.TrimSpace(getenv("TOKAY_DEBUG")); s != "" {
		level, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("config: TOKAY_DEBUG: %w", err)
		}
		o.Listing = level >= 1
		o.Trace = level >= 2
	}
	if s := strings.TrimSpace(getenv("TOKAY_MEMOIZE")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("config: TOKAY_MEMOIZE: %w", err)
		}
		o.Memoize = b
	}
	if s := strings.TrimSpace(getenv("TOKAY_COLOR")); s != "" {
		o.Color = s
	}
	return o.Validate()
}

// FromEnv returns Default() with environment overrides applied.
func FromEnv() (Options, error) {
	o := Default()
	err := ApplyEnv(&o, nil)
	return o, err
}
