//go:build linux

/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"sigrec/src/capture"
	"sigrec/src/signal"
)

// Config is read from a TOML or YAML file. Missing keys keep their defaults.
type Config struct {
	Chip       string `toml:"chip" yaml:"chip"`
	Line       int    `toml:"line" yaml:"line"`
	PullUp     bool   `toml:"pull_up" yaml:"pull_up"`
	PeriodUs   uint32 `toml:"period_us" yaml:"period_us"`
	Resolution uint32 `toml:"resolution" yaml:"resolution"`
	FirstEdge  string `toml:"first_edge" yaml:"first_edge"` // rising or falling
	Capacity   int    `toml:"capacity" yaml:"capacity"`

	Duration time.Duration `toml:"duration" yaml:"duration"` // how long to record
	Output   string        `toml:"output" yaml:"output"`     // "-" is stdout
	Format   string        `toml:"format" yaml:"format"`     // text, binary or list

	Replay ReplayConfig `toml:"replay" yaml:"replay"`
}

// ReplayConfig names an output line to play the recording back on.
type ReplayConfig struct {
	Chip string `toml:"chip" yaml:"chip"`
	Line int    `toml:"line" yaml:"line"` // negative disables replay
}

func DefaultConfig() *Config {
	rc := capture.DefaultConfig()
	return &Config{
		Chip:       "gpiochip0",
		Line:       17,
		PullUp:     true,
		PeriodUs:   rc.PeriodUs,
		Resolution: rc.Resolution,
		FirstEdge:  "falling",
		Capacity:   4096,
		Duration:   10 * time.Second,
		Output:     "-",
		Format:     "text",
		Replay:     ReplayConfig{Chip: "gpiochip0", Line: -1},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if c.Line < 0 {
		errs = append(errs, fmt.Errorf("line %d is negative", c.Line))
	}
	if c.FirstEdge != "rising" && c.FirstEdge != "falling" {
		errs = append(errs, fmt.Errorf("first_edge %q is neither rising nor falling", c.FirstEdge))
	}
	if c.Capacity < 1 || c.Capacity > signal.MaxSignals {
		errs = append(errs, fmt.Errorf("capacity %d is outside 1..%d", c.Capacity, signal.MaxSignals))
	}
	switch c.Format {
	case "text", "binary", "list":
	default:
		errs = append(errs, fmt.Errorf("format %q is not text, binary or list", c.Format))
	}
	if c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration %v is not positive", c.Duration))
	}
	return errors.Join(errs...)
}

// Recorder returns the recorder settings.
func (c *Config) Recorder() capture.Config {
	return capture.Config{
		PeriodUs:        c.PeriodUs,
		Resolution:      c.Resolution,
		FirstEdgeRising: c.FirstEdge == "rising",
	}
}
