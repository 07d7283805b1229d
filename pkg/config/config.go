// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/consensys/go-declare/pkg/alloy/codegen"
	"github.com/consensys/go-declare/pkg/alloy/enum"
	"github.com/consensys/go-declare/pkg/generate"
	"github.com/consensys/go-declare/pkg/monitor"
	"gopkg.in/yaml.v3"
)

const (
	// BridgeSolver selects an external solver process, spoken to over
	// JSON-RPC.
	BridgeSolver = "bridge"
	// EnumSolver selects the in-process enumeration solver.
	EnumSolver = "enum"
	// DefaultBridge is the command started for the bridge solver.
	DefaultBridge = "alloy-bridge"
)

// Config is the contents of a configuration file.  Missing sections and
// fields retain their defaults.
type Config struct {
	Compiler Compiler `yaml:"compiler"`
	Monitor  Monitor  `yaml:"monitor"`
	Solver   Solver   `yaml:"solver"`
	Generate Generate `yaml:"generate"`
	// Number of traces processed in parallel.
	Jobs int `yaml:"jobs"`
}

// Compiler configures the compilation of models.
type Compiler struct {
	MinLength        int    `yaml:"min-length"`
	MaxLength        int    `yaml:"max-length"`
	BitWidth         int    `yaml:"bit-width"`
	MaxSameInstances int    `yaml:"max-same-instances"`
	IntervalSplits   int    `yaml:"interval-splits"`
	Vacuity          bool   `yaml:"vacuity"`
	Shuffle          bool   `yaml:"shuffle"`
	Seed             uint64 `yaml:"seed"`
	SingleForSame    bool   `yaml:"single-for-same"`
}

// Monitor configures compliance monitoring.
type Monitor struct {
	Conflicts bool   `yaml:"conflicts"`
	Sentinel  string `yaml:"sentinel"`
}

// Solver determines which solver is used, and how it is started.
type Solver struct {
	Kind    string        `yaml:"kind"`
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
	// Sequences explored by the enumeration solver.
	Limit int `yaml:"limit"`
}

// Generate configures log generation.
type Generate struct {
	Start    time.Time     `yaml:"start"`
	Step     time.Duration `yaml:"step"`
	Attempts int           `yaml:"attempts"`
}

// Default returns the default configuration.
func Default() Config {
	var (
		c = codegen.DefaultConfig()
		m = monitor.DefaultConfig()
		g = generate.DefaultConfig()
	)
	//
	return Config{
		Compiler: Compiler{
			MinLength:        c.MinLength,
			MaxLength:        c.MaxLength,
			BitWidth:         c.BitWidth,
			MaxSameInstances: c.MaxSameInstances,
			IntervalSplits:   c.IntervalSplits,
			Vacuity:          c.Vacuity,
			Shuffle:          c.Shuffle,
			Seed:             c.Seed,
			SingleForSame:    c.SingleForSame,
		},
		Monitor: Monitor{Conflicts: m.Conflicts, Sentinel: m.Sentinel},
		Solver: Solver{
			Kind:    BridgeSolver,
			Command: DefaultBridge,
			Timeout: time.Minute,
			Limit:   enum.DefaultLimit,
		},
		Generate: Generate{Step: g.Step, Attempts: g.Attempts},
		Jobs:     1,
	}
}

// Read a configuration, on top of the defaults.
func Read(r io.Reader) (*Config, error) {
	config := Default()
	//
	if err := yaml.NewDecoder(r).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	//
	if err := config.Validate(); err != nil {
		return nil, err
	}
	//
	return &config, nil
}

// ReadFile reads a configuration file.
func ReadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	//
	defer f.Close()
	//
	config, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	//
	return config, nil
}

// Validate checks every section of this configuration.
func (c *Config) Validate() error {
	var errs []error
	//
	if err := c.CompilerConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("compiler: %w", err))
	}
	//
	switch c.Solver.Kind {
	case BridgeSolver:
		if c.Solver.Command == "" {
			errs = append(errs, errors.New("solver: missing bridge command"))
		}
	case EnumSolver:
		if c.Solver.Limit < 1 {
			errs = append(errs, fmt.Errorf("solver: limit %d must be positive", c.Solver.Limit))
		}
	default:
		errs = append(errs, fmt.Errorf("solver: unknown kind \"%s\"", c.Solver.Kind))
	}
	//
	if c.Solver.Timeout < 0 {
		errs = append(errs, fmt.Errorf("solver: negative timeout %s", c.Solver.Timeout))
	}
	//
	if c.Monitor.Sentinel == "" {
		errs = append(errs, errors.New("monitor: missing sentinel"))
	}
	//
	if c.Generate.Step < 0 {
		errs = append(errs, fmt.Errorf("generate: negative step %s", c.Generate.Step))
	}
	//
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs %d must be positive", c.Jobs))
	}
	//
	return errors.Join(errs...)
}

// CompilerConfig returns the compiler configuration, in log generation mode.
func (c *Config) CompilerConfig() codegen.Config {
	config := codegen.DefaultConfig()
	config.MinLength = c.Compiler.MinLength
	config.MaxLength = c.Compiler.MaxLength
	config.BitWidth = c.Compiler.BitWidth
	config.MaxSameInstances = c.Compiler.MaxSameInstances
	config.IntervalSplits = c.Compiler.IntervalSplits
	config.Vacuity = c.Compiler.Vacuity
	config.Shuffle = c.Compiler.Shuffle
	config.Seed = c.Compiler.Seed
	config.SingleForSame = c.Compiler.SingleForSame
	//
	return config
}

// MonitorConfig returns the monitor configuration.
func (c *Config) MonitorConfig() monitor.Config {
	return monitor.Config{
		BitWidth:  c.Compiler.BitWidth,
		Conflicts: c.Monitor.Conflicts,
		Sentinel:  c.Monitor.Sentinel,
	}
}

// GenerateConfig returns the log generation configuration.
func (c *Config) GenerateConfig() generate.Config {
	return generate.Config{
		Compiler: c.CompilerConfig(),
		Start:    c.Generate.Start,
		Step:     c.Generate.Step,
		Attempts: c.Generate.Attempts,
	}
}
