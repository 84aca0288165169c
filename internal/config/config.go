// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config holds alignment jobs as YAML files, and turns them into operator pipelines
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mlnoga/prealign/internal/align"
	"github.com/mlnoga/prealign/internal/ops"
	"github.com/mlnoga/prealign/internal/ops/drift"
	"gopkg.in/yaml.v3"
)

// An alignment job. Either Inputs or Cube names the stack; either Landmarks or Roi drives the alignment.
type Config struct {
	Inputs     []string `yaml:"inputs,omitempty"`     // file patterns, one slice per file in glob order
	Cube       string   `yaml:"cube,omitempty"`       // single 3D FITS cube
	Output     string   `yaml:"output,omitempty"`     // per-slice output pattern with %d, blank for none
	OutputCube string   `yaml:"outputCube,omitempty"` // 3D FITS cube output, blank for none
	StatsFile  string   `yaml:"statsFile,omitempty"`  // CSV statistics per slice after alignment

	Options   align.Options    `yaml:"options"`
	Roi       align.Rect       `yaml:"roi"`
	RefSlice  int              `yaml:"refSlice"`
	Landmarks []align.Landmark `yaml:"landmarks,omitempty"`
	Current   int              `yaml:"current,omitempty"` // slice selected on confirmation
	Fill      float32          `yaml:"fill"`
}

var ErrNoInput = errors.New("job names neither input files nor a cube")

// Returns a job with default alignment options and no inputs
func DefaultConfig() *Config {
	return &Config{
		Options:  align.DefaultOptions(),
		RefSlice: 1,
		Current:  1,
	}
}

// Loads a job from a YAML file. Entries missing from the file keep their default values
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// Saves the job to a YAML file, creating its directory if needed
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Builds the operator pipeline for the job: load, align, then the requested outputs
func (cfg *Config) Pipeline() (*ops.OpSequence, error) {
	seq := ops.NewOpSequence()
	switch {
	case cfg.Cube != "":
		seq.Append(ops.NewOpLoadCube(cfg.Cube))
	case len(cfg.Inputs) > 0:
		seq.Append(ops.NewOpLoadMany(cfg.Inputs))
	default:
		return nil, ErrNoInput
	}

	if len(cfg.Landmarks) > 0 {
		op := drift.NewOpAlignLandmarks(cfg.Options, cfg.Landmarks, cfg.Current)
		op.Fill = cfg.Fill
		seq.Append(op)
	} else {
		op := drift.NewOpAlignRoi(cfg.Options, cfg.Roi, cfg.RefSlice)
		op.Fill = cfg.Fill
		seq.Append(op)
	}

	if cfg.StatsFile != "" {
		seq.Append(drift.NewOpExportStats(cfg.StatsFile))
	}
	if cfg.Output != "" {
		seq.Append(ops.NewOpSave(cfg.Output))
	}
	if cfg.OutputCube != "" {
		seq.Append(ops.NewOpSaveCube(cfg.OutputCube))
	}
	return seq, nil
}
