// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/soldoc/internal/errors"
	"github.com/kraklabs/soldoc/pkg/generation"
	"github.com/kraklabs/soldoc/pkg/knowledge"
	"github.com/kraklabs/soldoc/pkg/pipeline"
	"github.com/kraklabs/soldoc/pkg/solution"
)

const (
	// DefaultConfigPath is read when --config is not given. It is optional.
	DefaultConfigPath = ".soldoc/config.yaml"

	defaultModel       = generation.DefaultModel
	defaultOutDir      = "rag_outputs"
	defaultParseOutDir = "parsed_output"
	defaultConverter   = "pandoc"
)

// Config is the soldoc configuration file.
type Config struct {
	Index      IndexConfig      `yaml:"index"`
	Generation GenerationConfig `yaml:"generation"`
	Parse      ParseConfig      `yaml:"parse"`
	// ScratchDir receives extracted archives. Empty means the system temp dir.
	ScratchDir string `yaml:"scratch_dir,omitempty"`
}

// IndexConfig configures the remote vector store.
type IndexConfig struct {
	Name           string        `yaml:"name"`
	ID             string        `yaml:"id,omitempty"`
	APIKey         string        `yaml:"api_key,omitempty"`
	BaseURL        string        `yaml:"base_url,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	PollAttempts   int           `yaml:"poll_attempts"`
}

// GenerationConfig configures output generation and document conversion.
type GenerationConfig struct {
	Model         string   `yaml:"model"`
	OutDir        string   `yaml:"out_dir"`
	Format        string   `yaml:"format"`
	Converter     string   `yaml:"converter"`
	ConverterArgs []string `yaml:"converter_args,omitempty"`
}

// ParseConfig configures the parse step.
type ParseConfig struct {
	OutDir string `yaml:"out_dir"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Name:           pipeline.DefaultIndexName,
			RequestTimeout: knowledge.DefaultRequestTimeout,
			PollInterval:   knowledge.DefaultPollInterval,
			PollAttempts:   knowledge.DefaultPollAttempts,
		},
		Generation: GenerationConfig{
			Model:     defaultModel,
			OutDir:    defaultOutDir,
			Format:    string(generation.FormatWord),
			Converter: defaultConverter,
		},
		Parse: ParseConfig{OutDir: defaultParseOutDir},
	}
}

// LoadConfig resolves the configuration: defaults, then the YAML file, then
// environment variables. A .env file in the working directory is loaded into
// the environment first without overriding variables that are already set.
// A missing default config file is not an error; a missing explicit one is.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, errors.NewConfigError(
			"Cannot load .env",
			err.Error(),
			"Fix the syntax of .env or remove it",
			err,
		)
	}

	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewConfigError(
				"Cannot parse config file",
				fmt.Sprintf("%s: %v", path, err),
				"Check the YAML syntax; durations look like 60s or 1m",
				err,
			)
		}
	case explicit || !os.IsNotExist(err):
		return nil, errors.NewConfigError(
			"Cannot read config file",
			err.Error(),
			"Check the --config path",
			err,
		)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		c.Index.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		c.Index.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SOLDOC_MODEL")); v != "" {
		c.Generation.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("SOLDOC_OUT_DIR")); v != "" {
		c.Generation.OutDir = v
	}
	if v := strings.TrimSpace(os.Getenv("SOLDOC_INDEX_ID")); v != "" {
		c.Index.ID = v
	}
}

// applyDefaults fills values the file left empty.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if strings.TrimSpace(c.Index.Name) == "" {
		c.Index.Name = d.Index.Name
	}
	if c.Index.RequestTimeout == 0 {
		c.Index.RequestTimeout = d.Index.RequestTimeout
	}
	if c.Index.PollInterval == 0 {
		c.Index.PollInterval = d.Index.PollInterval
	}
	if c.Index.PollAttempts == 0 {
		c.Index.PollAttempts = d.Index.PollAttempts
	}
	if strings.TrimSpace(c.Generation.Model) == "" {
		c.Generation.Model = d.Generation.Model
	}
	if strings.TrimSpace(c.Generation.OutDir) == "" {
		c.Generation.OutDir = d.Generation.OutDir
	}
	if strings.TrimSpace(c.Generation.Format) == "" {
		c.Generation.Format = d.Generation.Format
	}
	if strings.TrimSpace(c.Generation.Converter) == "" {
		c.Generation.Converter = d.Generation.Converter
	}
	if strings.TrimSpace(c.Parse.OutDir) == "" {
		c.Parse.OutDir = d.Parse.OutDir
	}
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var problems []string
	if c.Index.RequestTimeout < 0 {
		problems = append(problems, "index.request_timeout must be positive")
	}
	if c.Index.PollInterval < 0 {
		problems = append(problems, "index.poll_interval must be positive")
	}
	if c.Index.PollAttempts < 0 {
		problems = append(problems, "index.poll_attempts must be at least 1")
	}
	if _, err := generation.ParseDocFormat(c.Generation.Format); err != nil {
		problems = append(problems, "generation.format must be word or pdf")
	}
	if len(problems) > 0 {
		return errors.NewConfigError(
			"Invalid configuration",
			strings.Join(problems, "; "),
			"Fix the values in "+DefaultConfigPath+" or the file passed to --config",
			nil,
		)
	}
	return nil
}

// RequireAPIKey reports a config error when no API key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Index.APIKey) != "" {
		return nil
	}
	return errors.NewConfigError(
		"OpenAI API key is not set",
		"Neither OPENAI_API_KEY nor index.api_key is configured",
		"Export OPENAI_API_KEY or add it to .env",
		nil,
	)
}

// DocFormat returns the configured conversion format. Validate has run.
func (c *Config) DocFormat() generation.DocFormat {
	f, _ := generation.ParseDocFormat(c.Generation.Format)
	return f
}

// Converter builds the document converter.
func (c *Config) Converter() generation.Converter {
	return generation.PandocConverter{Binary: c.Generation.Converter, Args: c.Generation.ConverterArgs}
}

// Service builds the remote knowledge service.
func (c *Config) Service() (knowledge.Service, error) {
	if err := c.RequireAPIKey(); err != nil {
		return nil, err
	}
	svc, err := knowledge.NewOpenAIService(knowledge.OpenAIConfig{
		APIKey:         c.Index.APIKey,
		BaseURL:        c.Index.BaseURL,
		RequestTimeout: c.Index.RequestTimeout,
	})
	if err != nil {
		return nil, errors.NewConfigError("Cannot create OpenAI client", err.Error(), "", err)
	}
	return svc, nil
}

// ChunkDir is where parse writes chunks and index reads them by default.
func (c *Config) ChunkDir() string {
	return filepath.Join(c.Parse.OutDir, solution.ChunksDir)
}
