// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/substrate"
)

// PolicyConfig is the YAML shape of one stage's delivery policy.
// Durations are strings in time.ParseDuration syntax ("30s", "1m").
// Nil fields keep the stage's default.
type PolicyConfig struct {
	Retries     *int   `yaml:"retries"`
	Concurrency *int   `yaml:"concurrency"`
	Timeout     string `yaml:"timeout"`
	BaseDelay   string `yaml:"base_delay"`
	RateLimit   *struct {
		Limit  int    `yaml:"limit"`
		Period string `yaml:"period"`
	} `yaml:"rate_limit"`
}

// Config holds per-stage policy overrides keyed by stage name.
type Config struct {
	Stages map[string]PolicyConfig `yaml:"stages"`
}

// LoadConfig reads a YAML policy file. A missing file yields an empty
// config, so every stage runs on its defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading policy config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML policy overrides.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	return &cfg, nil
}

// PolicyFor resolves the delivery policy for a stage: the stage's
// default overlaid with any configured overrides.
func (c *Config) PolicyFor(stage core.StageName) (substrate.Policy, error) {
	policy := DefaultPolicy(stage)

	override, ok := c.Stages[string(stage)]
	if !ok {
		if err := policy.Validate(); err != nil {
			return substrate.Policy{}, err
		}
		return policy, nil
	}

	if override.Retries != nil {
		policy.Retries = *override.Retries
	}
	if override.Concurrency != nil {
		policy.Concurrency = *override.Concurrency
	}
	if override.Timeout != "" {
		d, err := time.ParseDuration(override.Timeout)
		if err != nil {
			return substrate.Policy{}, fmt.Errorf("stage %s timeout: %w", stage, err)
		}
		policy.Timeout = d
	}
	if override.BaseDelay != "" {
		d, err := time.ParseDuration(override.BaseDelay)
		if err != nil {
			return substrate.Policy{}, fmt.Errorf("stage %s base_delay: %w", stage, err)
		}
		policy.BaseDelay = d
	}
	if override.RateLimit != nil {
		period, err := time.ParseDuration(override.RateLimit.Period)
		if err != nil {
			return substrate.Policy{}, fmt.Errorf("stage %s rate_limit period: %w", stage, err)
		}
		policy.RateLimit = substrate.RateLimit{
			Limit:  override.RateLimit.Limit,
			Period: period,
		}
	}

	if err := policy.Validate(); err != nil {
		return substrate.Policy{}, fmt.Errorf("stage %s: %w", stage, err)
	}
	return policy, nil
}

// DefaultPolicy returns the built-in delivery policy for a stage.
// Stages that call external services retry more and run rate limited;
// local stages run wide open with a small retry budget.
func DefaultPolicy(stage core.StageName) substrate.Policy {
	switch stage {
	case core.StageADEProcessing:
		return substrate.Policy{
			Retries:     3,
			Concurrency: 2,
			Timeout:     5 * time.Minute,
			BaseDelay:   2 * time.Second,
			RateLimit:   substrate.RateLimit{Limit: 30, Period: time.Minute},
		}
	case core.StageEmbedding:
		return substrate.Policy{
			Retries:     3,
			Concurrency: 4,
			Timeout:     2 * time.Minute,
			BaseDelay:   time.Second,
			RateLimit:   substrate.RateLimit{Limit: 120, Period: time.Minute},
		}
	default:
		return substrate.Policy{
			Retries:     2,
			Concurrency: 0, // CPU-derived default
			Timeout:     time.Minute,
			BaseDelay:   time.Second,
		}
	}
}
