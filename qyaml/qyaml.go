// Copyright 2024 The q Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package qyaml loads the YAML configuration a program wires its queues
// and channels from: default worker-pool sizes and channel capacities,
// kept out of the core q package so that package stays free of any
// configuration-format dependency.
package qyaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the defaults a program reads once at startup and passes
// into q.NewPoolQueue / q.NewChannel calls.
type Config struct {
	// PoolWorkers is the worker count for the default q.PoolQueue.
	PoolWorkers int `yaml:"pool_workers"`

	// ChannelCapacity is the default capacity passed to q.NewChannel
	// when a call site doesn't override it.
	ChannelCapacity int `yaml:"channel_capacity"`

	// Queues maps a named queue (e.g. "ingest", "fanout") to its own
	// worker count, for programs running more than one pool.
	Queues map[string]int `yaml:"queues"`
}

// DefaultConfig returns the configuration used when no file is loaded.
func DefaultConfig() Config {
	return Config{
		PoolWorkers:     1,
		ChannelCapacity: 16,
	}
}

// Load reads and parses a Config from path, starting from
// DefaultConfig so a partial file only overrides the fields it sets.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("qyaml: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("qyaml: parse %s: %w", path, err)
	}
	return cfg, nil
}

// WorkersFor returns the configured worker count for the named queue,
// falling back to PoolWorkers if the name isn't listed.
func (c Config) WorkersFor(name string) int {
	if n, ok := c.Queues[name]; ok && n > 0 {
		return n
	}
	return c.PoolWorkers
}
