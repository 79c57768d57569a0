// Copyright (c) 2018 Cisco and/or its affiliates.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at:
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// EnvVar is the environment variable with the path to the configuration file.
const EnvVar = "CX7CTL_CONFIG"

const (
	defaultMTU          = 9000
	defaultParallelism  = 16
	defaultProbeTimeout = 30 * time.Second
	defaultApplyTimeout = 120 * time.Second
)

// Config represents configuration for cx7ctl.
// The path to the configuration file can be specified in two ways:
//   - using the --config=<path to config> argument, or
//   - using the CX7CTL_CONFIG=<path to config> environment variable
//
// Command line flags take precedence over the values from the file.
type Config struct {
	// Hosts of the cluster, used when --hosts is not given
	Hosts []string `json:"hosts,omitempty"`

	// MTU the CX7 interfaces are configured with
	MTU int `json:"mtu,omitempty"`

	// Target subnets, either both or none must be set
	Subnet1 string `json:"subnet1,omitempty"`
	Subnet2 string `json:"subnet2,omitempty"`

	SSHUser    string   `json:"sshUser,omitempty"`
	SSHOptions []string `json:"sshOptions,omitempty"`

	// maximum number of hosts contacted at once
	Parallelism  int      `json:"parallelism,omitempty"`
	ProbeTimeout Duration `json:"probeTimeout,omitempty"`
	ApplyTimeout Duration `json:"applyTimeout,omitempty"`

	// MetricsFile is a node-exporter textfile the run outcome is written into
	MetricsFile string `json:"metricsFile,omitempty"`
}

// Duration is time.Duration read from a string like "30s" (or a number of nanoseconds).
type Duration struct {
	time.Duration
}

// UnmarshalJSON parses duration from a JSON string or number.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	switch v := value.(type) {
	case float64:
		d.Duration = time.Duration(v)
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return errors.Errorf("invalid duration: %s", string(data))
	}
	return nil
}

// MarshalJSON prints duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Load reads configuration from the given YAML file. When path is empty,
// the file named by CX7CTL_CONFIG is read instead. With no file at all,
// the default configuration is returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}

	cfg := &Config{}
	if path != "" {
		yamlFile, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills unset values with the defaults.
func (c *Config) ApplyDefaults() {
	if c.MTU <= 0 {
		c.MTU = defaultMTU
	}
	if c.Parallelism <= 0 {
		c.Parallelism = defaultParallelism
	}
	if c.ProbeTimeout.Duration <= 0 {
		c.ProbeTimeout.Duration = defaultProbeTimeout
	}
	if c.ApplyTimeout.Duration <= 0 {
		c.ApplyTimeout.Duration = defaultApplyTimeout
	}
}
