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

package cmdimpl

import (
	"io"
	"net"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/contiv/cx7ctl/pkg/util/logs"
	"github.com/contiv/cx7ctl/plugins/contivconf/config"
	"github.com/contiv/cx7ctl/plugins/netctl/remote"
)

// Deps lists dependencies of the commands.
type Deps struct {
	// Transport replaces the SSH transport built from the configuration
	Transport remote.Transport
	Log       logrus.FieldLogger
	// Out receives the tables and scripts, stdout by default
	Out io.Writer
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logs.Discard()
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	return d
}

// ClusterOptions are options of the commands working with a set of hosts.
type ClusterOptions struct {
	// comma separated list of hosts
	Hosts       string
	ConfigFile  string
	SSHUser     string
	Parallelism int
	// per-host probe timeout
	Timeout time.Duration
}

// config loads the configuration file and overrides it with the options.
func (o *ClusterOptions) config() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if o.SSHUser != "" {
		cfg.SSHUser = o.SSHUser
	}
	if o.Parallelism > 0 {
		cfg.Parallelism = o.Parallelism
	}
	if o.Timeout > 0 {
		cfg.ProbeTimeout.Duration = o.Timeout
	}
	return cfg, nil
}

// transports returns transport for probing and transport for applying the
// configuration, these differ in the timeout only.
func transports(deps Deps, cfg *config.Config) (probe, apply remote.Transport) {
	if deps.Transport != nil {
		return deps.Transport, deps.Transport
	}
	sshConfig := func(timeout time.Duration) *remote.SSHConfig {
		return &remote.SSHConfig{
			User:        cfg.SSHUser,
			Options:     cfg.SSHOptions,
			Timeout:     timeout,
			Parallelism: cfg.Parallelism,
		}
	}
	return remote.NewSSHTransport(sshConfig(cfg.ProbeTimeout.Duration), deps.Log),
		remote.NewSSHTransport(sshConfig(cfg.ApplyTimeout.Duration), deps.Log)
}

// validateSubnetPair checks that either both target subnets or none are given.
func validateSubnetPair(subnet1, subnet2 string) error {
	if (subnet1 == "") != (subnet2 == "") {
		return ErrSubnetPair
	}
	return nil
}

// commonPrefixLen returns the prefix length shared by both target subnets.
func commonPrefixLen(subnet1, subnet2 *net.IPNet) (int, error) {
	len1, _ := subnet1.Mask.Size()
	len2, _ := subnet2.Mask.Size()
	if len1 != len2 {
		return 0, errors.Errorf("target subnets %v and %v must have the same prefix length", subnet1, subnet2)
	}
	return len1, nil
}

func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
}

func orNA(value string) string {
	if value == "" {
		return notAvailable
	}
	return value
}

func intOrNA(value int) string {
	if value == 0 {
		return notAvailable
	}
	return strconv.Itoa(value)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
