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

package remote

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/contiv/cx7ctl/pkg/util/logs"
)

const (
	defaultSSHBinary      = "ssh"
	defaultShell          = "bash"
	defaultConnectTimeout = 10 * time.Second
	defaultParallelism    = 16
)

// SSHConfig is configuration for the SSH transport.
type SSHConfig struct {
	// User to log in as, empty means the ssh default (current user or ~/.ssh/config)
	User string `json:"user,omitempty"`
	// Options are extra arguments passed to ssh before the host name, e.g. ["-p", "2222"]
	Options []string `json:"options,omitempty"`
	// ConnectTimeout bounds the TCP connect + handshake
	ConnectTimeout time.Duration `json:"connectTimeout,omitempty"`
	// Timeout bounds the whole execution of the script on one host, 0 = unbounded
	Timeout time.Duration `json:"timeout,omitempty"`
	// Parallelism is the maximum number of hosts contacted at the same time
	Parallelism int `json:"parallelism,omitempty"`
}

// SSHTransport runs scripts on remote hosts by piping them into "bash -s" over ssh.
type SSHTransport struct {
	// Config for this transport
	Config *SSHConfig

	binary string
	log    logrus.FieldLogger
}

// NewSSHTransport creates SSH transport. The system ssh client is used, so that
// keys, agents and ~/.ssh/config of the operator apply unchanged.
func NewSSHTransport(cfg *SSHConfig, log logrus.FieldLogger) *SSHTransport {
	if cfg == nil {
		cfg = &SSHConfig{}
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaultParallelism
	}
	if log == nil {
		log = logs.Discard()
	}
	return &SSHTransport{
		Config: cfg,
		binary: defaultSSHBinary,
		log:    log,
	}
}

// RunScripts executes every job on its host, at most Config.Parallelism at once.
func (t *SSHTransport) RunScripts(ctx context.Context, jobs []Job) []Result {
	return runParallel(ctx, jobs, t.Config.Parallelism, t.Config.Timeout, t.command, t.log)
}

// Helper function to create ssh arguments from config
func (t *SSHTransport) args(host string) []string {
	connectTimeout := int(t.Config.ConnectTimeout / time.Second)
	if connectTimeout < 1 {
		connectTimeout = 1
	}

	args := []string{
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", connectTimeout),
	}
	if t.Config.User != "" {
		args = append(args, "-l", t.Config.User)
	}
	args = append(args, t.Config.Options...)

	// run the script read from stdin
	args = append(args, host, defaultShell, "-s")
	return args
}

func (t *SSHTransport) command(ctx context.Context, job Job) *exec.Cmd {
	return exec.CommandContext(ctx, t.binary, t.args(job.Host)...)
}

// LocalTransport runs the scripts on this machine, ignoring the host of the jobs.
// It is used to probe the local host and in tests.
type LocalTransport struct {
	// Shell interpreting the scripts, "bash" by default
	Shell string
	// Timeout bounds the execution of one script, 0 = unbounded
	Timeout time.Duration

	log logrus.FieldLogger
}

// NewLocalTransport creates transport executing scripts locally.
func NewLocalTransport(log logrus.FieldLogger) *LocalTransport {
	if log == nil {
		log = logs.Discard()
	}
	return &LocalTransport{
		Shell: defaultShell,
		log:   log,
	}
}

// RunScripts executes every job on the local machine.
func (t *LocalTransport) RunScripts(ctx context.Context, jobs []Job) []Result {
	return runParallel(ctx, jobs, defaultParallelism, t.Timeout, t.command, t.log)
}

func (t *LocalTransport) command(ctx context.Context, job Job) *exec.Cmd {
	return exec.CommandContext(ctx, t.Shell, "-s")
}
