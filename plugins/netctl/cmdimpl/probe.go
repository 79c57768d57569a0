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
	"fmt"

	"github.com/contiv/cx7ctl/pkg/docker"
	"github.com/contiv/cx7ctl/pkg/probe"
)

// ProbeOptions are options of the probe command.
type ProbeOptions struct {
	// Docker includes subnets of docker networks in the used subnets
	Docker bool
}

// ProbeLocal prints the CX7 state of this host in the probe output format.
func ProbeLocal(deps Deps, opts *ProbeOptions) error {
	deps = deps.withDefaults()

	system, err := probe.NewSystem(deps.Log)
	if err != nil {
		return err
	}
	defer system.Close()

	var dockerClient docker.Client
	if opts.Docker {
		if dockerClient, err = docker.NewClient(); err != nil {
			deps.Log.Warnf("Docker networks not considered: %v", err)
			dockerClient = nil
		}
	}

	prober := probe.NewProber(probe.Deps{
		System: system,
		Docker: dockerClient,
		Log:    deps.Log,
	})
	text, err := prober.ProbeText()
	if err != nil {
		return err
	}
	fmt.Fprint(deps.Out, text)
	return nil
}
