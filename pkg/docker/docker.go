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

package docker

import (
	"sort"

	docker "github.com/fsouza/go-dockerclient"
	"github.com/pkg/errors"
)

// Client is the subset of the Docker client used to discover container networks.
type Client interface {
	// Ping pings the docker server.
	Ping() error
	// ListNetworks returns all networks.
	ListNetworks() ([]docker.Network, error)
}

// NewClient connects to the docker daemon given by the DOCKER_HOST environment
// variable (the local unix socket by default).
func NewClient() (Client, error) {
	client, err := docker.NewClientFromEnv()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create docker client")
	}
	return client, nil
}

// UsedSubnets returns the sorted set of subnets allocated to docker networks
// (bridges, overlays...) on this host.
func UsedSubnets(client Client) ([]string, error) {
	if err := client.Ping(); err != nil {
		return nil, errors.Wrap(err, "docker daemon is not reachable")
	}
	networks, err := client.ListNetworks()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list docker networks")
	}

	set := make(map[string]struct{})
	for _, network := range networks {
		for _, ipamCfg := range network.IPAM.Config {
			if ipamCfg.Subnet != "" {
				set[ipamCfg.Subnet] = struct{}{}
			}
		}
	}
	subnets := make([]string, 0, len(set))
	for subnet := range set {
		subnets = append(subnets, subnet)
	}
	sort.Strings(subnets)
	return subnets, nil
}
