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

package dockerclient

import (
	"errors"

	"github.com/fsouza/go-dockerclient"
)

// MockDockerClient is a mock for Docker client.
type MockDockerClient struct {
	connected bool
	networks  []docker.Network
}

// NewMockDockerClient is a constructor for MockDockerClient.
func NewMockDockerClient() *MockDockerClient {
	return &MockDockerClient{}
}

// Connect puts the mock Docker client into the connected state.
func (m *MockDockerClient) Connect() {
	m.connected = true
}

// Disconnect puts the mock Docker client into the disconnected state.
func (m *MockDockerClient) Disconnect() {
	m.connected = false
}

// AddNetwork simulates creation of a network with the given IPAM subnets.
func (m *MockDockerClient) AddNetwork(name, driver string, subnets ...string) {
	network := docker.Network{
		Name:   name,
		ID:     name,
		Driver: driver,
	}
	for _, subnet := range subnets {
		network.IPAM.Config = append(network.IPAM.Config, docker.IPAMConfig{Subnet: subnet})
	}
	m.networks = append(m.networks, network)
}

// Ping pings the docker server.
func (m *MockDockerClient) Ping() error {
	if !m.connected {
		return errors.New("docker client is not connected")
	}
	return nil
}

// ListNetworks returns all networks added so far.
func (m *MockDockerClient) ListNetworks() ([]docker.Network, error) {
	if err := m.Ping(); err != nil {
		return nil, err
	}
	return m.networks, nil
}
