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

package ipam

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMTU is the MTU both CX7 interfaces are expected to run with.
	DefaultMTU = 9000

	// DefaultSubnet1 is the first target subnet used when nothing is known about the cluster.
	DefaultSubnet1 = "192.168.11.0/24"
	// DefaultSubnet2 is the second target subnet used when nothing is known about the cluster.
	DefaultSubnet2 = "192.168.12.0/24"

	// prefix length of freshly selected subnets
	candidatePrefixLen = 24

	// the widest accepted target subnet prefix, host numbers are one octet wide
	maxTargetPrefixLen = 24

	// range of host numbers assigned inside a target subnet
	firstHostNum = 1
	lastHostNum  = 254

	// link state expected on configured interfaces
	linkStateUp = "up"
)

var (
	// ErrInvalidSubnet is returned when a subnet cannot be used as a target subnet.
	ErrInvalidSubnet = errors.New("invalid subnet")

	// ErrSubnetsExhausted is returned when the private address space does not
	// contain two unused /24 blocks.
	ErrSubnetsExhausted = errors.New("no two unused private /24 subnets available")

	// ErrAddressesExhausted is returned when every host number of a target subnet
	// is already claimed.
	ErrAddressesExhausted = errors.New("no free host address left in subnet")
)

// privateBlocks is the RFC 1918 candidate space for fresh subnets, in ascending order.
var privateBlocks = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

// PlanOption customizes a single PlanCluster call.
type PlanOption func(*planOptions)

type planOptions struct {
	force bool
	mtu   int
	log   logrus.FieldLogger
}

// WithForce makes the planner reconfigure every host, valid or not.
func WithForce(force bool) PlanOption {
	return func(o *planOptions) {
		o.force = force
	}
}

// WithMTU sets the MTU a valid host must already run with.
// Non-positive values select DefaultMTU.
func WithMTU(mtu int) PlanOption {
	return func(o *planOptions) {
		if mtu > 0 {
			o.mtu = mtu
		}
	}
}

// WithLogger sets logger for the planning decisions.
func WithLogger(log logrus.FieldLogger) PlanOption {
	return func(o *planOptions) {
		if log != nil {
			o.log = log
		}
	}
}
