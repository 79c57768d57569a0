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

// Package ipam plans IPv4 addressing of the CX7 interfaces across a cluster.
//
// Two target subnets are chosen for the whole cluster, one for each CX7
// interface of a host (interface 0 always goes into subnet 1, interface 1
// into subnet 2). Subnets given by the user win; otherwise a pair already
// used uniformly by all hosts is preserved; otherwise the first two private
// /24 blocks that do not collide with any subnet the hosts use for other
// purposes (management network, container bridges, ...) are selected.
//
// Every host is then either left untouched (its interfaces already sit in the
// target subnets with the expected MTU, are up and the configuration is
// persisted) or assigned one address per target subnet. The host part of the
// assigned addresses mirrors the last octet of the management IP of the host.
//
// Example:
//
//	Target subnets: 192.168.11.0/24, 192.168.12.0/24
//
//	Host 10.24.11.13 (unconfigured):  192.168.11.13, 192.168.12.13
//	Host 10.24.12.13 (unconfigured):  192.168.11.14, 192.168.12.14 (.13 already taken)
//	Host 10.24.11.20 (configured as .20, up, MTU 9000): unchanged
package ipam
