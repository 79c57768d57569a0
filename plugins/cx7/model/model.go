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

package model

import (
	"sort"
)

// Interface is one CX7 adapter port observed on a host.
// IP, Subnet and Prefix are empty/zero when the port is unconfigured.
type Interface struct {
	Name   string `json:"name"`
	IP     string `json:"ip,omitempty"`
	Prefix int    `json:"prefix,omitempty"`
	Subnet string `json:"subnet,omitempty"`
	MTU    int    `json:"mtu"`
	State  string `json:"state"`
	HCA    string `json:"hca,omitempty"`
}

// Configured returns true if the interface carries an IPv4 address.
func (i Interface) Configured() bool {
	return i.IP != "" && i.Subnet != ""
}

// HostDetection is the CX7 state of a single host as reported by one probe cycle.
// The order of Interfaces is significant: interface 0 is always mapped onto
// the first target subnet, interface 1 onto the second one.
type HostDetection struct {
	Host          string              `json:"host"`
	Interfaces    []Interface         `json:"interfaces"`
	MgmtIP        string              `json:"mgmtIP,omitempty"`
	MgmtIface     string              `json:"mgmtIface,omitempty"`
	UsedSubnets   map[string]struct{} `json:"-"`
	NetplanExists bool                `json:"netplanExists"`
	SudoOK        bool                `json:"sudoOK"`
	Detected      bool                `json:"detected"`
}

// NewUndetected returns the detection of a host with no CX7 adapters
// (or a host that could not be probed at all).
func NewUndetected(host string) *HostDetection {
	return &HostDetection{
		Host:        host,
		Interfaces:  []Interface{},
		UsedSubnets: map[string]struct{}{},
	}
}

// UsedSubnetList returns the used subnets sorted alphabetically.
func (d *HostDetection) UsedSubnetList() []string {
	list := make([]string, 0, len(d.UsedSubnets))
	for s := range d.UsedSubnets {
		list = append(list, s)
	}
	sort.Strings(list)
	return list
}

// HasUsedSubnet returns true if the given CIDR was reported as used by the host.
func (d *HostDetection) HasUsedSubnet(cidr string) bool {
	_, has := d.UsedSubnets[cidr]
	return has
}

// InterfaceAssignment is a decided (adapter, IP, subnet) triple.
type InterfaceAssignment struct {
	Name   string `json:"name"`
	IP     string `json:"ip"`
	Subnet string `json:"subnet"`
}

// HostPlan is the reconciliation decision computed for one host.
// Hosts that do not need a change carry no assignments, others carry exactly
// one assignment per target subnet, in the order of the target subnets.
type HostPlan struct {
	Host        string                `json:"host"`
	NeedsChange bool                  `json:"needsChange"`
	Assignments []InterfaceAssignment `json:"assignments,omitempty"`
}

// ClusterPlan groups host plans of all hosts in the order they were supplied.
type ClusterPlan struct {
	AllValid  bool       `json:"allValid"`
	Subnet1   string     `json:"subnet1"`
	Subnet2   string     `json:"subnet2"`
	HostPlans []HostPlan `json:"hostPlans"`
}

// HostsNeedingChange returns plans of the hosts that have to be reconfigured.
func (p *ClusterPlan) HostsNeedingChange() []HostPlan {
	var plans []HostPlan
	for _, hp := range p.HostPlans {
		if hp.NeedsChange {
			plans = append(plans, hp)
		}
	}
	return plans
}

// HostPlan looks up the plan of the given host.
func (p *ClusterPlan) HostPlan(host string) (HostPlan, bool) {
	for _, hp := range p.HostPlans {
		if hp.Host == host {
			return hp, true
		}
	}
	return HostPlan{}, false
}

// OrderDetections arranges detections in the order of the given host list.
// Hosts missing in the map are returned as undetected, hosts listed twice
// are returned only once.
func OrderDetections(hosts []string, detections map[string]*HostDetection) []*HostDetection {
	ordered := make([]*HostDetection, 0, len(hosts))
	seen := make(map[string]struct{}, len(hosts))
	for _, host := range hosts {
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		det, found := detections[host]
		if !found || det == nil {
			det = NewUndetected(host)
		}
		ordered = append(ordered, det)
	}
	return ordered
}

// SortedDetections returns detections from the map ordered by host identifier.
func SortedDetections(detections map[string]*HostDetection) []*HostDetection {
	hosts := make([]string, 0, len(detections))
	for host := range detections {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return OrderDetections(hosts, detections)
}
