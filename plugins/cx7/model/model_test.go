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
	"testing"

	. "github.com/onsi/gomega"
)

func TestOrderDetections(t *testing.T) {
	RegisterTestingT(t)

	h2 := &HostDetection{Host: "h2", Detected: true}
	ordered := OrderDetections([]string{"h3", "h2", "h3"}, map[string]*HostDetection{
		"h1": {Host: "h1", Detected: true},
		"h2": h2,
	})
	Expect(ordered).To(HaveLen(2))
	Expect(ordered[0].Host).To(Equal("h3"))
	Expect(ordered[0].Detected).To(BeFalse())
	Expect(ordered[0].Interfaces).To(BeEmpty())
	Expect(ordered[1]).To(BeIdenticalTo(h2))

	sorted := SortedDetections(map[string]*HostDetection{"b": h2, "a": nil})
	Expect(sorted[0].Host).To(Equal("a"))
	Expect(sorted[1]).To(BeIdenticalTo(h2))
}

func TestUsedSubnets(t *testing.T) {
	RegisterTestingT(t)

	det := NewUndetected("h1")
	Expect(det.UsedSubnetList()).To(BeEmpty())

	det.UsedSubnets["172.17.0.0/16"] = struct{}{}
	det.UsedSubnets["10.24.11.0/24"] = struct{}{}
	Expect(det.UsedSubnetList()).To(Equal([]string{"10.24.11.0/24", "172.17.0.0/16"}))
	Expect(det.HasUsedSubnet("10.24.11.0/24")).To(BeTrue())
	Expect(det.HasUsedSubnet("10.24.12.0/24")).To(BeFalse())
}

func TestClusterPlan(t *testing.T) {
	RegisterTestingT(t)

	Expect(Interface{IP: "192.168.11.13"}.Configured()).To(BeFalse())
	Expect(Interface{IP: "192.168.11.13", Subnet: "192.168.11.0/24"}.Configured()).To(BeTrue())

	plan := &ClusterPlan{
		HostPlans: []HostPlan{
			{Host: "h1"},
			{Host: "h2", NeedsChange: true, Assignments: []InterfaceAssignment{
				{Name: "enp1s0f0np0", IP: "192.168.11.14", Subnet: "192.168.11.0/24"},
			}},
		},
	}
	changes := plan.HostsNeedingChange()
	Expect(changes).To(HaveLen(1))
	Expect(changes[0].Host).To(Equal("h2"))

	hp, found := plan.HostPlan("h1")
	Expect(found).To(BeTrue())
	Expect(hp.NeedsChange).To(BeFalse())
	_, found = plan.HostPlan("h3")
	Expect(found).To(BeFalse())
}
