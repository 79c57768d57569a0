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
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/contiv/cx7ctl/pkg/util/logs"
	"github.com/contiv/cx7ctl/plugins/cx7/model"
)

// PlanCluster decides for every host (in the given order) whether its CX7
// interfaces already match the target subnets and computes IP assignments
// for the hosts that do not.
//
// The host number assigned in both subnets is derived from the last octet
// of the host's management IP. When the number is already taken in a subnet,
// the next free one is used (254 wraps to 1), so hosts earlier in the list
// win the ties. Addresses held by valid hosts are never assigned to others.
func PlanCluster(detections []*model.HostDetection, subnet1, subnet2 *net.IPNet, opts ...PlanOption) (*model.ClusterPlan, error) {
	o := &planOptions{
		mtu: DefaultMTU,
		log: logs.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}

	subnets, err := targetSubnets(subnet1, subnet2)
	if err != nil {
		return nil, err
	}

	plan := &model.ClusterPlan{
		AllValid: true,
		Subnet1:  subnets[0].String(),
		Subnet2:  subnets[1].String(),
	}

	// classify first, so that the addresses of valid hosts are known upfront
	var claimed [2]hostNumSet
	valid := make([]bool, len(detections))
	for i, det := range detections {
		if det == nil {
			continue
		}
		valid[i] = !o.force && isValid(det, subnets, o.mtu)
		if valid[i] {
			for k := range subnets {
				if num := hostNum(subnets[k], net.ParseIP(det.Interfaces[k].IP)); num >= 0 {
					claimed[k].claim(num)
				}
			}
		}
	}

	for i, det := range detections {
		if det == nil {
			continue
		}
		log := o.log.WithField("host", det.Host)
		if valid[i] {
			log.Debug("CX7 interfaces already configured")
			plan.HostPlans = append(plan.HostPlans, model.HostPlan{Host: det.Host})
			continue
		}

		hostPlan := model.HostPlan{Host: det.Host, NeedsChange: true}
		desired := desiredHostNum(det.MgmtIP)
		for k, subnet := range subnets {
			num, err := claimed[k].claimFrom(desired)
			if err != nil {
				return nil, errors.Wrapf(err, "host %s, subnet %v", det.Host, subnet)
			}
			ip, err := cidr.Host(subnet, num)
			if err != nil {
				return nil, errors.Wrapf(err, "host %s, subnet %v", det.Host, subnet)
			}
			var name string
			if k < len(det.Interfaces) {
				name = det.Interfaces[k].Name
			}
			hostPlan.Assignments = append(hostPlan.Assignments, model.InterfaceAssignment{
				Name:   name,
				IP:     ip.String(),
				Subnet: subnet.String(),
			})
		}
		logAssignments(log, hostPlan)
		plan.AllValid = false
		plan.HostPlans = append(plan.HostPlans, hostPlan)
	}
	return plan, nil
}

// targetSubnets validates and normalizes the target subnets.
func targetSubnets(subnet1, subnet2 *net.IPNet) ([]*net.IPNet, error) {
	subnets := []*net.IPNet{subnet1, subnet2}
	for i, subnet := range subnets {
		if subnet == nil || subnet.IP.To4() == nil || len(subnet.Mask) < net.IPv4len {
			return nil, errors.Wrapf(ErrInvalidSubnet, "subnet%d %v is not an IPv4 subnet", i+1, subnet)
		}
		subnets[i] = newIPNet(subnet)
		if prefixLen, _ := subnets[i].Mask.Size(); prefixLen > maxTargetPrefixLen {
			return nil, errors.Wrapf(ErrInvalidSubnet, "subnet%d %v is narrower than /%d",
				i+1, subnets[i], maxTargetPrefixLen)
		}
	}
	if overlaps(subnets[0], subnets[1]) {
		return nil, errors.Wrapf(ErrInvalidSubnet, "target subnets %v and %v overlap", subnets[0], subnets[1])
	}
	return subnets, nil
}

// isValid returns true if the host needs no change. Only the first two
// interfaces are considered, any other are ignored.
func isValid(det *model.HostDetection, subnets []*net.IPNet, mtu int) bool {
	if !det.Detected || len(det.Interfaces) < len(subnets) || !det.NetplanExists {
		return false
	}
	for k, subnet := range subnets {
		iface := det.Interfaces[k]
		if iface.Subnet != subnet.String() || iface.MTU != mtu || iface.State != linkStateUp {
			return false
		}
	}
	return true
}

// desiredHostNum returns the host number derived from the last octet of the management IP.
func desiredHostNum(mgmtIP string) int {
	ip := net.ParseIP(mgmtIP).To4()
	if ip == nil {
		return firstHostNum
	}
	num := int(ip[3])
	if num < firstHostNum || num > lastHostNum {
		return firstHostNum
	}
	return num
}

// hostNumSet is a set of host numbers already claimed inside one target subnet.
type hostNumSet map[int]struct{}

func (s *hostNumSet) claim(num int) {
	if *s == nil {
		*s = make(hostNumSet)
	}
	(*s)[num] = struct{}{}
}

// claimFrom claims the first free host number starting from the desired one.
func (s *hostNumSet) claimFrom(desired int) (int, error) {
	num := desired
	for i := firstHostNum; i <= lastHostNum; i++ {
		if _, taken := (*s)[num]; !taken {
			s.claim(num)
			return num, nil
		}
		num++
		if num > lastHostNum {
			num = firstHostNum
		}
	}
	return 0, ErrAddressesExhausted
}

func logAssignments(log logrus.FieldLogger, hostPlan model.HostPlan) {
	for _, a := range hostPlan.Assignments {
		log.Debugf("Assigned %s to interface %q in subnet %s", a.IP, a.Name, a.Subnet)
	}
}
