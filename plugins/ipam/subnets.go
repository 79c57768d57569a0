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

// Selector chooses the two cluster-wide target subnets.
type Selector struct {
	Deps
}

// Deps lists dependencies of the Selector.
type Deps struct {
	Log logrus.FieldLogger
}

// NewSelector creates new subnet selector.
func NewSelector(deps Deps) *Selector {
	if deps.Log == nil {
		deps.Log = logs.Discard()
	}
	return &Selector{Deps: deps}
}

// SelectSubnets chooses target subnets with a selector that does not log.
func SelectSubnets(detections map[string]*model.HostDetection, override1, override2 string) (*net.IPNet, *net.IPNet, error) {
	return NewSelector(Deps{}).SelectSubnets(detections, override1, override2)
}

// SelectSubnets returns the two target subnets for the cluster, in this order of precedence:
//   - both overrides given: the overrides, without any validation against the detections
//   - all hosts with two or more interfaces already share the same pair of subnets: that pair
//   - some detections: the first two private /24 blocks not overlapping any used subnet
//   - no detections: DefaultSubnet1 and DefaultSubnet2
func (s *Selector) SelectSubnets(detections map[string]*model.HostDetection, override1, override2 string) (*net.IPNet, *net.IPNet, error) {
	if override1 != "" && override2 != "" {
		subnet1, err := parseIPv4Net(override1)
		if err != nil {
			return nil, nil, errors.Wrapf(ErrInvalidSubnet, "subnet1 %q: %v", override1, err)
		}
		subnet2, err := parseIPv4Net(override2)
		if err != nil {
			return nil, nil, errors.Wrapf(ErrInvalidSubnet, "subnet2 %q: %v", override2, err)
		}
		s.Log.Debugf("Using target subnets given by the user: %v, %v", subnet1, subnet2)
		return subnet1, subnet2, nil
	}

	if len(detections) == 0 {
		subnet1, _ := parseIPv4Net(DefaultSubnet1)
		subnet2, _ := parseIPv4Net(DefaultSubnet2)
		s.Log.Debugf("No detections, using default target subnets %v, %v", subnet1, subnet2)
		return subnet1, subnet2, nil
	}

	if subnet1, subnet2, ok := s.uniformSubnets(detections); ok {
		s.Log.Debugf("All hosts already use subnets %v, %v", subnet1, subnet2)
		return subnet1, subnet2, nil
	}

	return s.freshSubnets(s.usedSubnets(detections))
}

// uniformSubnets returns the pair of subnets shared by all hosts with at least
// two interfaces.
func (s *Selector) uniformSubnets(detections map[string]*model.HostDetection) (*net.IPNet, *net.IPNet, bool) {
	var first, second string
	var seen bool
	for _, det := range model.SortedDetections(detections) {
		if len(det.Interfaces) < 2 {
			continue
		}
		if !seen {
			first, second = det.Interfaces[0].Subnet, det.Interfaces[1].Subnet
			seen = true
			continue
		}
		if det.Interfaces[0].Subnet != first || det.Interfaces[1].Subnet != second {
			return nil, nil, false
		}
	}
	if !seen || first == "" || second == "" || first == second {
		return nil, nil, false
	}

	subnet1, err1 := parseIPv4Net(first)
	subnet2, err2 := parseIPv4Net(second)
	if err1 != nil || err2 != nil {
		s.Log.Warnf("Ignoring unparseable CX7 subnets %q, %q reported by hosts", first, second)
		return nil, nil, false
	}
	if overlaps(subnet1, subnet2) {
		s.Log.Warnf("Ignoring overlapping CX7 subnets %v, %v reported by hosts", subnet1, subnet2)
		return nil, nil, false
	}
	return subnet1, subnet2, true
}

// usedSubnets returns union of subnets used on the hosts for other purposes.
func (s *Selector) usedSubnets(detections map[string]*model.HostDetection) []*net.IPNet {
	var used []*net.IPNet
	seen := make(map[string]struct{})
	for _, det := range model.SortedDetections(detections) {
		for _, subnet := range det.UsedSubnetList() {
			if _, dup := seen[subnet]; dup {
				continue
			}
			seen[subnet] = struct{}{}
			ipNet, err := parseIPv4Net(subnet)
			if err != nil {
				s.Log.WithField("host", det.Host).Debugf("Ignoring used subnet %q: %v", subnet, err)
				continue
			}
			used = append(used, ipNet)
		}
	}
	return used
}

// freshSubnets walks the private address space in ascending order and returns
// the first two /24 blocks not overlapping any of the used subnets.
func (s *Selector) freshSubnets(used []*net.IPNet) (*net.IPNet, *net.IPNet, error) {
	var found []*net.IPNet
	for _, block := range privateBlocks {
		_, base, _ := net.ParseCIDR(block)
		baseLen, _ := base.Mask.Size()
		newBits := candidatePrefixLen - baseLen

		for num := 0; num < 1<<uint(newBits); num++ {
			candidate, err := cidr.Subnet(base, newBits, num)
			if err != nil {
				return nil, nil, err
			}
			if overlapsAny(candidate, used) {
				continue
			}
			found = append(found, candidate)
			if len(found) == 2 {
				s.Log.Debugf("Selected fresh target subnets %v, %v (avoiding %d used subnets)",
					found[0], found[1], len(used))
				return found[0], found[1], nil
			}
		}
	}
	return nil, nil, errors.Wrapf(ErrSubnetsExhausted, "%d used subnets", len(used))
}

func overlapsAny(candidate *net.IPNet, used []*net.IPNet) bool {
	for _, u := range used {
		if overlaps(candidate, u) {
			return true
		}
	}
	return false
}
