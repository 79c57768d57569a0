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
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
)

// ipv4ToUint32 is simple utility function for conversion between IPv4 and uint32.
func ipv4ToUint32(ip net.IP) (uint32, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return 0, fmt.Errorf("Ip address %v is not ipv4 address (or ipv6 convertible to ipv4 address)", ip)
	}
	var tmp uint32
	for _, bytePart := range ip4 {
		tmp = tmp<<8 + uint32(bytePart)
	}
	return tmp, nil
}

// newIPNet is simple utility function to create defend copy of IPv4 net.IPNet
// with the host bits cleared.
func newIPNet(ipNet *net.IPNet) *net.IPNet {
	mask := net.IPv4Mask(ipNet.Mask[len(ipNet.Mask)-4], ipNet.Mask[len(ipNet.Mask)-3],
		ipNet.Mask[len(ipNet.Mask)-2], ipNet.Mask[len(ipNet.Mask)-1])
	return &net.IPNet{
		IP:   ipNet.IP.To4().Mask(mask),
		Mask: mask,
	}
}

// parseIPv4Net parses CIDR string into IPv4 network (host bits cleared).
func parseIPv4Net(subnet string) (*net.IPNet, error) {
	_, ipNet, err := net.ParseCIDR(subnet)
	if err != nil {
		return nil, err
	}
	if ipNet.IP.To4() == nil {
		return nil, fmt.Errorf("%s is not an IPv4 subnet", subnet)
	}
	return newIPNet(ipNet), nil
}

// addressRange returns the first and the last address of the network as uint32.
func addressRange(ipNet *net.IPNet) (first, last uint32, err error) {
	firstIP, lastIP := cidr.AddressRange(ipNet)
	if first, err = ipv4ToUint32(firstIP); err != nil {
		return 0, 0, err
	}
	if last, err = ipv4ToUint32(lastIP); err != nil {
		return 0, 0, err
	}
	return first, last, nil
}

// overlaps returns true if the two IPv4 networks share at least one address.
func overlaps(a, b *net.IPNet) bool {
	aFirst, aLast, err := addressRange(a)
	if err != nil {
		return false
	}
	bFirst, bLast, err := addressRange(b)
	if err != nil {
		return false
	}
	return aFirst <= bLast && bFirst <= aLast
}

// hostNum returns the position of the IP address inside the network,
// or -1 if the address is not from the network.
func hostNum(ipNet *net.IPNet, ip net.IP) int {
	if ip == nil || !ipNet.Contains(ip) {
		return -1
	}
	first, _, err := addressRange(ipNet)
	if err != nil {
		return -1
	}
	addr, err := ipv4ToUint32(ip)
	if err != nil {
		return -1
	}
	return int(addr - first)
}
