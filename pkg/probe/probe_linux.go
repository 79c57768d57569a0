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

//go:build linux

package probe

import (
	"net"
	"os"

	"github.com/pkg/errors"
	"github.com/safchain/ethtool"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/contiv/cx7ctl/pkg/pci"
	"github.com/contiv/cx7ctl/pkg/util/logs"
)

type linuxSystem struct {
	ethTool *ethtool.Ethtool
	sysfs   pci.Sysfs
	log     logrus.FieldLogger
}

// NewSystem returns handle to the network state of this host, read over
// netlink, ethtool ioctls and sysfs.
func NewSystem(log logrus.FieldLogger) (System, error) {
	if log == nil {
		log = logs.Discard()
	}
	ethTool, err := ethtool.NewEthtool()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open ethtool socket")
	}
	return &linuxSystem{
		ethTool: ethTool,
		log:     log,
	}, nil
}

func (s *linuxSystem) Netdevs() ([]Netdev, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, err
	}

	var netdevs []Netdev
	for _, l := range links {
		attrs := l.Attrs()
		if attrs.Flags&net.FlagLoopback != 0 {
			continue
		}
		dev := Netdev{
			Name:  attrs.Name,
			MTU:   attrs.MTU,
			State: attrs.OperState.String(),
			HCA:   s.sysfs.InfinibandDevice(attrs.Name),
		}

		// virtual interfaces have no bus info
		dev.PCIAddress, err = s.ethTool.BusInfo(attrs.Name)
		if err != nil || dev.PCIAddress == "" {
			dev.PCIAddress = s.sysfs.NetdevPCIAddress(attrs.Name)
		}
		if dev.Driver, err = s.ethTool.DriverName(attrs.Name); err != nil {
			s.log.Debugf("Error by retrieving interface %s driver name: %v", attrs.Name, err)
		}

		addrs, err := netlink.AddrList(l, netlink.FAMILY_V4)
		if err != nil {
			s.log.Warnf("Error by listing interface %s addresses: %v", attrs.Name, err)
		}
		for _, addr := range addrs {
			dev.Addrs = append(dev.Addrs, addr.IPNet)
		}
		netdevs = append(netdevs, dev)
	}
	return netdevs, nil
}

func (s *linuxSystem) Routes() ([]Route, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(links))
	for _, l := range links {
		names[l.Attrs().Index] = l.Attrs().Name
	}

	nlRoutes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return nil, err
	}
	routes := make([]Route, 0, len(nlRoutes))
	for _, r := range nlRoutes {
		routes = append(routes, Route{Dst: r.Dst, Dev: names[r.LinkIndex]})
	}
	return routes, nil
}

func (s *linuxSystem) IsCX7(dev Netdev) bool {
	return s.sysfs.IsCX7(dev.PCIAddress)
}

func (s *linuxSystem) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *linuxSystem) Privileged() bool {
	return unix.Geteuid() == 0
}

func (s *linuxSystem) Close() error {
	s.ethTool.Close()
	return nil
}
