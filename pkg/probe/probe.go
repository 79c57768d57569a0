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

package probe

import (
	"net"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/contiv/cx7ctl/pkg/docker"
	"github.com/contiv/cx7ctl/pkg/util/logs"
	"github.com/contiv/cx7ctl/plugins/cx7/detect"
	"github.com/contiv/cx7ctl/plugins/cx7/model"
)

const (
	// DefaultNetplanFile is the persistent configuration written by the configure script.
	DefaultNetplanFile = "/etc/netplan/40-cx7.yaml"

	defaultHost = "localhost"
)

// Netdev is a network interface of the host.
type Netdev struct {
	Name       string
	PCIAddress string
	Driver     string
	MTU        int
	State      string
	// IPv4 addresses
	Addrs []*net.IPNet
	// RDMA device bound to the interface
	HCA string
}

// Route is an IPv4 route of the host, Dst is nil for the default route.
type Route struct {
	Dst *net.IPNet
	Dev string
}

// System gives access to the network state of the local host.
type System interface {
	// Netdevs lists network interfaces except loopback.
	Netdevs() ([]Netdev, error)
	// Routes lists IPv4 routes of the main table.
	Routes() ([]Route, error)
	// IsCX7 returns true if the interface is a port of a ConnectX-7 adapter.
	IsCX7(dev Netdev) bool
	// FileExists returns true if the file exists.
	FileExists(path string) bool
	// Privileged returns true when running with root privileges.
	Privileged() bool
	// Close releases resources held by the system handle.
	Close() error
}

// Deps lists dependencies of the Prober.
type Deps struct {
	System System
	// Docker is optional, subnets of docker networks are reported as used when set
	Docker docker.Client
	Log    logrus.FieldLogger
	// Host is the identifier put into the detection, "localhost" by default
	Host string
	// NetplanFile defaults to DefaultNetplanFile
	NetplanFile string
}

// Prober reports the CX7 state of the local host natively, without running
// the probe shell script.
type Prober struct {
	Deps
}

// NewProber creates new local prober.
func NewProber(deps Deps) *Prober {
	if deps.Log == nil {
		deps.Log = logs.Discard()
	}
	if deps.Host == "" {
		deps.Host = defaultHost
	}
	if deps.NetplanFile == "" {
		deps.NetplanFile = DefaultNetplanFile
	}
	return &Prober{Deps: deps}
}

// ProbeText returns the state of the host in the output format of the probe script.
func (p *Prober) ProbeText() (string, error) {
	det, err := p.Probe()
	if err != nil {
		return "", err
	}
	return detect.FormatDetection(det), nil
}

// Probe returns the CX7 state of the host.
func (p *Prober) Probe() (*model.HostDetection, error) {
	netdevs, err := p.System.Netdevs()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list network interfaces")
	}

	var cx7Devs []Netdev
	cx7Names := make(map[string]struct{})
	for _, dev := range netdevs {
		if p.System.IsCX7(dev) {
			cx7Devs = append(cx7Devs, dev)
			cx7Names[dev.Name] = struct{}{}
		}
	}
	if len(cx7Devs) == 0 {
		p.Log.Debug("No CX7 adapters found")
		return model.NewUndetected(p.Host), nil
	}
	// interface order decides the subnet the interface is put into
	sort.SliceStable(cx7Devs, func(i, j int) bool {
		return cx7Devs[i].PCIAddress < cx7Devs[j].PCIAddress
	})

	routes, err := p.System.Routes()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list routes")
	}

	det := &model.HostDetection{
		Host:          p.Host,
		UsedSubnets:   make(map[string]struct{}),
		NetplanExists: p.System.FileExists(p.NetplanFile),
		SudoOK:        p.System.Privileged(),
		Detected:      true,
	}

	for _, route := range routes {
		if _, isCX7 := cx7Names[route.Dev]; isCX7 || route.Dev == "" {
			continue
		}
		if route.Dst == nil {
			if det.MgmtIface == "" {
				det.MgmtIface = route.Dev
			}
			continue
		}
		det.UsedSubnets[route.Dst.String()] = struct{}{}
	}
	for _, dev := range netdevs {
		if dev.Name == det.MgmtIface && len(dev.Addrs) > 0 {
			det.MgmtIP = dev.Addrs[0].IP.String()
		}
	}

	for _, dev := range cx7Devs {
		iface := model.Interface{
			Name:  dev.Name,
			MTU:   dev.MTU,
			State: dev.State,
			HCA:   dev.HCA,
		}
		if len(dev.Addrs) > 0 {
			addr := dev.Addrs[0]
			iface.IP = addr.IP.String()
			iface.Prefix, _ = addr.Mask.Size()
			iface.Subnet = (&net.IPNet{IP: addr.IP.Mask(addr.Mask), Mask: addr.Mask}).String()
		}
		det.Interfaces = append(det.Interfaces, iface)
	}

	if p.Docker != nil {
		subnets, err := docker.UsedSubnets(p.Docker)
		if err != nil {
			p.Log.Debugf("Docker networks not considered: %v", err)
		}
		for _, subnet := range subnets {
			det.UsedSubnets[subnet] = struct{}{}
		}
	}

	p.Log.Debugf("Found %d CX7 interfaces, management interface %s", len(det.Interfaces), det.MgmtIface)
	return det, nil
}
