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

package pci

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	// MellanoxVendorID is the PCI vendor ID of Mellanox/NVIDIA network adapters.
	MellanoxVendorID = "0x15b3"
	// CX7DeviceID is the PCI device ID of ConnectX-7 adapters.
	CX7DeviceID      = "0x1021"

	defaultRoot = "/sys"

	pciVendorFile       = "bus/pci/devices/%s/vendor"
	pciDeviceIDFile     = "bus/pci/devices/%s/device"
	netdevDeviceLink    = "class/net/%s/device"
	netdevInfinibandDir = "class/net/%s/device/infiniband"
)

// Sysfs reads PCI device information from sysfs mounted at Root.
type Sysfs struct {
	// Root of the sysfs, /sys if empty
	Root string
}

func (s Sysfs) path(format, name string) string {
	root := s.Root
	if root == "" {
		root = defaultRoot
	}
	return filepath.Join(root, fmt.Sprintf(format, name))
}

// DeviceIDs returns vendor and device ID of the PCI device, e.g. "0x15b3", "0x1021".
func (s Sysfs) DeviceIDs(pciAddr string) (vendor, device string, err error) {
	if pciAddr == "" {
		return "", "", errors.New("empty PCI address")
	}
	if vendor, err = readFromFile(s.path(pciVendorFile, pciAddr)); err != nil {
		return "", "", err
	}
	if device, err = readFromFile(s.path(pciDeviceIDFile, pciAddr)); err != nil {
		return "", "", err
	}
	return vendor, device, nil
}

// IsCX7 returns true if the PCI device is a ConnectX-7 adapter.
func (s Sysfs) IsCX7(pciAddr string) bool {
	vendor, device, err := s.DeviceIDs(pciAddr)
	if err != nil {
		return false
	}
	return strings.EqualFold(vendor, MellanoxVendorID) && strings.EqualFold(device, CX7DeviceID)
}

// NetdevPCIAddress returns PCI address of the device behind a network interface,
// or empty string for virtual interfaces.
func (s Sysfs) NetdevPCIAddress(netdev string) string {
	target, err := os.Readlink(s.path(netdevDeviceLink, netdev))
	if err != nil {
		return ""
	}
	return filepath.Base(target)
}

// InfinibandDevice returns name of the RDMA device (e.g. "rocep1s0f0") bound
// to the given network interface, empty if there is none.
func (s Sysfs) InfinibandDevice(netdev string) string {
	entries, err := ioutil.ReadDir(s.path(netdevInfinibandDir, netdev))
	if err != nil || len(entries) == 0 {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names[0]
}

// readFromFile reads trimmed string from the specified file.
func readFromFile(fileName string) (string, error) {
	content, err := ioutil.ReadFile(fileName)
	if err != nil {
		return "", errors.Wrapf(err, "error by reading from %s", fileName)
	}
	return strings.TrimSpace(string(content)), nil
}
