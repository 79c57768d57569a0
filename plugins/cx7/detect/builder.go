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

package detect

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/contiv/cx7ctl/plugins/cx7/model"
)

// keys of the probe output
const (
	KeyDetected      = "CX7_DETECTED"
	KeyMgmtIP        = "CX7_MGMT_IP"
	KeyMgmtIface     = "CX7_MGMT_IFACE"
	KeyNetplanExists = "CX7_NETPLAN_EXISTS"
	KeySudoOK        = "CX7_SUDO_OK"
	KeyIfaceCount    = "CX7_IFACE_COUNT"
	KeyUsedSubnets   = "CX7_USED_SUBNETS"

	// per-interface keys, formatted with the interface index
	keyIfaceFormat = "CX7_IFACE_%d_%s"

	IfaceFieldName   = "NAME"
	IfaceFieldIP     = "IP"
	IfaceFieldPrefix = "PREFIX"
	IfaceFieldSubnet = "SUBNET"
	IfaceFieldMTU    = "MTU"
	IfaceFieldState  = "STATE"
	IfaceFieldHCA    = "HCA"
)

// maxIfaceCount caps CX7_IFACE_COUNT, larger counts cannot come from a real host.
const maxIfaceCount = 64

// IfaceKey returns the key of the given field of the idx-th interface.
func IfaceKey(idx int, field string) string {
	return fmt.Sprintf(keyIfaceFormat, idx, field)
}

// BuildHostDetection interprets the parsed probe output of the given host.
// It never fails: missing or malformed numbers read as 0, missing strings as "".
func BuildHostDetection(host string, raw map[string]string) *model.HostDetection {
	if raw[KeyDetected] != "1" {
		return model.NewUndetected(host)
	}

	det := &model.HostDetection{
		Host:          host,
		MgmtIP:        raw[KeyMgmtIP],
		MgmtIface:     raw[KeyMgmtIface],
		NetplanExists: isTrue(raw[KeyNetplanExists]),
		SudoOK:        isTrue(raw[KeySudoOK]),
		Detected:      true,
		UsedSubnets:   parseSubnetSet(raw[KeyUsedSubnets]),
	}

	count := atoi(raw[KeyIfaceCount])
	if count > maxIfaceCount {
		count = maxIfaceCount
	}
	det.Interfaces = make([]model.Interface, 0, count)
	for i := 0; i < count; i++ {
		det.Interfaces = append(det.Interfaces, model.Interface{
			Name:   raw[IfaceKey(i, IfaceFieldName)],
			IP:     raw[IfaceKey(i, IfaceFieldIP)],
			Prefix: atoi(raw[IfaceKey(i, IfaceFieldPrefix)]),
			Subnet: raw[IfaceKey(i, IfaceFieldSubnet)],
			MTU:    atoi(raw[IfaceKey(i, IfaceFieldMTU)]),
			State:  raw[IfaceKey(i, IfaceFieldState)],
			HCA:    raw[IfaceKey(i, IfaceFieldHCA)],
		})
	}
	return det
}

func isTrue(val string) bool {
	return strings.TrimSpace(val) == "1"
}

// atoi parses non-negative integer, anything else reads as 0.
func atoi(val string) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseSubnetSet(val string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

// FormatDetection renders the detection in the KEY=VALUE format produced
// by the probe script, so that BuildHostDetection(ParseDetectOutput(..))
// yields the same detection back.
func FormatDetection(det *model.HostDetection) string {
	var buf bytes.Buffer
	if det == nil || !det.Detected {
		writeKey(&buf, KeyDetected, "0")
		return buf.String()
	}

	writeKey(&buf, KeyDetected, "1")
	writeKey(&buf, KeyMgmtIP, det.MgmtIP)
	writeKey(&buf, KeyMgmtIface, det.MgmtIface)
	writeKey(&buf, KeyNetplanExists, flag(det.NetplanExists))
	writeKey(&buf, KeySudoOK, flag(det.SudoOK))
	writeKey(&buf, KeyIfaceCount, strconv.Itoa(len(det.Interfaces)))
	for i, iface := range det.Interfaces {
		writeKey(&buf, IfaceKey(i, IfaceFieldName), iface.Name)
		writeKey(&buf, IfaceKey(i, IfaceFieldIP), iface.IP)
		writeKey(&buf, IfaceKey(i, IfaceFieldPrefix), itoaNonZero(iface.Prefix))
		writeKey(&buf, IfaceKey(i, IfaceFieldSubnet), iface.Subnet)
		writeKey(&buf, IfaceKey(i, IfaceFieldMTU), itoaNonZero(iface.MTU))
		writeKey(&buf, IfaceKey(i, IfaceFieldState), iface.State)
		writeKey(&buf, IfaceKey(i, IfaceFieldHCA), iface.HCA)
	}
	writeKey(&buf, KeyUsedSubnets, strings.Join(det.UsedSubnetList(), ","))
	return buf.String()
}

func writeKey(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteByte('=')
	buf.WriteString(value)
	buf.WriteByte('\n')
}

func flag(val bool) string {
	if val {
		return "1"
	}
	return "0"
}

func itoaNonZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
