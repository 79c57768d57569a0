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
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	mockremote "github.com/contiv/cx7ctl/mock/remote"
	"github.com/contiv/cx7ctl/plugins/cx7/model"
)

func readSample(name string) string {
	data, err := ioutil.ReadFile(filepath.Join("testdata", name))
	Expect(err).ToNot(HaveOccurred())
	return string(data)
}

func TestParseDetectOutput(t *testing.T) {
	RegisterTestingT(t)

	t.Run("configured host", func(t *testing.T) {
		raw := ParseDetectOutput(readSample("configured.txt"))
		Expect(raw).To(HaveKeyWithValue("CX7_DETECTED", "1"))
		Expect(raw).To(HaveKeyWithValue("CX7_MGMT_IP", "10.24.11.13"))
		Expect(raw).To(HaveKeyWithValue("CX7_IFACE_COUNT", "2"))
		Expect(raw).To(HaveKeyWithValue("CX7_IFACE_0_NAME", "enp1s0f0np0"))
		Expect(raw).To(HaveKeyWithValue("CX7_IFACE_0_IP", "192.168.11.13"))
		Expect(raw).To(HaveKeyWithValue("CX7_IFACE_0_MTU", "9000"))
		Expect(raw).To(HaveKeyWithValue("CX7_IFACE_1_NAME", "enP2p1s0f0np0"))
		Expect(raw).To(HaveKeyWithValue("CX7_USED_SUBNETS", "10.24.11.0/24,172.17.0.0/16"))
	})

	t.Run("no CX7", func(t *testing.T) {
		raw := ParseDetectOutput(readSample("no_cx7.txt"))
		Expect(raw).To(Equal(map[string]string{"CX7_DETECTED": "0"}))
	})

	t.Run("empty output", func(t *testing.T) {
		Expect(ParseDetectOutput("")).To(BeEmpty())
	})

	t.Run("comments and garbage", func(t *testing.T) {
		raw := ParseDetectOutput("# comment\n   # indented comment\nKEY=VALUE\nno equal sign\n=novalue\n\n")
		Expect(raw).To(Equal(map[string]string{"KEY": "VALUE"}))
	})

	t.Run("empty values, nested equal signs and duplicates", func(t *testing.T) {
		raw := ParseDetectOutput("A=\nB=x=y\nC=1\nC=2\r\n")
		Expect(raw).To(HaveKeyWithValue("A", ""))
		Expect(raw).To(HaveKeyWithValue("B", "x=y"))
		Expect(raw).To(HaveKeyWithValue("C", "2"))
	})
}

func TestBuildHostDetection(t *testing.T) {
	RegisterTestingT(t)

	t.Run("configured host", func(t *testing.T) {
		det := BuildHostDetection("10.24.11.13", ParseDetectOutput(readSample("configured.txt")))
		Expect(det.Host).To(Equal("10.24.11.13"))
		Expect(det.Detected).To(BeTrue())
		Expect(det.MgmtIP).To(Equal("10.24.11.13"))
		Expect(det.MgmtIface).To(Equal("enP7s7"))
		Expect(det.NetplanExists).To(BeTrue())
		Expect(det.SudoOK).To(BeTrue())
		Expect(det.Interfaces).To(Equal([]model.Interface{
			{Name: "enp1s0f0np0", IP: "192.168.11.13", Prefix: 24, Subnet: "192.168.11.0/24",
				MTU: 9000, State: "up", HCA: "rocep1s0f0"},
			{Name: "enP2p1s0f0np0", IP: "192.168.12.13", Prefix: 24, Subnet: "192.168.12.0/24",
				MTU: 9000, State: "up", HCA: "roceP2p1s0f0"},
		}))
		Expect(det.UsedSubnetList()).To(Equal([]string{"10.24.11.0/24", "172.17.0.0/16"}))
	})

	t.Run("unconfigured host", func(t *testing.T) {
		det := BuildHostDetection("10.24.11.14", ParseDetectOutput(readSample("unconfigured.txt")))
		Expect(det.Detected).To(BeTrue())
		Expect(det.MgmtIP).To(Equal("10.24.11.14"))
		Expect(det.NetplanExists).To(BeFalse())
		Expect(det.Interfaces).To(HaveLen(2))
		Expect(det.Interfaces[0].IP).To(BeEmpty())
		Expect(det.Interfaces[0].Prefix).To(BeZero())
		Expect(det.Interfaces[0].Subnet).To(BeEmpty())
		Expect(det.Interfaces[0].MTU).To(Equal(1500))
		Expect(det.Interfaces[0].Configured()).To(BeFalse())
	})

	t.Run("no CX7", func(t *testing.T) {
		det := BuildHostDetection("10.0.0.1", ParseDetectOutput(readSample("no_cx7.txt")))
		Expect(det.Detected).To(BeFalse())
		Expect(det.Interfaces).To(BeEmpty())
	})

	t.Run("not detected ignores other keys", func(t *testing.T) {
		raw := map[string]string{
			"CX7_DETECTED":     "yes",
			"CX7_MGMT_IP":      "10.0.0.1",
			"CX7_IFACE_COUNT":  "2",
			"CX7_USED_SUBNETS": "10.0.0.0/24",
		}
		det := BuildHostDetection("h1", raw)
		Expect(det).To(Equal(model.NewUndetected("h1")))
	})

	t.Run("malformed numbers and missing interfaces", func(t *testing.T) {
		raw := map[string]string{
			"CX7_DETECTED":       "1",
			"CX7_IFACE_COUNT":    "3",
			"CX7_IFACE_0_NAME":   "enp1",
			"CX7_IFACE_0_MTU":    "jumbo",
			"CX7_IFACE_0_PREFIX": "-4",
			"CX7_USED_SUBNETS":   "10.0.0.0/24, 10.0.0.0/24,,",
		}
		det := BuildHostDetection("h1", raw)
		Expect(det.Detected).To(BeTrue())
		Expect(det.Interfaces).To(HaveLen(3))
		Expect(det.Interfaces[0]).To(Equal(model.Interface{Name: "enp1"}))
		Expect(det.Interfaces[2]).To(Equal(model.Interface{}))
		Expect(det.UsedSubnetList()).To(Equal([]string{"10.0.0.0/24"}))
		Expect(det.NetplanExists).To(BeFalse())
		Expect(det.SudoOK).To(BeFalse())
	})

	t.Run("unparseable count", func(t *testing.T) {
		det := BuildHostDetection("h1", map[string]string{"CX7_DETECTED": "1", "CX7_IFACE_COUNT": "two"})
		Expect(det.Detected).To(BeTrue())
		Expect(det.Interfaces).To(BeEmpty())
		Expect(det.UsedSubnets).To(BeEmpty())
	})
}

func TestDetectForHosts(t *testing.T) {
	RegisterTestingT(t)

	t.Run("parallel detection", func(t *testing.T) {
		transport := mockremote.NewMockTransport()
		transport.SetResult("h1", 0, readSample("configured.txt"), "")
		transport.SetResult("h2", 0, readSample("unconfigured.txt"), "")

		detector := NewDetector(Deps{Transport: transport})
		detections := detector.DetectForHosts(context.Background(), []string{"h1", "h2"})

		Expect(detections).To(HaveLen(2))
		Expect(detections["h1"].Detected).To(BeTrue())
		Expect(detections["h1"].MgmtIP).To(Equal("10.24.11.13"))
		Expect(detections["h2"].Detected).To(BeTrue())
		Expect(detections["h2"].MgmtIP).To(Equal("10.24.11.14"))

		calls := transport.Calls()
		Expect(calls).To(HaveLen(1))
		Expect(calls[0]).To(HaveLen(2))
		Expect(calls[0][0].Script).To(Equal(ProbeScript()))
	})

	t.Run("failed host", func(t *testing.T) {
		transport := mockremote.NewMockTransport()
		transport.SetResult("h1", 1, "", "connection refused")
		transport.SetResult("h2", 0, readSample("configured.txt"), "")

		detector := NewDetector(Deps{Transport: transport})
		detections := detector.DetectForHosts(context.Background(), []string{"h1", "h2"})

		Expect(detections["h1"].Detected).To(BeFalse())
		Expect(detections["h1"].Interfaces).To(BeEmpty())
		Expect(detections["h2"].Detected).To(BeTrue())
	})

	t.Run("host without result", func(t *testing.T) {
		transport := mockremote.NewMockTransport()
		detector := NewDetector(Deps{Transport: transport})
		detections := detector.DetectForHosts(context.Background(), []string{"h1", "h1"})

		Expect(detections).To(HaveLen(1))
		Expect(detections["h1"].Detected).To(BeFalse())
		Expect(transport.Calls()[0]).To(HaveLen(1))
	})

	t.Run("empty hosts", func(t *testing.T) {
		transport := mockremote.NewMockTransport()
		detector := NewDetector(Deps{Transport: transport})
		Expect(detector.DetectForHosts(context.Background(), nil)).To(BeEmpty())
		Expect(transport.Calls()).To(BeEmpty())
	})

	t.Run("stats", func(t *testing.T) {
		transport := mockremote.NewMockTransport()
		transport.SetResult("h1", 255, "", "timeout")
		transport.SetResult("h2", 0, readSample("no_cx7.txt"), "")
		stats := &testStats{}

		detector := NewDetector(Deps{Transport: transport, Stats: stats})
		detector.DetectForHosts(context.Background(), []string{"h1", "h2"})

		Expect(stats.rounds).To(Equal(1))
		Expect(stats.probes).To(Equal(map[string][2]bool{
			"h1": {false, false},
			"h2": {true, false},
		}))
	})
}

func TestRoundTrip(t *testing.T) {
	RegisterTestingT(t)

	text := readSample("configured.txt")
	det := BuildHostDetection("h1", ParseDetectOutput(text))
	Expect(BuildHostDetection("h1", ParseDetectOutput(FormatDetection(det)))).To(Equal(det))
}

type testStats struct {
	rounds int
	probes map[string][2]bool
}

func (s *testStats) RecordProbe(host string, reachable, detected bool) {
	if s.probes == nil {
		s.probes = make(map[string][2]bool)
	}
	s.probes[host] = [2]bool{reachable, detected}
}

func (s *testStats) ObserveDetectDuration(d time.Duration) {
	s.rounds++
}
