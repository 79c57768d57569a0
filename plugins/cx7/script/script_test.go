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

package script

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/contiv/cx7ctl/plugins/cx7/model"
)

func TestGenerateConfigureScript(t *testing.T) {
	RegisterTestingT(t)

	t.Run("script has correct values", func(t *testing.T) {
		hp := &model.HostPlan{
			Host:        "h1",
			NeedsChange: true,
			Assignments: []model.InterfaceAssignment{
				{Name: "enp1s0f0np0", IP: "192.168.11.13", Subnet: "192.168.11.0/24"},
				{Name: "enP2p1s0f0np0", IP: "192.168.12.13", Subnet: "192.168.12.0/24"},
			},
		}
		script, err := GenerateConfigureScript(hp, 9000, 24)
		Expect(err).ToNot(HaveOccurred())
		Expect(script).To(HavePrefix("#!/usr/bin/env bash\n"))
		Expect(script).To(ContainSubstring("\nADAPTER1=\"enp1s0f0np0\"\n"))
		Expect(script).To(ContainSubstring("\nADAPTER2=\"enP2p1s0f0np0\"\n"))
		Expect(script).To(ContainSubstring("\nIP1=\"192.168.11.13\"\n"))
		Expect(script).To(ContainSubstring("\nIP2=\"192.168.12.13\"\n"))
		Expect(script).To(ContainSubstring("\nMTU=\"9000\"\n"))
		Expect(script).To(ContainSubstring("\nPREFIX=\"24\"\n"))
		Expect(script).To(ContainSubstring("/etc/netplan/40-cx7.yaml"))
		Expect(script).ToNot(ContainSubstring("{{"))
	})

	t.Run("raises on wrong assignment count", func(t *testing.T) {
		_, err := GenerateConfigureScript(&model.HostPlan{Host: "h1", NeedsChange: true}, 9000, 24)
		Expect(errors.Cause(err)).To(Equal(ErrInvalidPlan))
		Expect(err.Error()).To(ContainSubstring("expected 2 assignments, got 0"))

		_, err = GenerateConfigureScript(&model.HostPlan{
			Host:        "h1",
			Assignments: make([]model.InterfaceAssignment, 3),
		}, 9000, 24)
		Expect(err.Error()).To(ContainSubstring("expected 2 assignments, got 3"))

		_, err = GenerateConfigureScript(nil, 9000, 24)
		Expect(errors.Cause(err)).To(Equal(ErrInvalidPlan))
	})

	t.Run("values are quoted", func(t *testing.T) {
		hp := &model.HostPlan{
			Host: "evil\nrm -rf /",
			Assignments: []model.InterfaceAssignment{
				{Name: "$(reboot)", IP: "192.168.11.1"},
				{Name: "a\"b", IP: "192.168.12.1"},
			},
		}
		script, err := GenerateConfigureScript(hp, 9000, 24)
		Expect(err).ToNot(HaveOccurred())
		Expect(script).To(ContainSubstring("ADAPTER1=\"\\$(reboot)\""))
		Expect(script).To(ContainSubstring("ADAPTER2=\"a\\\"b\""))
		for _, line := range strings.Split(script, "\n") {
			Expect(line).ToNot(HavePrefix("rm -rf"))
		}
	})
}

func TestQuote(t *testing.T) {
	RegisterTestingT(t)

	Expect(Quote("")).To(Equal("\"\""))
	Expect(Quote("enp1s0f0np0")).To(Equal("\"enp1s0f0np0\""))
	Expect(Quote("a\\b")).To(Equal("\"a\\\\b\""))
	Expect(Quote("`id`")).To(Equal("\"\\`id\\`\""))
}
