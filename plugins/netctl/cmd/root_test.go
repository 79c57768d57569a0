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

package cmd

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
)

func TestHelp(t *testing.T) {
	RegisterTestingT(t)

	for _, tc := range []struct {
		args  []string
		flags []string
	}{
		{[]string{"setup", "cx7", "--help"}, []string{"--hosts", "--config", "--dry-run", "--force", "--mtu",
			"--subnet1", "--subnet2", "--ssh-user", "--parallel", "--timeout", "--metrics-file", "--debug", "CX7"}},
		{[]string{"detect", "--help"}, []string{"--hosts", "--json"}},
		{[]string{"probe", "--help"}, []string{"--docker"}},
	} {
		out := &bytes.Buffer{}
		root := NewRootCmd()
		root.SetOut(out)
		root.SetArgs(tc.args)

		Expect(root.Execute()).To(Succeed())
		for _, flag := range tc.flags {
			Expect(out.String()).To(ContainSubstring(flag))
		}
	}
}

func TestSubnetPairRejected(t *testing.T) {
	RegisterTestingT(t)
	t.Setenv("CX7CTL_CONFIG", "")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"setup", "cx7", "--hosts", "h1", "--subnet1", "192.168.11.0/24"})

	err := root.Execute()
	Expect(err).To(HaveOccurred())
	Expect(err.Error()).To(ContainSubstring("--subnet1 and --subnet2 must be given together"))
}

func TestUnknownArgs(t *testing.T) {
	RegisterTestingT(t)

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"setup", "cx7", "extra"})
	Expect(root.Execute()).ToNot(Succeed())
}
