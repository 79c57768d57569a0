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

package docker

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/contiv/cx7ctl/mock/dockerclient"
)

func TestUsedSubnets(t *testing.T) {
	RegisterTestingT(t)

	client := dockerclient.NewMockDockerClient()

	t.Run("disconnected", func(t *testing.T) {
		_, err := UsedSubnets(client)
		Expect(err).To(HaveOccurred())
	})

	t.Run("networks", func(t *testing.T) {
		client.Connect()
		client.AddNetwork("bridge", "bridge", "172.17.0.0/16")
		client.AddNetwork("host", "host")
		client.AddNetwork("compose_default", "bridge", "172.18.0.0/16", "fd00:1::/64")
		client.AddNetwork("again", "bridge", "172.17.0.0/16")

		subnets, err := UsedSubnets(client)
		Expect(err).ToNot(HaveOccurred())
		Expect(subnets).To(Equal([]string{"172.17.0.0/16", "172.18.0.0/16", "fd00:1::/64"}))
	})
}
