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

package nodes

import (
	"strings"

	"github.com/contiv/cx7ctl/plugins/contivconf/config"
)

// ResolveHosts returns the hosts to work with. The comma separated list given
// on the command line wins, the hosts of the configuration file are used otherwise.
// Empty entries are dropped, duplicates are kept only once (first occurrence).
func ResolveHosts(flagHosts string, cfg *config.Config) []string {
	var candidates []string
	if strings.TrimSpace(flagHosts) != "" {
		candidates = strings.Split(flagHosts, ",")
	} else if cfg != nil {
		candidates = cfg.Hosts
	}

	hosts := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, host := range candidates {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		hosts = append(hosts, host)
	}
	return hosts
}
