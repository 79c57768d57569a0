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

package cmdimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/contiv/cx7ctl/plugins/cx7/detect"
	"github.com/contiv/cx7ctl/plugins/cx7/model"
	"github.com/contiv/cx7ctl/plugins/netctl/nodes"
)

// DetectOptions are options of the detect command.
type DetectOptions struct {
	ClusterOptions
	// JSON prints the detections as JSON instead of a table
	JSON bool
}

// DetectCX7 probes the hosts and prints their CX7 state. Nothing is changed on the hosts.
func DetectCX7(ctx context.Context, deps Deps, opts *DetectOptions) error {
	deps = deps.withDefaults()

	cfg, err := opts.config()
	if err != nil {
		return err
	}
	hosts := nodes.ResolveHosts(opts.Hosts, cfg)
	if len(hosts) == 0 {
		return ErrNoHosts
	}

	probeTransport, _ := transports(deps, cfg)
	detector := detect.NewDetector(detect.Deps{Transport: probeTransport, Log: deps.Log})
	detections := model.OrderDetections(hosts, detector.DetectForHosts(ctx, hosts))

	if opts.JSON {
		enc := json.NewEncoder(deps.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(detections)
	}
	PrintDetections(deps.Out, detections)
	return nil
}

// PrintDetections prints the detections in a table format, one row per CX7 interface.
func PrintDetections(out io.Writer, detections []*model.HostDetection) {
	w := newTabWriter(out)
	fmt.Fprintf(w, "HOST\tMGMT-IP\tINTERFACE\tIP\tSUBNET\tMTU\tSTATE\tHCA\tNETPLAN\tSUDO\n")

	for _, det := range detections {
		if !det.Detected {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", det.Host,
				notAvailable, "not detected", notAvailable, notAvailable, notAvailable,
				notAvailable, notAvailable, notAvailable, notAvailable)
			continue
		}
		for _, iface := range det.Interfaces {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				det.Host,
				orNA(det.MgmtIP),
				iface.Name,
				orNA(iface.IP),
				orNA(iface.Subnet),
				intOrNA(iface.MTU),
				orNA(iface.State),
				orNA(iface.HCA),
				yesNo(det.NetplanExists),
				yesNo(det.SudoOK))
		}
		if len(det.Interfaces) == 0 {
			fmt.Fprintf(w, "%s\t%s\t%s\t\t\t\t\t\t%s\t%s\n", det.Host, orNA(det.MgmtIP),
				"no interfaces", yesNo(det.NetplanExists), yesNo(det.SudoOK))
		}
	}
	w.Flush()

	for _, det := range detections {
		if det.Detected && len(det.UsedSubnets) > 0 {
			fmt.Fprintf(out, "%s uses: %s\n", det.Host, strings.Join(det.UsedSubnetList(), ", "))
		}
	}
}
