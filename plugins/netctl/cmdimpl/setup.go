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
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/contiv/cx7ctl/plugins/contivconf/config"
	"github.com/contiv/cx7ctl/plugins/cx7/detect"
	"github.com/contiv/cx7ctl/plugins/cx7/model"
	"github.com/contiv/cx7ctl/plugins/cx7/script"
	"github.com/contiv/cx7ctl/plugins/ipam"
	"github.com/contiv/cx7ctl/plugins/netctl/nodes"
	"github.com/contiv/cx7ctl/plugins/netctl/remote"
	"github.com/contiv/cx7ctl/plugins/statscollector"
)

// SetupOptions are options of the "setup cx7" command.
type SetupOptions struct {
	ClusterOptions

	// DryRun prints the configure scripts instead of running them
	DryRun bool
	// Force reconfigures also the hosts that are already configured
	Force bool
	MTU   int

	// target subnets, both or none
	Subnet1 string
	Subnet2 string

	MetricsFile string
}

// SetupCX7 detects the CX7 state of the hosts, plans the addressing and
// (unless dry-run) configures the hosts that need it.
func SetupCX7(ctx context.Context, deps Deps, opts *SetupOptions) error {
	deps = deps.withDefaults()

	// fail before any network activity
	if err := validateSubnetPair(opts.Subnet1, opts.Subnet2); err != nil {
		return err
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	if opts.MTU > 0 {
		cfg.MTU = opts.MTU
	}
	if opts.Subnet1 != "" {
		cfg.Subnet1, cfg.Subnet2 = opts.Subnet1, opts.Subnet2
	}
	if err := validateSubnetPair(cfg.Subnet1, cfg.Subnet2); err != nil {
		return errors.Wrap(err, "invalid config file")
	}
	if opts.MetricsFile != "" {
		cfg.MetricsFile = opts.MetricsFile
	}

	hosts := nodes.ResolveHosts(opts.Hosts, cfg)
	if len(hosts) == 0 {
		return ErrNoHosts
	}

	stats, err := statscollector.NewCollector(deps.Log)
	if err != nil {
		return err
	}
	defer writeMetrics(deps, stats, cfg)

	probeTransport, applyTransport := transports(deps, cfg)

	// detect
	fmt.Fprintf(deps.Out, "Detecting CX7 adapters on %d hosts...\n", len(hosts))
	detector := detect.NewDetector(detect.Deps{
		Transport: probeTransport,
		Log:       deps.Log,
		Stats:     stats,
	})
	ordered := model.OrderDetections(hosts, detector.DetectForHosts(ctx, hosts))
	PrintDetections(deps.Out, ordered)

	var detected []*model.HostDetection
	detectedByHost := make(map[string]*model.HostDetection)
	for _, det := range ordered {
		if !det.Detected {
			fmt.Fprintf(deps.Out, "WARNING: no CX7 adapters detected on %s (or the host is unreachable), skipping\n", det.Host)
			continue
		}
		detected = append(detected, det)
		detectedByHost[det.Host] = det
	}
	if len(detected) == 0 {
		return ErrNothingDetected
	}

	// plan
	selector := ipam.NewSelector(ipam.Deps{Log: deps.Log})
	subnet1, subnet2, err := selector.SelectSubnets(detectedByHost, cfg.Subnet1, cfg.Subnet2)
	if err != nil {
		return errors.Wrap(err, "failed to select target subnets")
	}
	prefixLen, err := commonPrefixLen(subnet1, subnet2)
	if err != nil {
		return err
	}
	plan, err := ipam.PlanCluster(detected, subnet1, subnet2,
		ipam.WithForce(opts.Force), ipam.WithMTU(cfg.MTU), ipam.WithLogger(deps.Log))
	if err != nil {
		return errors.Wrap(err, "failed to plan CX7 addressing")
	}
	stats.RecordPlan(plan)
	PrintPlan(deps.Out, plan)

	if plan.AllValid {
		fmt.Fprintln(deps.Out, "\nAll hosts already configured, nothing to do.")
		return nil
	}

	var jobs []remote.Job
	for _, hp := range plan.HostsNeedingChange() {
		hp := hp
		configureScript, err := script.GenerateConfigureScript(&hp, cfg.MTU, prefixLen)
		if err != nil {
			return err
		}
		jobs = append(jobs, remote.Job{Host: hp.Host, Script: configureScript})
	}

	if opts.DryRun {
		for _, job := range jobs {
			fmt.Fprintf(deps.Out, "\n# ----- %s -----\n%s", job.Host, job.Script)
		}
		fmt.Fprintf(deps.Out, "\nDry run, %d hosts not configured.\n", len(jobs))
		return nil
	}

	// apply
	fmt.Fprintf(deps.Out, "\nConfiguring CX7 interfaces on %d hosts...\n", len(jobs))
	results := applyTransport.RunScripts(ctx, jobs)
	return reportApply(deps, stats, jobs, results)
}

// reportApply prints outcome of the configure scripts, the hosts without
// a result are counted as failed.
func reportApply(deps Deps, stats *statscollector.Collector, jobs []remote.Job, results []remote.Result) error {
	byHost := make(map[string]remote.Result, len(results))
	for _, res := range results {
		byHost[res.Host] = res
	}

	var failed []string
	w := newTabWriter(deps.Out)
	fmt.Fprintf(w, "HOST\tRESULT\tDETAIL\n")
	for _, job := range jobs {
		res, found := byHost[job.Host]
		if !found {
			res = remote.Result{Host: job.Host, ReturnCode: remote.TransportFailureCode, Stderr: "no result"}
		}
		stats.RecordApply(job.Host, res.OK())
		if res.OK() {
			fmt.Fprintf(w, "%s\t%s\t\n", job.Host, statusOK)
			continue
		}
		failed = append(failed, job.Host)
		detail := lastLine(res.Stderr)
		deps.Log.WithField("host", job.Host).Errorf("Error by configuring CX7 interfaces (rc=%d): %s",
			res.ReturnCode, strings.TrimSpace(res.Stderr))
		fmt.Fprintf(w, "%s\t%s\trc=%d %s\n", job.Host, statusFailed, res.ReturnCode, detail)
	}
	w.Flush()

	if len(failed) > 0 {
		return errors.Errorf("CX7 configuration failed on %d of %d hosts: %s",
			len(failed), len(jobs), strings.Join(failed, ", "))
	}
	return nil
}

func writeMetrics(deps Deps, stats *statscollector.Collector, cfg *config.Config) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := stats.WriteTextfile(cfg.MetricsFile); err != nil {
		deps.Log.Warn(err)
	}
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	return lines[len(lines)-1]
}
