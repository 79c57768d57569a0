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
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/contiv/cx7ctl/pkg/util/logs"
	"github.com/contiv/cx7ctl/plugins/cx7/model"
	"github.com/contiv/cx7ctl/plugins/netctl/remote"
)

// Stats receives the outcome of probes, implemented by statscollector.
type Stats interface {
	// RecordProbe is called once per probed host.
	RecordProbe(host string, reachable, detected bool)
	// ObserveDetectDuration is called once per detection round.
	ObserveDetectDuration(d time.Duration)
}

// Deps groups the dependencies of the Detector.
type Deps struct {
	// Transport executes the probe script on the hosts
	Transport remote.Transport
	// Log is optional, nothing is logged if not set
	Log logrus.FieldLogger
	// Stats is optional
	Stats Stats
	// Script overrides the built-in probe script, used in tests
	Script string
}

// Detector probes CX7 state of many hosts at once.
type Detector struct {
	Deps
}

// NewDetector creates a new Detector.
func NewDetector(deps Deps) *Detector {
	if deps.Log == nil {
		deps.Log = logs.Discard()
	}
	if deps.Script == "" {
		deps.Script = ProbeScript()
	}
	return &Detector{Deps: deps}
}

// DetectForHosts runs the probe on all given hosts in parallel and returns detection
// of every host. A host that could not be probed is returned as undetected,
// the method itself never fails.
func (d *Detector) DetectForHosts(ctx context.Context, hosts []string) map[string]*model.HostDetection {
	detections := make(map[string]*model.HostDetection)
	if len(hosts) == 0 {
		return detections
	}

	var jobs []remote.Job
	for _, host := range hosts {
		if _, dup := detections[host]; dup {
			continue
		}
		// placeholder for hosts the transport does not return a result for
		detections[host] = model.NewUndetected(host)
		jobs = append(jobs, remote.Job{Host: host, Script: d.Script})
	}

	d.Log.Debugf("Probing CX7 state of %d hosts", len(jobs))
	start := time.Now()
	results := d.Transport.RunScripts(ctx, jobs)
	if d.Stats != nil {
		d.Stats.ObserveDetectDuration(time.Since(start))
	}

	for _, res := range results {
		if _, requested := detections[res.Host]; !requested {
			d.Log.Warnf("Ignoring probe result of unexpected host %s", res.Host)
			continue
		}
		det := d.detectionFromResult(res)
		detections[res.Host] = det
		if d.Stats != nil {
			d.Stats.RecordProbe(res.Host, res.OK(), det.Detected)
		}
	}
	return detections
}

func (d *Detector) detectionFromResult(res remote.Result) *model.HostDetection {
	log := d.Log.WithField("host", res.Host)
	if !res.OK() {
		log.Warnf("CX7 probe failed (rc=%d): %s", res.ReturnCode, strings.TrimSpace(res.Stderr))
		return model.NewUndetected(res.Host)
	}

	det := BuildHostDetection(res.Host, ParseDetectOutput(res.Stdout))
	if det.Detected {
		log.Debugf("Detected %d CX7 interfaces", len(det.Interfaces))
	} else {
		log.Debug("No CX7 adapters detected")
	}
	return det
}
