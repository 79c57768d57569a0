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

package statscollector

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/contiv/cx7ctl/pkg/util/logs"
	"github.com/contiv/cx7ctl/plugins/cx7/model"
)

const (
	hostLabel = "host"

	hostReachableMetric   = "cx7HostReachable"
	hostDetectedMetric    = "cx7HostDetected"
	hostNeedsChangeMetric = "cx7HostNeedsChange"
	hostAppliedMetric     = "cx7HostApplied"

	clusterAllValidMetric = "cx7ClusterAllValid"
	detectDurationMetric  = "cx7DetectDurationSeconds"
	lastRunMetric         = "cx7LastRunTimestampSeconds"
)

// Collector keeps the outcome of one cx7ctl run as prometheus metrics.
// The metrics are written into a node-exporter textfile at the end of the run.
type Collector struct {
	Log logrus.FieldLogger

	registry  *prometheus.Registry
	gaugeVecs map[string]*prometheus.GaugeVec
	gauges    map[string]prometheus.Gauge
}

// NewCollector creates collector with all metrics registered in a private registry.
func NewCollector(log logrus.FieldLogger) (*Collector, error) {
	if log == nil {
		log = logs.Discard()
	}
	c := &Collector{
		Log:       log,
		registry:  prometheus.NewRegistry(),
		gaugeVecs: map[string]*prometheus.GaugeVec{},
		gauges:    map[string]prometheus.Gauge{},
	}

	for _, statItem := range [][2]string{
		{hostReachableMetric, "1 if the CX7 probe of the host succeeded"},
		{hostDetectedMetric, "1 if CX7 adapters were detected on the host"},
		{hostNeedsChangeMetric, "1 if the CX7 interfaces of the host need to be reconfigured"},
		{hostAppliedMetric, "1 if the configure script succeeded on the host, 0 if it failed"},
	} {
		name := statItem[0]
		c.gaugeVecs[name] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: statItem[1],
		}, []string{hostLabel})
	}

	for _, statItem := range [][2]string{
		{clusterAllValidMetric, "1 if all hosts already had valid CX7 configuration"},
		{detectDurationMetric, "Duration of the last detection round"},
		{lastRunMetric, "Time of the last cx7ctl run"},
	} {
		name := statItem[0]
		c.gauges[name] = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name,
			Help: statItem[1],
		})
	}

	for name, metric := range c.gaugeVecs {
		if err := c.registry.Register(metric); err != nil {
			return nil, errors.Wrapf(err, "failed to register %v metric", name)
		}
	}
	for name, metric := range c.gauges {
		if err := c.registry.Register(metric); err != nil {
			return nil, errors.Wrapf(err, "failed to register %v metric", name)
		}
	}
	c.gauges[lastRunMetric].SetToCurrentTime()
	return c, nil
}

// Registry returns the registry holding all metrics of the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordProbe records the outcome of probing a single host.
func (c *Collector) RecordProbe(host string, reachable, detected bool) {
	c.gaugeVecs[hostReachableMetric].WithLabelValues(host).Set(boolToFloat(reachable))
	c.gaugeVecs[hostDetectedMetric].WithLabelValues(host).Set(boolToFloat(detected))
}

// ObserveDetectDuration records how long the detection round took.
func (c *Collector) ObserveDetectDuration(d time.Duration) {
	c.gauges[detectDurationMetric].Set(d.Seconds())
}

// RecordPlan records which hosts need a change.
func (c *Collector) RecordPlan(plan *model.ClusterPlan) {
	if plan == nil {
		return
	}
	for _, hp := range plan.HostPlans {
		c.gaugeVecs[hostNeedsChangeMetric].WithLabelValues(hp.Host).Set(boolToFloat(hp.NeedsChange))
	}
	c.gauges[clusterAllValidMetric].Set(boolToFloat(plan.AllValid))
}

// RecordApply records the outcome of running the configure script on a host.
func (c *Collector) RecordApply(host string, ok bool) {
	c.gaugeVecs[hostAppliedMetric].WithLabelValues(host).Set(boolToFloat(ok))
}

// WriteTextfile atomically writes all metrics into the given file in the text
// exposition format (for the textfile collector of node-exporter).
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	c.Log.Debugf("Metrics written to %s", path)
	return nil
}

func boolToFloat(val bool) float64 {
	if val {
		return 1
	}
	return 0
}
