// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
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
	"io"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"gvisor.dev/pikernel/pkg/traps"
)

const metricPrefix = "pikernel_"

func ptr[T any](v T) *T {
	return &v
}

// counterFamily returns a counter family with one metric per label value.
func counterFamily(name, help, label string, values []string, counts []uint64) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: ptr(metricPrefix + name),
		Help: ptr(help),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for i, v := range values {
		m := &dto.Metric{Counter: &dto.Counter{Value: ptr(float64(counts[i]))}}
		if label != "" {
			m.Label = []*dto.LabelPair{{Name: ptr(label), Value: ptr(v)}}
		}
		mf.Metric = append(mf.Metric, m)
	}
	return mf
}

// trapMetrics converts trap statistics to metric families.
func trapMetrics(snap traps.StatsSnapshot, ticks uint64) []*dto.MetricFamily {
	var kinds []string
	var kindCounts []uint64
	for _, k := range []traps.Kind{traps.Synchronous, traps.Irq, traps.Fiq, traps.SError} {
		kinds = append(kinds, k.String())
		kindCounts = append(kindCounts, snap.Kinds[k])
	}
	var outcomes []string
	var outcomeCounts []uint64
	for _, o := range traps.Outcomes {
		outcomes = append(outcomes, o.String())
		outcomeCounts = append(outcomeCounts, snap.Outcomes[o])
	}
	return []*dto.MetricFamily{
		counterFamily("traps_total", "Exceptions taken, by kind.", "kind", kinds, kindCounts),
		counterFamily("trap_outcomes_total", "Exceptions handled, by outcome.", "outcome", outcomes, outcomeCounts),
		counterFamily("timer_ticks_total", "Timer interrupts serviced.", "", []string{""}, []uint64{ticks}),
	}
}

// writeMetrics writes families in the Prometheus text exposition format.
func writeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
