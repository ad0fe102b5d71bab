// Copyright 2023 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package v2

import "github.com/prometheus/client_golang/prometheus"

var (
	materializeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "densify",
			Subsystem: "interleave",
			Name:      "materialize_total",
			Help:      "Total number of materialized tables by output type family.",
		}, []string{"type"})
	MaterializeBoolCounter     = materializeCounter.WithLabelValues("bool")
	MaterializeIntegerCounter  = materializeCounter.WithLabelValues("integer")
	MaterializeFloatCounter    = materializeCounter.WithLabelValues("float")
	MaterializeTemporalCounter = materializeCounter.WithLabelValues("temporal")
	MaterializeGenericCounter  = materializeCounter.WithLabelValues("generic")

	MaterializeFailedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "densify",
			Subsystem: "interleave",
			Name:      "materialize_failed_total",
			Help:      "Total number of failed materializations by error code.",
		}, []string{"code"})

	MaterializeDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "densify",
			Subsystem: "interleave",
			Name:      "materialize_duration_seconds",
			Help:      "Bucketed histogram of materialize duration.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2.0, 20),
		})

	MaterializeCellsHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "densify",
			Subsystem: "interleave",
			Name:      "materialize_cells",
			Help:      "Bucketed histogram of output cells per materialization.",
			Buckets:   prometheus.ExponentialBuckets(1, 4.0, 16),
		})
)
