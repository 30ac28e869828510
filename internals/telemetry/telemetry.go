// Copyright (c) 2024 Canonical Ltd
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License version 3 as
// published by the Free Software Foundation.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package telemetry exposes process metrics via the Prometheus exposition
// format: a counter per error Kind, plus counters for skipped and accepted
// data points.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

var (
	ErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otlp2parquet_errors_total",
		Help: "Ingest errors by taxonomy kind.",
	}, []string{"kind"})

	RecordsAcceptedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otlp2parquet_records_accepted_total",
		Help: "Records accepted into a Batcher, by signal and service.",
	}, []string{"signal", "service"})

	DataPointsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otlp2parquet_datapoints_skipped_total",
		Help: "Metric data points dropped before batching, by reason.",
	}, []string{"reason"})

	PartitionsWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otlp2parquet_partitions_written_total",
		Help: "Parquet partitions successfully written to the storage sink.",
	})

	PendingBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "otlp2parquet_pending_bytes",
		Help: "Approximate bytes currently buffered across all batch shards.",
	})
)

func init() {
	prometheus.MustRegister(ErrorsTotal, RecordsAcceptedTotal, DataPointsSkippedTotal, PartitionsWrittenTotal, PendingBytes)
}

// RecordSkips increments DataPointsSkippedTotal for each nonzero reason in counts.
func RecordSkips(counts otlpdata.SkipCounts) {
	if counts.Histogram > 0 {
		DataPointsSkippedTotal.WithLabelValues("histogram").Add(float64(counts.Histogram))
	}
	if counts.ExponentialHistogram > 0 {
		DataPointsSkippedTotal.WithLabelValues("exponential_histogram").Add(float64(counts.ExponentialHistogram))
	}
	if counts.Summary > 0 {
		DataPointsSkippedTotal.WithLabelValues("summary").Add(float64(counts.Summary))
	}
	if counts.InvalidValue > 0 {
		DataPointsSkippedTotal.WithLabelValues("invalid_value").Add(float64(counts.InvalidValue))
	}
}
