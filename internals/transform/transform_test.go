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

package transform

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow/array"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

func withFixedClock(t *testing.T, nanos int64) {
	t.Helper()
	prev := wallClockNanos
	wallClockNanos = func() int64 { return nanos }
	t.Cleanup(func() { wallClockNanos = prev })
}

func TestConvertLogsProducesOneBatch(t *testing.T) {
	withFixedClock(t, 5000)

	req := &otlpdata.SignalRequest{
		Signal: otlpdata.SignalLogs,
		ResourceGroups: []otlpdata.ResourceGroup{{
			ResourceAttributes: otlpdata.Attributes{"service.name": "checkout", "region": "us-east"},
			Scopes: []otlpdata.ScopeGroup{{
				ScopeName: "otel.logs",
				Records: []otlpdata.Record{
					{TimestampNanos: 1000, Body: "hello", SeverityText: "INFO"},
					{TimestampNanos: 0, Body: "no timestamp"},
				},
			}},
		}},
	}

	result, err := ConvertLogs(req)
	if err != nil {
		t.Fatalf("ConvertLogs: %v", err)
	}
	defer result.Batch.Release()

	if result.Batch.Signal != otlpdata.SignalLogs {
		t.Errorf("Signal = %v, want SignalLogs", result.Batch.Signal)
	}
	if result.Batch.Record.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", result.Batch.Record.NumRows())
	}
	if result.Metadata.RecordCount() != 2 {
		t.Errorf("Metadata.RecordCount() = %d, want 2", result.Metadata.RecordCount())
	}
	if result.Metadata.ServiceName() != "checkout" {
		t.Errorf("Metadata.ServiceName() = %q, want checkout", result.Metadata.ServiceName())
	}
	// The zero-timestamp record is excluded from the running minimum.
	if result.Metadata.FirstTimestampNanos() != 1000 {
		t.Errorf("Metadata.FirstTimestampNanos() = %d, want 1000", result.Metadata.FirstTimestampNanos())
	}
}

func TestConvertTracesUsesObservedAsEndTime(t *testing.T) {
	withFixedClock(t, 9999)

	req := &otlpdata.SignalRequest{
		Signal: otlpdata.SignalTraces,
		ResourceGroups: []otlpdata.ResourceGroup{{
			ResourceAttributes: otlpdata.Attributes{"service.name": "frontend"},
			Scopes: []otlpdata.ScopeGroup{{
				Records: []otlpdata.Record{
					{TimestampNanos: 100, ObservedTimestampNanos: 200, SpanName: "GET /"},
				},
			}},
		}},
	}

	result, err := ConvertTraces(req)
	if err != nil {
		t.Fatalf("ConvertTraces: %v", err)
	}
	defer result.Batch.Release()

	if result.Batch.Record.NumRows() != 1 {
		t.Fatalf("NumRows = %d, want 1", result.Batch.Record.NumRows())
	}
	if result.Metadata.ServiceName() != "frontend" {
		t.Errorf("ServiceName() = %q, want frontend", result.Metadata.ServiceName())
	}
	endIdx := result.Batch.Record.Schema().FieldIndices("EndTimestamp")[0]
	if got := int64(result.Batch.Record.Column(endIdx).(*array.Timestamp).Value(0)); got != 200 {
		t.Errorf("EndTimestamp = %d, want 200 (the record's ObservedTimestampNanos)", got)
	}
}

func TestConvertMetricsSplitsByKind(t *testing.T) {
	req := &otlpdata.SignalRequest{
		Signal: otlpdata.SignalMetrics,
		ResourceGroups: []otlpdata.ResourceGroup{{
			ResourceAttributes: otlpdata.Attributes{"service.name": "billing"},
			Scopes: []otlpdata.ScopeGroup{{
				Records: []otlpdata.Record{
					{MetricName: "cpu", MetricKind: otlpdata.MetricKindGauge, Value: 1.5, TimestampNanos: 10},
					{MetricName: "requests", MetricKind: otlpdata.MetricKindSum, Value: 3, TimestampNanos: 20},
					{MetricName: "skipped", MetricKind: otlpdata.MetricKindHistogram, Value: 0},
				},
			}},
		}},
	}

	results, err := ConvertMetrics(req)
	if err != nil {
		t.Fatalf("ConvertMetrics: %v", err)
	}
	defer func() {
		for _, r := range results {
			r.Batch.Release()
		}
	}()

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 (Gauge and Sum only)", len(results))
	}
	for _, r := range results {
		if r.Batch.Record.NumRows() != 1 {
			t.Errorf("batch for kind %v has %d rows, want 1", r.Batch.Kind, r.Batch.Record.NumRows())
		}
		meta, ok := r.Metadata.(otlpdata.MetricsMetadata)
		if !ok {
			t.Fatalf("Metadata type = %T, want otlpdata.MetricsMetadata", r.Metadata)
		}
		if meta.Kind != r.Batch.Kind {
			t.Errorf("meta.Kind = %v, batch.Kind = %v", meta.Kind, r.Batch.Kind)
		}
	}
}

func TestConvertMetricsEmptyRequestProducesNoBatches(t *testing.T) {
	results, err := ConvertMetrics(&otlpdata.SignalRequest{Signal: otlpdata.SignalMetrics})
	if err != nil {
		t.Fatalf("ConvertMetrics: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}
