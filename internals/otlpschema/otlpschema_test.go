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

package otlpschema

import "testing"

func hasField(t *testing.T, name string, names []string) {
	t.Helper()
	for _, n := range names {
		if n == name {
			return
		}
	}
	t.Errorf("schema missing field %q (have %v)", name, names)
}

func TestLogsSchemaFields(t *testing.T) {
	var names []string
	for _, f := range Logs.Fields() {
		names = append(names, f.Name)
	}
	for _, want := range []string{"Timestamp", "ObservedTimestamp", "TraceId", "SpanId", "SeverityText", "Body", "ServiceName", "LogAttributes"} {
		hasField(t, want, names)
	}
}

func TestTracesSchemaFields(t *testing.T) {
	var names []string
	for _, f := range Traces.Fields() {
		names = append(names, f.Name)
	}
	for _, want := range []string{"Timestamp", "EndTimestamp", "SpanId", "ParentSpanId", "SpanName", "ServiceName", "SpanAttributes"} {
		hasField(t, want, names)
	}
}

func TestMetricsSchemaFields(t *testing.T) {
	var names []string
	for _, f := range Gauge.Fields() {
		names = append(names, f.Name)
	}
	for _, want := range []string{"Timestamp", "MetricName", "Value", "ServiceName", "MetricAttributes"} {
		hasField(t, want, names)
	}
}

func TestGaugeAndSumAreDistinctInstances(t *testing.T) {
	if Gauge == Sum {
		t.Error("Gauge and Sum share the same schema instance, want distinct instances")
	}
	if !Gauge.Equal(Sum) {
		t.Error("Gauge and Sum should have identical column layouts")
	}
}

func TestForSignal(t *testing.T) {
	if ForSignal("logs") != Logs {
		t.Error(`ForSignal("logs") != Logs`)
	}
	if ForSignal("traces") != Traces {
		t.Error(`ForSignal("traces") != Traces`)
	}
	if ForSignal("metrics") != nil {
		t.Error(`ForSignal("metrics") should be nil, metrics schemas are kind-specific`)
	}
	if ForSignal("bogus") != nil {
		t.Error(`ForSignal("bogus") should be nil`)
	}
}
