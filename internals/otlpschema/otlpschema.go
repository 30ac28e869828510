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

// Package otlpschema declares the fixed, ClickHouse-compatible Arrow
// schemas every RecordBatch must conform to for its signal. Schemas are
// created once at package init and shared by value (arrow.Schema is
// immutable and safe for concurrent use).
package otlpschema

import (
	"github.com/apache/arrow/go/v17/arrow"
)

var stringMap = arrow.MapOf(arrow.BinaryTypes.String, arrow.BinaryTypes.String)

func init() {
	stringMap.ValueField().Nullable = true
}

func field(name string, t arrow.DataType, nullable bool) arrow.Field {
	return arrow.Field{Name: name, Type: t, Nullable: nullable}
}

// commonResourceScopeFields returns the ServiceName/Namespace/InstanceId +
// ScopeName/Version + ResourceAttributes columns shared by every signal, in
// the same order as the logs schema.
func commonResourceScopeFields() []arrow.Field {
	return []arrow.Field{
		field("ServiceName", arrow.BinaryTypes.String, false),
		field("ServiceNamespace", arrow.BinaryTypes.String, true),
		field("ServiceInstanceId", arrow.BinaryTypes.String, true),
		field("ScopeName", arrow.BinaryTypes.String, false),
		field("ScopeVersion", arrow.BinaryTypes.String, true),
		field("ResourceAttributes", stringMap, false),
	}
}

// Logs is the canonical Arrow schema for the logs table.
var Logs = arrow.NewSchema(append([]arrow.Field{
	field("Timestamp", arrow.FixedWidthTypes.Timestamp_ns, false),
	field("ObservedTimestamp", arrow.FixedWidthTypes.Timestamp_ns, false),
	field("TraceId", &arrow.FixedSizeBinaryType{ByteWidth: 16}, false),
	field("SpanId", &arrow.FixedSizeBinaryType{ByteWidth: 8}, false),
	field("TraceFlags", arrow.PrimitiveTypes.Uint32, false),
	field("SeverityText", arrow.BinaryTypes.String, false),
	field("SeverityNumber", arrow.PrimitiveTypes.Int32, false),
	field("Body", arrow.BinaryTypes.String, false),
}, append(commonResourceScopeFields(), field("LogAttributes", stringMap, false))...), nil)

// Traces follows the same resource/scope/attribute convention as Logs, with
// span-shaped columns in place of log-shaped ones.
var Traces = arrow.NewSchema(append([]arrow.Field{
	field("Timestamp", arrow.FixedWidthTypes.Timestamp_ns, false),
	field("EndTimestamp", arrow.FixedWidthTypes.Timestamp_ns, false),
	field("TraceId", &arrow.FixedSizeBinaryType{ByteWidth: 16}, false),
	field("SpanId", &arrow.FixedSizeBinaryType{ByteWidth: 8}, false),
	field("ParentSpanId", &arrow.FixedSizeBinaryType{ByteWidth: 8}, false),
	field("SpanName", arrow.BinaryTypes.String, false),
}, append(commonResourceScopeFields(), field("SpanAttributes", stringMap, false))...), nil)

// metricsSchema builds the Gauge/Sum schema: shared resource/scope columns
// plus the metric name/unit/value columns.
func metricsSchema() *arrow.Schema {
	return arrow.NewSchema(append([]arrow.Field{
		field("Timestamp", arrow.FixedWidthTypes.Timestamp_ns, false),
		field("MetricName", arrow.BinaryTypes.String, false),
		field("MetricUnit", arrow.BinaryTypes.String, true),
		field("MetricDescription", arrow.BinaryTypes.String, true),
		field("Value", arrow.PrimitiveTypes.Float64, false),
	}, append(commonResourceScopeFields(), field("MetricAttributes", stringMap, false))...), nil)
}

// Gauge and Sum are distinct schema instances — one batch is produced per
// MetricKind actually observed — even though their column layout is
// identical today. Keeping them separate lets either evolve independently
// without touching the other.
var (
	Gauge = metricsSchema()
	Sum   = metricsSchema()
)

// ForSignal returns the fixed schema for a non-metrics signal.
func ForSignal(s string) *arrow.Schema {
	switch s {
	case "logs":
		return Logs
	case "traces":
		return Traces
	default:
		return nil
	}
}
