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

// Package otlpdata holds the normalized in-memory representation that the
// decoder produces and every downstream component (splitter, transformer,
// batcher) consumes. It is independent of wire format: protobuf, JSON and
// JSONL all decode into the same tree.
package otlpdata

import "encoding/json"

// Signal identifies which OTLP data kind a request carries.
type Signal int

const (
	SignalLogs Signal = iota
	SignalTraces
	SignalMetrics
)

func (s Signal) String() string {
	switch s {
	case SignalLogs:
		return "logs"
	case SignalTraces:
		return "traces"
	case SignalMetrics:
		return "metrics"
	default:
		return "unknown"
	}
}

// MetricKind distinguishes the OTLP metric data-point kinds. Only Gauge and
// Sum are ever transformed into rows; the rest are counted and dropped.
type MetricKind int

const (
	MetricKindGauge MetricKind = iota
	MetricKindSum
	MetricKindHistogram
	MetricKindExponentialHistogram
	MetricKindSummary
)

func (k MetricKind) String() string {
	switch k {
	case MetricKindGauge:
		return "gauge"
	case MetricKindSum:
		return "sum"
	case MetricKindHistogram:
		return "histogram"
	case MetricKindExponentialHistogram:
		return "exponential_histogram"
	case MetricKindSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// Supported reports whether rows are ever produced for this metric kind.
func (k MetricKind) Supported() bool {
	return k == MetricKindGauge || k == MetricKindSum
}

// Attributes is a string-to-string attribute map; as a plain Go map, its
// iteration order is not defined. Values that
// started life as a non-string OTLP AnyValue are pre-serialized to canonical
// JSON by the caller (see CanonicalJSON) before being stored here, so every
// attribute in the map is already in its final string form.
type Attributes map[string]string

// CanonicalJSON serializes an arbitrary decoded JSON value (as produced by
// encoding/json's map[string]any / []any / primitives decoding, or hand-built
// equivalents for the protobuf path) to a stable string. encoding/json sorts
// object keys when marshaling a map[string]any, which is exactly the
// "sorted keys, no whitespace" canonical form the transformer needs.
func CanonicalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Values reaching here have already round-tripped through JSON or
		// been built from protobuf scalars; marshaling cannot fail for the
		// shapes internals/decode's anyValueToGo produces. Fall back to a lossy string rather
		// than propagating an error from what should be a pure, never-failing
		// coercion path.
		return "null"
	}
	return string(b)
}

// Record is a single log / span / metric-data-point entry, already reduced
// to the handful of fields every signal's transformer needs.
type Record struct {
	// TimestampNanos is nanoseconds since Unix epoch, or 0 when unknown.
	TimestampNanos int64
	// ObservedTimestampNanos is the observed time for logs and the span end
	// time for traces; 0 for metrics.
	ObservedTimestampNanos int64
	Attributes             Attributes

	// Logs
	Body           string
	SeverityText   string
	SeverityNumber int32
	TraceID        []byte
	SpanID         []byte
	TraceFlags     uint32

	// Traces
	SpanName     string
	ParentSpanID []byte

	// Metrics
	MetricName        string
	MetricUnit        string
	MetricDescription string
	MetricKind        MetricKind
	Value             float64
}

// ScopeGroup is a sequence of Records sharing one instrumentation scope.
type ScopeGroup struct {
	ScopeName    string
	ScopeVersion string
	Records      []Record
}

// ResourceGroup associates a resource attribute set with the scopes that
// were recorded against it.
type ResourceGroup struct {
	ResourceAttributes Attributes
	Scopes             []ScopeGroup
}

// SignalRequest is the decoder's output: a normalized, wire-format-agnostic
// view of one OTLP Export<Signal>ServiceRequest.
type SignalRequest struct {
	Signal         Signal
	ResourceGroups []ResourceGroup
}

// RecordCount returns the total number of records across every resource and
// scope group.
func (r *SignalRequest) RecordCount() int {
	n := 0
	for _, rg := range r.ResourceGroups {
		for _, sg := range rg.Scopes {
			n += len(sg.Records)
		}
	}
	return n
}

// ServiceName resolution, per spec: the first resource attribute whose key
// is exactly "service.name" and whose value is a non-empty string;
// "unknown" otherwise.
func ServiceName(attrs Attributes) string {
	if v, ok := attrs["service.name"]; ok && v != "" {
		return v
	}
	return "unknown"
}

// ResourceKeys that are extracted into dedicated schema columns rather than
// left in the generic resource-attributes map.
const (
	AttrServiceName      = "service.name"
	AttrServiceNamespace = "service.namespace"
	AttrServiceInstance  = "service.instance.id"
)

// SkipCounts tallies metric data points the decoder omits from the
// output. Counting, not failure, is the contract.
type SkipCounts struct {
	Histogram            int64
	ExponentialHistogram int64
	Summary              int64
	InvalidValue         int64
}

// Add merges another SkipCounts into the receiver.
func (s *SkipCounts) Add(o SkipCounts) {
	s.Histogram += o.Histogram
	s.ExponentialHistogram += o.ExponentialHistogram
	s.Summary += o.Summary
	s.InvalidValue += o.InvalidValue
}

// Total returns the overall number of skipped data points.
func (s SkipCounts) Total() int64 {
	return s.Histogram + s.ExponentialHistogram + s.Summary + s.InvalidValue
}

// Metadata is the small capability set shared by LogMetadata, TraceMetadata
// and MetricsMetadata.
type Metadata interface {
	ServiceName() string
	FirstTimestampNanos() int64
	RecordCount() int
}

// BaseMetadata is the concrete type embedded by each signal's metadata and
// satisfies Metadata directly; signals that need nothing extra (traces) use
// it as-is, others (metrics) wrap it with a MetricKind tag.
type BaseMetadata struct {
	Service   string
	FirstTS   int64
	NumRecord int
}

func (m BaseMetadata) ServiceName() string        { return m.Service }
func (m BaseMetadata) FirstTimestampNanos() int64 { return m.FirstTS }
func (m BaseMetadata) RecordCount() int           { return m.NumRecord }

// AggregateMetadata is the static "aggregate(service, first_ts, rows)"
// constructor shared by every signal's metadata type.
func AggregateMetadata(service string, firstTS int64, rows int) BaseMetadata {
	return BaseMetadata{Service: service, FirstTS: firstTS, NumRecord: rows}
}

// MetricsMetadata additionally carries the MetricKind the batch was split
// on, since metrics (unlike logs/traces) can produce more than one batch
// per sub-request.
type MetricsMetadata struct {
	BaseMetadata
	Kind MetricKind
}
