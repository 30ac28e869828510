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

// Package transform converts a decoded, per-service SignalRequest into
// Arrow RecordBatches against the fixed schema for its signal.
// Transformation never fails: malformed nested values are coerced to
// strings, malformed trace context is replaced with zero bytes.
package transform

import (
	"time"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
	"github.com/smithclay/otlp2parquet/internals/otlpschema"
)

// Result pairs a produced RecordBatch with the metadata describing it. For
// logs and traces there is always exactly one Result; for metrics there is
// one per MetricKind actually observed (Gauge and Sum only).
type Result struct {
	Batch    otlpdata.RecordBatch
	Metadata otlpdata.Metadata
}

var allocator = memory.NewGoAllocator()

// zeroBytes returns n zero bytes, used whenever trace/span context is
// absent or malformed: transform never fails on bad trace context.
func zeroBytes(n int) []byte {
	return make([]byte, n)
}

// fixedID returns raw when it is exactly n bytes long, and n zero bytes
// otherwise (empty or any other wrong length).
func fixedID(raw []byte, n int) []byte {
	if len(raw) != n {
		return zeroBytes(n)
	}
	return raw
}

// resourceFields splits a resource attribute map into the three dedicated
// identity fields and the remaining generic attribute map. Attributes whose
// keys are in the extracted set are omitted from the remaining map.
type resourceFields struct {
	ServiceName string
	Namespace   string
	InstanceID  string
	Remaining   otlpdata.Attributes
}

func splitResourceAttrs(attrs otlpdata.Attributes) resourceFields {
	rf := resourceFields{
		ServiceName: otlpdata.ServiceName(attrs),
		Remaining:   make(otlpdata.Attributes, len(attrs)),
	}
	for k, v := range attrs {
		switch k {
		case otlpdata.AttrServiceName:
			// already captured in ServiceName
		case otlpdata.AttrServiceNamespace:
			rf.Namespace = v
		case otlpdata.AttrServiceInstance:
			rf.InstanceID = v
		default:
			rf.Remaining[k] = v
		}
	}
	return rf
}

func appendNullableString(b *array.StringBuilder, v string, present bool) {
	if !present || v == "" {
		b.AppendNull()
		return
	}
	b.Append(v)
}

func appendStringMap(b *array.MapBuilder, attrs otlpdata.Attributes) {
	b.Append(true)
	keyB := b.KeyBuilder().(*array.StringBuilder)
	valB := b.ItemBuilder().(*array.StringBuilder)
	for k, v := range attrs {
		keyB.Append(k)
		valB.Append(v)
	}
}

func appendCommonResourceScope(rb *array.RecordBuilder, startIdx int, rf resourceFields, scopeName, scopeVersion string) int {
	i := startIdx
	rb.Field(i).(*array.StringBuilder).Append(rf.ServiceName)
	i++
	appendNullableString(rb.Field(i).(*array.StringBuilder), rf.Namespace, rf.Namespace != "")
	i++
	appendNullableString(rb.Field(i).(*array.StringBuilder), rf.InstanceID, rf.InstanceID != "")
	i++
	rb.Field(i).(*array.StringBuilder).Append(scopeName)
	i++
	appendNullableString(rb.Field(i).(*array.StringBuilder), scopeVersion, scopeVersion != "")
	i++
	appendStringMap(rb.Field(i).(*array.MapBuilder), rf.Remaining)
	i++
	return i
}

// minNonZero tracks the running minimum of non-zero timestamps, used for
// metadata aggregation.
type minNonZero struct {
	value int64
	set   bool
}

func (m *minNonZero) observe(ts int64) {
	if ts <= 0 {
		return
	}
	if !m.set || ts < m.value {
		m.value = ts
		m.set = true
	}
}

func (m *minNonZero) result() int64 {
	if !m.set {
		return 0
	}
	return m.value
}

// wallClockNanos is overridden in tests to produce deterministic output for
// zero-timestamp substitution.
var wallClockNanos = func() int64 { return time.Now().UnixNano() }
