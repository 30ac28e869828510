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
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
	"github.com/smithclay/otlp2parquet/internals/otlpschema"
)

// ConvertTraces always produces exactly one output batch.
func ConvertTraces(req *otlpdata.SignalRequest) (Result, error) {
	rb := array.NewRecordBuilder(allocator, otlpschema.Traces)
	defer rb.Release()

	var ts minNonZero
	rows := 0
	now := wallClockNanos()

	for _, rg := range req.ResourceGroups {
		rf := splitResourceAttrs(rg.ResourceAttributes)
		for _, sg := range rg.Scopes {
			for _, rec := range sg.Records {
				rows++
				ts.observe(rec.TimestampNanos)

				start := rec.TimestampNanos
				if start == 0 {
					start = now
				}
				end := rec.ObservedTimestampNanos
				if end == 0 {
					end = start
				}

				rb.Field(0).(*array.TimestampBuilder).Append(arrow.Timestamp(start))
				rb.Field(1).(*array.TimestampBuilder).Append(arrow.Timestamp(end))
				rb.Field(2).(*array.FixedSizeBinaryBuilder).Append(fixedID(rec.TraceID, 16))
				rb.Field(3).(*array.FixedSizeBinaryBuilder).Append(fixedID(rec.SpanID, 8))
				rb.Field(4).(*array.FixedSizeBinaryBuilder).Append(fixedID(rec.ParentSpanID, 8))
				rb.Field(5).(*array.StringBuilder).Append(rec.SpanName)

				idx := appendCommonResourceScope(rb, 6, rf, sg.ScopeName, sg.ScopeVersion)
				appendStringMap(rb.Field(idx).(*array.MapBuilder), rec.Attributes)
			}
		}
	}

	rec := rb.NewRecord()
	batch := otlpdata.RecordBatch{
		Signal:      otlpdata.SignalTraces,
		Record:      rec,
		ApproxBytes: otlpdata.ApproxBytesOf(rec),
	}
	meta := otlpdata.AggregateMetadata(firstServiceName(req), ts.result(), rows)
	return Result{Batch: batch, Metadata: meta}, nil
}
