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

type kindAccumulator struct {
	rb   *array.RecordBuilder
	rows int
	ts   minNonZero
}

// ConvertMetrics produces one batch per MetricKind actually observed
// (Gauge and Sum only — the decoder never emits Records for unsupported
// kinds, it only counts them).
func ConvertMetrics(req *otlpdata.SignalRequest) ([]Result, error) {
	acc := make(map[otlpdata.MetricKind]*kindAccumulator)
	order := make([]otlpdata.MetricKind, 0, 2)

	for _, rg := range req.ResourceGroups {
		rf := splitResourceAttrs(rg.ResourceAttributes)
		for _, sg := range rg.Scopes {
			for _, rec := range sg.Records {
				if !rec.MetricKind.Supported() {
					continue
				}
				a, ok := acc[rec.MetricKind]
				if !ok {
					schema := otlpschema.Gauge
					if rec.MetricKind == otlpdata.MetricKindSum {
						schema = otlpschema.Sum
					}
					a = &kindAccumulator{rb: array.NewRecordBuilder(allocator, schema)}
					acc[rec.MetricKind] = a
					order = append(order, rec.MetricKind)
				}
				a.rows++
				a.ts.observe(rec.TimestampNanos)

				tsVal := rec.TimestampNanos
				a.rb.Field(0).(*array.TimestampBuilder).Append(arrow.Timestamp(tsVal))
				a.rb.Field(1).(*array.StringBuilder).Append(rec.MetricName)
				appendNullableString(a.rb.Field(2).(*array.StringBuilder), rec.MetricUnit, rec.MetricUnit != "")
				appendNullableString(a.rb.Field(3).(*array.StringBuilder), rec.MetricDescription, rec.MetricDescription != "")
				a.rb.Field(4).(*array.Float64Builder).Append(rec.Value)

				idx := appendCommonResourceScope(a.rb, 5, rf, sg.ScopeName, sg.ScopeVersion)
				appendStringMap(a.rb.Field(idx).(*array.MapBuilder), rec.Attributes)
			}
		}
	}

	results := make([]Result, 0, len(order))
	for _, kind := range order {
		a := acc[kind]
		rec := a.rb.NewRecord()
		a.rb.Release()
		batch := otlpdata.RecordBatch{
			Signal:      otlpdata.SignalMetrics,
			Kind:        kind,
			Record:      rec,
			ApproxBytes: otlpdata.ApproxBytesOf(rec),
		}
		meta := otlpdata.MetricsMetadata{
			BaseMetadata: otlpdata.AggregateMetadata(firstServiceName(req), a.ts.result(), a.rows),
			Kind:         kind,
		}
		results = append(results, Result{Batch: batch, Metadata: meta})
	}
	return results, nil
}
