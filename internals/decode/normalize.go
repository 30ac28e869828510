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

package decode

// camelToSnake maps every camelCase OTLP JSON field name the structural
// decoder understands to its canonical snake_case form. Keys already in
// snake_case are absent from the table and pass through untouched, which is
// what makes normalizeKeys idempotent.
var camelToSnake = map[string]string{
	"resourceLogs":            "resource_logs",
	"resourceSpans":           "resource_spans",
	"resourceMetrics":         "resource_metrics",
	"scopeLogs":               "scope_logs",
	"scopeSpans":              "scope_spans",
	"scopeMetrics":            "scope_metrics",
	"logRecords":              "log_records",
	"schemaUrl":               "schema_url",
	"droppedAttributesCount":  "dropped_attributes_count",
	"droppedEventsCount":      "dropped_events_count",
	"droppedLinksCount":       "dropped_links_count",
	"timeUnixNano":            "time_unix_nano",
	"observedTimeUnixNano":    "observed_time_unix_nano",
	"startTimeUnixNano":       "start_time_unix_nano",
	"endTimeUnixNano":         "end_time_unix_nano",
	"severityNumber":          "severity_number",
	"severityText":            "severity_text",
	"traceId":                 "trace_id",
	"spanId":                  "span_id",
	"parentSpanId":            "parent_span_id",
	"traceState":              "trace_state",
	"traceFlags":              "flags",
	"stringValue":             "string_value",
	"boolValue":               "bool_value",
	"intValue":                "int_value",
	"doubleValue":             "double_value",
	"arrayValue":              "array_value",
	"kvlistValue":             "kvlist_value",
	"bytesValue":              "bytes_value",
	"instrumentationLibrary":  "scope",
	"aggregationTemporality":  "aggregation_temporality",
	"isMonotonic":             "is_monotonic",
	"asDouble":                "as_double",
	"asInt":                   "as_int",
	"dataPoints":              "data_points",
	"exponentialHistogram":    "exponential_histogram",
	"exemplars":               "exemplars",
	"spanKind":                "kind",
}

// normalizeKeys rewrites every object key in a generically-decoded JSON
// tree (map[string]any / []any / scalars, as produced by encoding/json
// unmarshaling into `any`) to its canonical form. The transformation is
// applied recursively, is idempotent, and preserves all values.
func normalizeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			canonical := k
			if snake, ok := camelToSnake[k]; ok {
				canonical = snake
			}
			out[canonical] = normalizeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = normalizeKeys(elem)
		}
		return out
	default:
		return v
	}
}
