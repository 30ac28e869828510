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

import (
	"google.golang.org/protobuf/proto"

	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

// DecodeTraces decodes the Traces signal.
func DecodeTraces(data []byte, format Format) (*otlpdata.SignalRequest, error) {
	switch format {
	case FormatProtobuf:
		msg := &coltracepb.ExportTraceServiceRequest{}
		if err := proto.Unmarshal(data, msg); err != nil {
			return nil, invalidPayload("traces protobuf", err)
		}
		return tracesFromProto(msg), nil
	case FormatJSON:
		msg := &coltracepb.ExportTraceServiceRequest{}
		if err := unmarshalNormalizedJSON(data, msg); err != nil {
			return nil, err
		}
		return tracesFromProto(msg), nil
	case FormatJSONL:
		acc := &coltracepb.ExportTraceServiceRequest{}
		seenLine, err := decodeJSONLInto(data, func(line []byte) error {
			msg := &coltracepb.ExportTraceServiceRequest{}
			if err := unmarshalNormalizedJSON(line, msg); err != nil {
				return err
			}
			acc.ResourceSpans = append(acc.ResourceSpans, msg.ResourceSpans...)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !seenLine {
			return nil, ingesterrEmptyJsonl()
		}
		return tracesFromProto(acc), nil
	default:
		return nil, invalidPayload("traces", errUnknownFormat)
	}
}

func tracesFromProto(msg *coltracepb.ExportTraceServiceRequest) *otlpdata.SignalRequest {
	req := &otlpdata.SignalRequest{Signal: otlpdata.SignalTraces}
	for _, rs := range msg.ResourceSpans {
		rg := otlpdata.ResourceGroup{ResourceAttributes: attrsFromKV(rs.GetResource().GetAttributes())}
		for _, ss := range rs.ScopeSpans {
			sg := otlpdata.ScopeGroup{
				ScopeName:    ss.GetScope().GetName(),
				ScopeVersion: ss.GetScope().GetVersion(),
			}
			for _, span := range ss.Spans {
				sg.Records = append(sg.Records, spanToRecord(span))
			}
			rg.Scopes = append(rg.Scopes, sg)
		}
		req.ResourceGroups = append(req.ResourceGroups, rg)
	}
	return req
}

// spanToRecord stores the span end time in ObservedTimestampNanos, which is
// otherwise a logs-only field; ConvertTraces reads it back as EndTimestamp.
func spanToRecord(span *tracepb.Span) otlpdata.Record {
	return otlpdata.Record{
		TimestampNanos:         int64(span.StartTimeUnixNano),
		ObservedTimestampNanos: int64(span.EndTimeUnixNano),
		Attributes:             attrsFromKV(span.Attributes),
		SpanName:               span.Name,
		TraceID:                span.TraceId,
		SpanID:                 span.SpanId,
		ParentSpanID:           span.ParentSpanId,
		TraceFlags:             span.Flags,
	}
}
