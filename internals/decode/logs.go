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

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

// DecodeLogs decodes the Logs signal.
func DecodeLogs(data []byte, format Format) (*otlpdata.SignalRequest, error) {
	switch format {
	case FormatProtobuf:
		msg := &collogspb.ExportLogsServiceRequest{}
		if err := proto.Unmarshal(data, msg); err != nil {
			return nil, invalidPayload("logs protobuf", err)
		}
		return logsFromProto(msg), nil
	case FormatJSON:
		msg := &collogspb.ExportLogsServiceRequest{}
		if err := unmarshalNormalizedJSON(data, msg); err != nil {
			return nil, err
		}
		return logsFromProto(msg), nil
	case FormatJSONL:
		acc := &collogspb.ExportLogsServiceRequest{}
		seenLine, err := decodeJSONLInto(data, func(line []byte) error {
			msg := &collogspb.ExportLogsServiceRequest{}
			if err := unmarshalNormalizedJSON(line, msg); err != nil {
				return err
			}
			acc.ResourceLogs = append(acc.ResourceLogs, msg.ResourceLogs...)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !seenLine {
			return nil, ingesterrEmptyJsonl()
		}
		return logsFromProto(acc), nil
	default:
		return nil, invalidPayload("logs", errUnknownFormat)
	}
}

func logsFromProto(msg *collogspb.ExportLogsServiceRequest) *otlpdata.SignalRequest {
	req := &otlpdata.SignalRequest{Signal: otlpdata.SignalLogs}
	for _, rl := range msg.ResourceLogs {
		rg := otlpdata.ResourceGroup{ResourceAttributes: attrsFromKV(rl.GetResource().GetAttributes())}
		for _, sl := range rl.ScopeLogs {
			sg := otlpdata.ScopeGroup{
				ScopeName:    sl.GetScope().GetName(),
				ScopeVersion: sl.GetScope().GetVersion(),
			}
			for _, lr := range sl.LogRecords {
				sg.Records = append(sg.Records, logRecordToRecord(lr))
			}
			rg.Scopes = append(rg.Scopes, sg)
		}
		req.ResourceGroups = append(req.ResourceGroups, rg)
	}
	return req
}

func logRecordToRecord(lr *logspb.LogRecord) otlpdata.Record {
	return otlpdata.Record{
		TimestampNanos:         int64(lr.TimeUnixNano),
		ObservedTimestampNanos: int64(lr.ObservedTimeUnixNano),
		Attributes:             attrsFromKV(lr.Attributes),
		Body:                   anyValueToString(lr.Body),
		SeverityText:           lr.SeverityText,
		SeverityNumber:         int32(lr.SeverityNumber),
		TraceID:                lr.TraceId,
		SpanID:                 lr.SpanId,
		TraceFlags:             lr.Flags,
	}
}
