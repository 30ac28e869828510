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
	"testing"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"

	"github.com/smithclay/otlp2parquet/internals/ingesterr"
	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

func sampleLogsRequest() *collogspb.ExportLogsServiceRequest {
	return &collogspb.ExportLogsServiceRequest{
		ResourceLogs: []*logspb.ResourceLogs{{
			Resource: &resourcepb.Resource{
				Attributes: []*commonpb.KeyValue{
					{Key: "service.name", Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "checkout"}}},
				},
			},
			ScopeLogs: []*logspb.ScopeLogs{{
				Scope: &commonpb.InstrumentationScope{Name: "checkout-lib", Version: "1.0"},
				LogRecords: []*logspb.LogRecord{{
					TimeUnixNano: 1_700_000_000_000_000_000,
					Body:         &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "order placed"}},
					SeverityText: "INFO",
				}},
			}},
		}},
	}
}

func TestDecodeLogsProtobuf(t *testing.T) {
	data, err := proto.Marshal(sampleLogsRequest())
	if err != nil {
		t.Fatalf("proto.Marshal: %v", err)
	}

	req, err := DecodeLogs(data, FormatProtobuf)
	if err != nil {
		t.Fatalf("DecodeLogs: %v", err)
	}
	if req.Signal != otlpdata.SignalLogs {
		t.Errorf("Signal = %v, want SignalLogs", req.Signal)
	}
	if req.RecordCount() != 1 {
		t.Fatalf("RecordCount = %d, want 1", req.RecordCount())
	}
	service := otlpdata.ServiceName(req.ResourceGroups[0].ResourceAttributes)
	if service != "checkout" {
		t.Errorf("service = %q, want checkout", service)
	}
	rec := req.ResourceGroups[0].Scopes[0].Records[0]
	if rec.Body != "order placed" || rec.SeverityText != "INFO" {
		t.Errorf("record = %+v, unexpected fields", rec)
	}
}

func TestDecodeLogsJSONL(t *testing.T) {
	single, err := protojson.Marshal(sampleLogsRequest())
	if err != nil {
		t.Fatalf("protojson.Marshal: %v", err)
	}
	payload := append(append([]byte{}, single...), '\n')
	payload = append(payload, single...)

	req, err := DecodeLogs(payload, FormatJSONL)
	if err != nil {
		t.Fatalf("DecodeLogs: %v", err)
	}
	if req.RecordCount() != 2 {
		t.Errorf("RecordCount = %d, want 2 (two JSONL lines)", req.RecordCount())
	}
}

func TestDecodeLogsEmptyJSONL(t *testing.T) {
	_, err := DecodeLogs([]byte("\n\n   \n"), FormatJSONL)
	if ingesterr.KindOf(err) != ingesterr.EmptyJsonl {
		t.Errorf("KindOf(err) = %v, want EmptyJsonl", ingesterr.KindOf(err))
	}
}

func TestDecodeLogsInvalidProtobuf(t *testing.T) {
	_, err := DecodeLogs([]byte{0xff, 0xff, 0xff}, FormatProtobuf)
	if ingesterr.KindOf(err) != ingesterr.InvalidPayload {
		t.Errorf("KindOf(err) = %v, want InvalidPayload", ingesterr.KindOf(err))
	}
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"application/x-protobuf":       FormatProtobuf,
		"application/json":             FormatJSON,
		"application/x-ndjson":         FormatJSONL,
		"application/jsonl":            FormatJSONL,
		"":                             FormatProtobuf,
		"text/plain; charset=us-ascii": FormatProtobuf,
	}
	for ct, want := range cases {
		if got := DetectFormat(ct); got != want {
			t.Errorf("DetectFormat(%q) = %v, want %v", ct, got, want)
		}
	}
}
