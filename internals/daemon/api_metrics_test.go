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

package daemon

import (
	"bytes"
	"net/http/httptest"
	"testing"

	colmetricpb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	metricpb "go.opentelemetry.io/proto/otlp/metrics/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/protobuf/proto"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smithclay/otlp2parquet/internals/telemetry"
)

func TestV1PostMetricsRecordsSkipsAndIngests(t *testing.T) {
	c := newTestCommand(t)
	telemetry.DataPointsSkippedTotal.Reset()

	msg := &colmetricpb.ExportMetricsServiceRequest{
		ResourceMetrics: []*metricpb.ResourceMetrics{{
			Resource: &resourcepb.Resource{
				Attributes: []*commonpb.KeyValue{{
					Key:   "service.name",
					Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "billing"}},
				}},
			},
			ScopeMetrics: []*metricpb.ScopeMetrics{{
				Metrics: []*metricpb.Metric{
					{
						Name: "cpu_percent",
						Data: &metricpb.Metric_Gauge{Gauge: &metricpb.Gauge{
							DataPoints: []*metricpb.NumberDataPoint{
								{Value: &metricpb.NumberDataPoint_AsDouble{AsDouble: 12.5}, TimeUnixNano: 1000},
							},
						}},
					},
					{
						Name: "latency_bucket",
						Data: &metricpb.Metric_Histogram{Histogram: &metricpb.Histogram{
							DataPoints: []*metricpb.HistogramDataPoint{{}},
						}},
					},
				},
			}},
		}},
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		t.Fatalf("proto.Marshal: %v", err)
	}

	req := httptest.NewRequest("POST", "/v1/metrics", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/x-protobuf")

	resp := v1PostMetrics(c, req)
	w := httptest.NewRecorder()
	resp.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("Code = %d, body = %s", w.Code, w.Body.String())
	}
	if got := testutil.ToFloat64(telemetry.DataPointsSkippedTotal.WithLabelValues("histogram")); got != 1 {
		t.Errorf("histogram skips = %v, want 1", got)
	}
}
