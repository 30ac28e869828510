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
	"math"

	"google.golang.org/protobuf/proto"

	colmetricpb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	metricpb "go.opentelemetry.io/proto/otlp/metrics/v1"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

// DecodeMetrics decodes the Metrics signal. Unlike logs and traces, the
// metrics decoder filters down to the supported kinds
// (Gauge, Sum) and tallies everything it drops in the returned SkipCounts,
// rather than letting unsupported data reach the transformer at all.
func DecodeMetrics(data []byte, format Format) (*otlpdata.SignalRequest, otlpdata.SkipCounts, error) {
	switch format {
	case FormatProtobuf:
		msg := &colmetricpb.ExportMetricsServiceRequest{}
		if err := proto.Unmarshal(data, msg); err != nil {
			return nil, otlpdata.SkipCounts{}, invalidPayload("metrics protobuf", err)
		}
		return metricsFromProto(msg)
	case FormatJSON:
		msg := &colmetricpb.ExportMetricsServiceRequest{}
		if err := unmarshalNormalizedJSON(data, msg); err != nil {
			return nil, otlpdata.SkipCounts{}, err
		}
		return metricsFromProto(msg)
	case FormatJSONL:
		acc := &colmetricpb.ExportMetricsServiceRequest{}
		seenLine, err := decodeJSONLInto(data, func(line []byte) error {
			msg := &colmetricpb.ExportMetricsServiceRequest{}
			if err := unmarshalNormalizedJSON(line, msg); err != nil {
				return err
			}
			acc.ResourceMetrics = append(acc.ResourceMetrics, msg.ResourceMetrics...)
			return nil
		})
		if err != nil {
			return nil, otlpdata.SkipCounts{}, err
		}
		if !seenLine {
			return nil, otlpdata.SkipCounts{}, ingesterrEmptyJsonl()
		}
		return metricsFromProto(acc)
	default:
		return nil, otlpdata.SkipCounts{}, invalidPayload("metrics", errUnknownFormat)
	}
}

func metricsFromProto(msg *colmetricpb.ExportMetricsServiceRequest) (*otlpdata.SignalRequest, otlpdata.SkipCounts, error) {
	req := &otlpdata.SignalRequest{Signal: otlpdata.SignalMetrics}
	var skip otlpdata.SkipCounts

	for _, rm := range msg.ResourceMetrics {
		rg := otlpdata.ResourceGroup{ResourceAttributes: attrsFromKV(rm.GetResource().GetAttributes())}
		for _, sm := range rm.ScopeMetrics {
			sg := otlpdata.ScopeGroup{
				ScopeName:    sm.GetScope().GetName(),
				ScopeVersion: sm.GetScope().GetVersion(),
			}
			for _, metric := range sm.Metrics {
				metricToRecords(metric, &sg, &skip)
			}
			if len(sg.Records) > 0 {
				rg.Scopes = append(rg.Scopes, sg)
			}
		}
		if len(rg.Scopes) > 0 {
			req.ResourceGroups = append(req.ResourceGroups, rg)
		}
	}
	return req, skip, nil
}

// metricToRecords appends one Record per supported-kind data point to sg,
// and tallies everything else in skip.
func metricToRecords(metric *metricpb.Metric, sg *otlpdata.ScopeGroup, skip *otlpdata.SkipCounts) {
	switch data := metric.Data.(type) {
	case *metricpb.Metric_Gauge:
		for _, dp := range data.Gauge.GetDataPoints() {
			appendNumberDataPoint(metric, dp, otlpdata.MetricKindGauge, sg, skip)
		}
	case *metricpb.Metric_Sum:
		for _, dp := range data.Sum.GetDataPoints() {
			appendNumberDataPoint(metric, dp, otlpdata.MetricKindSum, sg, skip)
		}
	case *metricpb.Metric_Histogram:
		skip.Histogram += int64(len(data.Histogram.GetDataPoints()))
	case *metricpb.Metric_ExponentialHistogram:
		skip.ExponentialHistogram += int64(len(data.ExponentialHistogram.GetDataPoints()))
	case *metricpb.Metric_Summary:
		skip.Summary += int64(len(data.Summary.GetDataPoints()))
	}
}

func appendNumberDataPoint(metric *metricpb.Metric, dp *metricpb.NumberDataPoint, kind otlpdata.MetricKind, sg *otlpdata.ScopeGroup, skip *otlpdata.SkipCounts) {
	var value float64
	switch v := dp.Value.(type) {
	case *metricpb.NumberDataPoint_AsDouble:
		value = v.AsDouble
	case *metricpb.NumberDataPoint_AsInt:
		value = float64(v.AsInt)
	default:
		skip.InvalidValue++
		return
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		skip.InvalidValue++
		return
	}

	ts := int64(dp.TimeUnixNano)
	if ts == 0 {
		ts = int64(dp.StartTimeUnixNano)
	}
	sg.Records = append(sg.Records, otlpdata.Record{
		TimestampNanos:    ts,
		Attributes:        attrsFromKV(dp.Attributes),
		MetricName:        metric.Name,
		MetricUnit:        metric.Unit,
		MetricDescription: metric.Description,
		MetricKind:        kind,
		Value:             value,
	})
}
