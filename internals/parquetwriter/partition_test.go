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

package parquetwriter

import (
	"testing"
	"time"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

func fixedNow() time.Time {
	return time.Date(2023, time.November, 14, 22, 0, 0, 0, time.UTC)
}

func TestPartitionPathIsPureAndDeterministic(t *testing.T) {
	const ts = int64(1_700_000_000_000_000_000)
	p1 := PartitionPath(otlpdata.SignalLogs, otlpdata.MetricKindGauge, "api", ts, "abcdef0123456789abcdef", fixedNow)
	p2 := PartitionPath(otlpdata.SignalLogs, otlpdata.MetricKindGauge, "api", ts, "abcdef0123456789abcdef", fixedNow)
	if p1 != p2 {
		t.Fatalf("expected identical paths for identical inputs, got %q and %q", p1, p2)
	}
	want := "logs/api/year=2023/month=11/day=14/hour=22/1700000000000000000-abcdef0123456789.parquet"
	if p1 != want {
		t.Fatalf("expected %q, got %q", want, p1)
	}
}

func TestPartitionPathSanitizesServiceName(t *testing.T) {
	p := PartitionPath(otlpdata.SignalLogs, otlpdata.MetricKindGauge, "my service/v2", 0, "0123456789abcdef", fixedNow)
	want := "logs/my_service_v2/year=2023/month=11/day=14/hour=22/1699999200000000000-0123456789abcdef.parquet"
	if p != want {
		t.Fatalf("expected %q, got %q", want, p)
	}
}

func TestPartitionPathIncludesMetricKindForMetrics(t *testing.T) {
	p := PartitionPath(otlpdata.SignalMetrics, otlpdata.MetricKindSum, "api", 1_700_000_000_000_000_000, "0123456789abcdef", fixedNow)
	if got := "metrics/sum/api"; p[:len(got)] != got {
		t.Fatalf("expected path to start with %q, got %q", got, p)
	}
}

func TestPartitionPathZeroTimestampUsesWallClock(t *testing.T) {
	p := PartitionPath(otlpdata.SignalTraces, otlpdata.MetricKindGauge, "api", 0, "0123456789abcdef", fixedNow)
	want := "traces/api/year=2023/month=11/day=14/hour=22/" // timestamp portion derived from fixedNow
	if len(p) < len(want) || p[:len(want)] != want {
		t.Fatalf("expected path with wall-clock date prefix %q, got %q", want, p)
	}
}
