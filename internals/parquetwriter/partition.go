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
	"fmt"
	"strings"
	"time"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

// sanitizeService replaces every character that is not ASCII alphanumeric,
// '-' or '_' with '_'.
func sanitizeService(service string) string {
	var b strings.Builder
	b.Grow(len(service))
	for _, r := range service {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func signalDir(signal otlpdata.Signal) string {
	switch signal {
	case otlpdata.SignalLogs:
		return "logs"
	case otlpdata.SignalTraces:
		return "traces"
	case otlpdata.SignalMetrics:
		return "metrics"
	default:
		return "unknown"
	}
}

// PartitionPath builds the Hive-style partition path. It is a pure
// function of its inputs: identical arguments always produce an identical
// path.
func PartitionPath(signal otlpdata.Signal, kind otlpdata.MetricKind, service string, firstTimestampNanos int64, hashHex string, now func() time.Time) string {
	ts := firstTimestampNanos
	if ts == 0 {
		ts = now().UnixNano()
	}
	t := time.Unix(0, ts).UTC()

	segments := []string{signalDir(signal)}
	if signal == otlpdata.SignalMetrics {
		segments = append(segments, kind.String())
	}
	segments = append(segments, sanitizeService(service))

	prefix := strings.Join(segments, "/")
	hashPrefix := hashHex
	if len(hashPrefix) > 16 {
		hashPrefix = hashPrefix[:16]
	}

	return fmt.Sprintf("%s/year=%04d/month=%02d/day=%02d/hour=%02d/%d-%s.parquet",
		prefix, t.Year(), t.Month(), t.Day(), t.Hour(), ts, hashPrefix)
}
