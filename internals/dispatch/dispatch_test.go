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

package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smithclay/otlp2parquet/internals/batch"
	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

type memSink struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemSink() *memSink { return &memSink{objects: make(map[string][]byte)} }

func (s *memSink) Write(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return nil
}

func (s *memSink) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for k := range s.objects {
		out = append(out, k)
	}
	return out, nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func logsRequest(service string, n int) *otlpdata.SignalRequest {
	records := make([]otlpdata.Record, n)
	for i := range records {
		records[i] = otlpdata.Record{Body: "line"}
	}
	return &otlpdata.SignalRequest{
		Signal: otlpdata.SignalLogs,
		ResourceGroups: []otlpdata.ResourceGroup{
			{
				ResourceAttributes: otlpdata.Attributes{"service.name": service},
				Scopes:             []otlpdata.ScopeGroup{{Records: records}},
			},
		},
	}
}

func smallConfig() batch.BatchConfig {
	return batch.BatchConfig{
		MaxRows:                    2,
		MaxBytes:                   1 << 30,
		MaxAge:                     time.Hour,
		BackpressureThresholdBytes: 1 << 30,
		MaxIngestBytes:             1 << 30,
	}
}

func TestIngestRoutesDifferentServicesIndependently(t *testing.T) {
	sink := newMemSink()
	d := New(smallConfig(), sink, 4, time.Hour)

	if _, err := d.Ingest(context.Background(), logsRequest("api", 1), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := d.Ingest(context.Background(), logsRequest("worker", 1), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Neither service has hit MaxRows=2 yet, so nothing should be persisted.
	if sink.count() != 0 {
		t.Fatalf("expected no persisted objects yet, got %d", sink.count())
	}
}

func TestIngestFlushesAtRowBoundaryAndPersists(t *testing.T) {
	sink := newMemSink()
	d := New(smallConfig(), sink, 4, time.Hour)

	if _, err := d.Ingest(context.Background(), logsRequest("api", 1), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := d.Ingest(context.Background(), logsRequest("api", 1), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Partitions) != 1 {
		t.Fatalf("expected 1 partition written at the row boundary, got %d", len(result.Partitions))
	}
	if sink.count() != 1 {
		t.Fatalf("expected 1 persisted object, got %d", sink.count())
	}
}

func TestStopFlushesRemainingBuffers(t *testing.T) {
	sink := newMemSink()
	d := New(smallConfig(), sink, 4, time.Hour)
	d.Start()

	if _, err := d.Ingest(context.Background(), logsRequest("api", 1), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.count() != 0 {
		t.Fatalf("expected nothing persisted before shutdown, got %d", sink.count())
	}

	d.Stop()

	if sink.count() != 1 {
		t.Fatalf("expected drain_all on Stop to persist the remaining buffer, got %d", sink.count())
	}
}
