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
	"context"
	"sync"
	"testing"
	"time"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/smithclay/otlp2parquet/internals/batch"
	"github.com/smithclay/otlp2parquet/internals/otlpdata"
	"github.com/smithclay/otlp2parquet/internals/otlpschema"
)

// memSink is an in-memory storage.Sink used only by tests.
type memSink struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemSink() *memSink { return &memSink{objects: make(map[string][]byte)} }

func (s *memSink) Write(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[path] = cp
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

func oneRowLogsBatch(t *testing.T) batch.CompletedBatch {
	t.Helper()
	rb := array.NewRecordBuilder(memory.NewGoAllocator(), otlpschema.Logs)
	defer rb.Release()
	for i := 0; i < rb.Schema().NumFields(); i++ {
		rb.Field(i).AppendNull()
	}
	rec := rb.NewRecord()

	return batch.CompletedBatch{
		Key: batch.BatchKey{Signal: otlpdata.SignalLogs, Service: "api", Hour: 472222},
		Batches: []otlpdata.RecordBatch{
			{Signal: otlpdata.SignalLogs, Record: rec, ApproxBytes: otlpdata.ApproxBytesOf(rec)},
		},
		Metadata: otlpdata.AggregateMetadata("api", 1_700_000_000_000_000_000, 1),
	}
}

func TestWriteIsDeterministicAcrossIdenticalInputs(t *testing.T) {
	sink := newMemSink()
	Now = fixedNow
	defer func() { Now = time.Now }()

	obj1, err := Write(context.Background(), sink, oneRowLogsBatch(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj2, err := Write(context.Background(), sink, oneRowLogsBatch(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if obj1.Path != obj2.Path {
		t.Fatalf("expected identical paths for identical batches, got %q and %q", obj1.Path, obj2.Path)
	}
	if obj1.ContentHash != obj2.ContentHash {
		t.Fatalf("expected identical content hashes, got %q and %q", obj1.ContentHash, obj2.ContentHash)
	}
	if string(sink.objects[obj1.Path]) != string(sink.objects[obj2.Path]) {
		t.Fatalf("expected identical persisted bytes")
	}
}
