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

package batch

import (
	"fmt"
	"time"

	"github.com/smithclay/otlp2parquet/internals/ingesterr"
	"github.com/smithclay/otlp2parquet/internals/otlpdata"
	"github.com/smithclay/otlp2parquet/internals/splitter"
)

// nowFn is overridden in tests for deterministic age-trigger behavior.
var nowFn = time.Now

// Batcher is not internally thread-safe: it is owned by exactly one
// execution context at a time. Parallel ingest shards by BatchKey at a
// layer above this package (internals/dispatch).
type Batcher struct {
	cfg               BatchConfig
	buffers           map[BatchKey]*BufferedBatch
	pendingTotalBytes int64
	dedup             *Dedup
}

// New returns an empty Batcher configured per cfg.
func New(cfg BatchConfig) *Batcher {
	return &Batcher{
		cfg:     cfg,
		buffers: make(map[BatchKey]*BufferedBatch),
		dedup:   NewDedup(),
	}
}

// IngestResult is the (ready, aggregated_request_metadata) pair the
// ingest operation returns.
type IngestResult struct {
	Ready           []CompletedBatch
	RecordsAccepted int
}

// Ingest converts req, buffers it under its BatchKey, and flushes if a
// trigger fires.
func (b *Batcher) Ingest(req *otlpdata.SignalRequest, idempotencyKey string) (IngestResult, error) {
	if idempotencyKey != "" && b.dedup.Contains(idempotencyKey) {
		return IngestResult{}, nil
	}

	if size := otlpdata.EncodedLen(req); size > b.cfg.MaxIngestBytes {
		return IngestResult{}, ingesterr.New(ingesterr.PayloadTooLarge,
			fmt.Sprintf("request of %d bytes exceeds max_ingest_bytes %d", size, b.cfg.MaxIngestBytes))
	}

	if b.pendingTotalBytes >= b.cfg.BackpressureThresholdBytes {
		return IngestResult{}, ingesterr.New(ingesterr.Backpressure,
			fmt.Sprintf("pending_total_bytes %d has reached backpressure_threshold_bytes %d", b.pendingTotalBytes, b.cfg.BackpressureThresholdBytes))
	}

	now := nowFn()
	var ready []CompletedBatch

	for _, sub := range splitter.SplitByService(req) {
		results, err := convert(sub)
		if err != nil {
			return IngestResult{}, ingesterr.Wrap(ingesterr.TransformationError, "transform failed", err)
		}
		for _, res := range results {
			if res.Metadata.RecordCount() == 0 {
				// No record was actually added for this sub-request/kind; an empty
				// buffer must never be stored.
				res.Batch.Release()
				continue
			}
			kind := res.Batch.Kind
			key := BatchKey{
				Signal:  req.Signal,
				Kind:    kind,
				Service: res.Metadata.ServiceName(),
				Hour:    hourBucket(res.Metadata.FirstTimestampNanos()),
			}

			buf, ok := b.buffers[key]
			if !ok {
				buf = newBufferedBatch(key, res.Metadata.ServiceName(), now)
				b.buffers[key] = buf
			}
			buf.add(res.Batch, res.Metadata)
			b.pendingTotalBytes += int64(res.Batch.ApproxBytes)

			if buf.triggered(b.cfg, now) {
				delete(b.buffers, key)
				b.pendingTotalBytes -= buf.totalBytes
				ready = append(ready, buf.finalize())
			}
		}
	}

	b.dedup.Record(idempotencyKey)

	return IngestResult{Ready: ready, RecordsAccepted: req.RecordCount()}, nil
}

// DrainExpired removes and finalizes every buffer whose age exceeds
// max_age. This is the only time-based path; callers invoke it from a
// periodic driver (internals/dispatch).
func (b *Batcher) DrainExpired() []CompletedBatch {
	now := nowFn()
	var drained []CompletedBatch
	for key, buf := range b.buffers {
		if now.Sub(buf.createdAt) >= b.cfg.MaxAge {
			delete(b.buffers, key)
			b.pendingTotalBytes -= buf.totalBytes
			drained = append(drained, buf.finalize())
		}
	}
	return drained
}

// DrainAll finalizes every non-empty buffer and empties the map. Used at
// shutdown; a second call returns an empty slice.
func (b *Batcher) DrainAll() []CompletedBatch {
	if len(b.buffers) == 0 {
		return nil
	}
	drained := make([]CompletedBatch, 0, len(b.buffers))
	for key, buf := range b.buffers {
		delete(b.buffers, key)
		drained = append(drained, buf.finalize())
	}
	b.pendingTotalBytes = 0
	return drained
}

// PendingTotalBytes reports the current admission-control scalar.
func (b *Batcher) PendingTotalBytes() int64 { return b.pendingTotalBytes }

// BufferCount reports the number of active (unflushed) buffers, used by
// tests asserting on buffer-map contents.
func (b *Batcher) BufferCount() int { return len(b.buffers) }
