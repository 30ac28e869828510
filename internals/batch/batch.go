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

// Package batch implements per-(signal, service, hour_bucket) buffered
// batches, row/byte/age flush triggers, and at-most-once flush semantics.
package batch

import (
	"math"
	"time"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

const hourNanos = int64(3_600_000_000_000)

// BatchKey identifies a BufferedBatch. Kind only distinguishes metrics
// sub-batches (Gauge vs Sum); it is the zero value for logs and traces,
// where it cannot collide across Signal values.
type BatchKey struct {
	Signal  otlpdata.Signal
	Kind    otlpdata.MetricKind
	Service string
	Hour    int64
}

// hourBucket implements the BatchKey.hour_bucket rule.
func hourBucket(firstTimestampNanos int64) int64 {
	if firstTimestampNanos <= 0 {
		return 0
	}
	return firstTimestampNanos / hourNanos
}

// BatchConfig configures flush triggers and admission control.
type BatchConfig struct {
	MaxRows                    int
	MaxBytes                   int64
	MaxAge                     time.Duration
	BackpressureThresholdBytes int64
	MaxIngestBytes             int64
}

// BufferedBatch is the mutable accumulator owned exclusively by a Batcher
// for one BatchKey.
type BufferedBatch struct {
	key         BatchKey
	batches     []otlpdata.RecordBatch
	totalRows   int
	totalBytes  int64
	firstTS     int64 // math.MaxInt64 sentinel until lowered
	serviceName string
	createdAt   time.Time
}

func newBufferedBatch(key BatchKey, serviceName string, now time.Time) *BufferedBatch {
	return &BufferedBatch{
		key:         key,
		firstTS:     math.MaxInt64,
		serviceName: serviceName,
		createdAt:   now,
	}
}

// add appends a RecordBatch and folds its metadata into the running
// aggregate. Rows and bytes are monotonically non-decreasing.
func (b *BufferedBatch) add(rb otlpdata.RecordBatch, meta otlpdata.Metadata) {
	b.batches = append(b.batches, rb)
	b.totalRows += meta.RecordCount()
	b.totalBytes += int64(rb.ApproxBytes)
	if ts := meta.FirstTimestampNanos(); ts > 0 && ts < b.firstTS {
		b.firstTS = ts
	}
}

// triggered reports whether any flush trigger fires.
func (b *BufferedBatch) triggered(cfg BatchConfig, now time.Time) bool {
	if b.totalRows >= cfg.MaxRows {
		return true
	}
	if b.totalBytes >= cfg.MaxBytes {
		return true
	}
	if now.Sub(b.createdAt) >= cfg.MaxAge {
		return true
	}
	return false
}

// finalize produces an immutable CompletedBatch: first_timestamp_nanos is
// 0 if the sentinel was never lowered.
func (b *BufferedBatch) finalize() CompletedBatch {
	first := b.firstTS
	if first == math.MaxInt64 {
		first = 0
	}
	meta := otlpdata.AggregateMetadata(b.serviceName, first, b.totalRows)
	var metadata otlpdata.Metadata = meta
	if b.key.Signal == otlpdata.SignalMetrics {
		metadata = otlpdata.MetricsMetadata{BaseMetadata: meta, Kind: b.key.Kind}
	}
	return CompletedBatch{
		Key:      b.key,
		Batches:  b.batches,
		Metadata: metadata,
	}
}

// CompletedBatch is an immutable tuple produced by finalizing a
// BufferedBatch. It is owned by whoever drained it until the Writer
// consumes it.
type CompletedBatch struct {
	Key      BatchKey
	Batches  []otlpdata.RecordBatch
	Metadata otlpdata.Metadata
}

// Release frees every Arrow record held by the batch's RecordBatches.
func (c CompletedBatch) Release() {
	for _, rb := range c.Batches {
		rb.Release()
	}
}
