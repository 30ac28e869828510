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

// Package dispatch turns the single-owner-per-Batcher model into a
// runnable service: a fixed set of shards, each owning one
// internals/batch.Batcher, selected by hashing (signal, service). A
// background loop periodically drains batches that crossed their max-age
// trigger; drain_all runs once on graceful shutdown.
package dispatch

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"gopkg.in/tomb.v2"

	"github.com/smithclay/otlp2parquet/internals/batch"
	"github.com/smithclay/otlp2parquet/internals/logger"
	"github.com/smithclay/otlp2parquet/internals/otlpdata"
	"github.com/smithclay/otlp2parquet/internals/parquetwriter"
	"github.com/smithclay/otlp2parquet/internals/splitter"
	"github.com/smithclay/otlp2parquet/internals/storage"
	"github.com/smithclay/otlp2parquet/internals/telemetry"
)

const defaultNumShards = 16

// shard owns one Batcher. It is only ever touched while mu is held; the
// Batcher itself is not safe for concurrent use (internals/batch doc).
type shard struct {
	mu      sync.Mutex
	batcher *batch.Batcher
}

// Dispatcher routes incoming requests to a shard's Batcher by hashing
// (signal, service name), and periodically drains age-triggered batches
// to the storage sink.
type Dispatcher struct {
	cfg      batch.BatchConfig
	sink     storage.Sink
	shards   []*shard
	interval time.Duration
	t        tomb.Tomb
}

// New builds a Dispatcher with numShards shards, each running its own
// Batcher configured by cfg. If numShards <= 0, defaultNumShards is used.
// If interval <= 0, it defaults to cfg.MaxAge/2, floored at one second.
func New(cfg batch.BatchConfig, sink storage.Sink, numShards int, interval time.Duration) *Dispatcher {
	if numShards <= 0 {
		numShards = defaultNumShards
	}
	if interval <= 0 {
		interval = cfg.MaxAge / 2
		if interval < time.Second {
			interval = time.Second
		}
	}
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = &shard{batcher: batch.New(cfg)}
	}
	return &Dispatcher{cfg: cfg, sink: sink, shards: shards, interval: interval}
}

func (d *Dispatcher) shardFor(signal otlpdata.Signal, service string) *shard {
	h := fnv.New32a()
	h.Write([]byte(service))
	idx := (int(h.Sum32()) + int(signal)) % len(d.shards)
	if idx < 0 {
		idx += len(d.shards)
	}
	return d.shards[idx]
}

// IngestResult aggregates the outcome of routing one SignalRequest across
// possibly several shards (the request may carry more than one service).
type IngestResult struct {
	RecordsAccepted int
	Partitions      []string
}

// Ingest splits req by service, routes each sub-request to its shard, and
// persists any batches the ingest triggers a flush for.
func (d *Dispatcher) Ingest(ctx context.Context, req *otlpdata.SignalRequest, idempotencyKey string) (IngestResult, error) {
	var result IngestResult
	subs := splitter.SplitByService(req)
	multi := len(subs) > 1

	for _, sub := range subs {
		service := "unknown"
		if len(sub.ResourceGroups) > 0 {
			service = otlpdata.ServiceName(sub.ResourceGroups[0].ResourceAttributes)
		}

		key := idempotencyKey
		if multi && key != "" {
			// Each sub-request is a distinct slice of the original payload;
			// suffix the key so retries still dedup but siblings don't
			// collide with each other.
			key = key + ":" + service
		}

		sh := d.shardFor(req.Signal, service)
		sh.mu.Lock()
		ingestResult, err := sh.batcher.Ingest(sub, key)
		sh.mu.Unlock()
		if err != nil {
			return result, err
		}

		result.RecordsAccepted += ingestResult.RecordsAccepted
		telemetry.RecordsAcceptedTotal.WithLabelValues(req.Signal.String(), service).Add(float64(ingestResult.RecordsAccepted))
		for _, completed := range ingestResult.Ready {
			obj, err := parquetwriter.Write(ctx, d.sink, completed)
			if err != nil {
				return result, err
			}
			telemetry.PartitionsWrittenTotal.Inc()
			result.Partitions = append(result.Partitions, obj.Path)
		}
	}
	return result, nil
}

// Start launches the background age-drain loop.
func (d *Dispatcher) Start() {
	d.t.Go(func() error {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.drainExpired()
				telemetry.PendingBytes.Set(float64(d.pendingBytes()))
			case <-d.t.Dying():
				return nil
			}
		}
	})
}

func (d *Dispatcher) drainExpired() {
	for _, sh := range d.shards {
		sh.mu.Lock()
		completed := sh.batcher.DrainExpired()
		sh.mu.Unlock()
		d.persist(completed)
	}
}

func (d *Dispatcher) persist(completed []batch.CompletedBatch) {
	for _, c := range completed {
		if _, err := parquetwriter.Write(context.Background(), d.sink, c); err != nil {
			logger.Noticef("dispatch: background drain write failed: %v", err)
			continue
		}
		telemetry.PartitionsWrittenTotal.Inc()
	}
}

// pendingBytes sums pendingTotalBytes across all shards. The background
// loop in Start publishes the result to the PendingBytes gauge.
func (d *Dispatcher) pendingBytes() int64 {
	var total int64
	for _, sh := range d.shards {
		sh.mu.Lock()
		total += sh.batcher.PendingTotalBytes()
		sh.mu.Unlock()
	}
	return total
}

// Stop halts the background loop and flushes every remaining buffer
// (drain_all), writing each to the storage sink before returning.
func (d *Dispatcher) Stop() {
	d.t.Kill(nil)
	d.t.Wait()

	for _, sh := range d.shards {
		sh.mu.Lock()
		completed := sh.batcher.DrainAll()
		sh.mu.Unlock()
		d.persist(completed)
	}
}
