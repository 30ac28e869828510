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
	"time"

	"github.com/smithclay/otlp2parquet/internals/ingesterr"
	"github.com/smithclay/otlp2parquet/internals/storage"
)

// sleepFn is overridden in tests to avoid real delays.
var sleepFn = time.Sleep

// nextBackoff computes the retry backoff: an initial delay that multiplies
// by backoffFactor on each attempt, clamped at backoffLimit.
func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	if current >= backoffLimit {
		return backoffLimit
	}
	next := time.Duration(float64(current) * backoffFactor)
	if next > backoffLimit {
		next = backoffLimit
	}
	return next
}

// writeWithRetry retries a storage write up to maxWriteAttempts times on
// WriteFailure. The already-drained CompletedBatch is retried in place by
// the caller; no Batcher state is touched here.
func writeWithRetry(ctx context.Context, sink storage.Sink, path string, data []byte) error {
	var lastErr error
	var delay time.Duration

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if attempt > 0 {
			delay = nextBackoff(delay)
			sleepFn(delay)
		}
		if err := sink.Write(ctx, path, data); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return ingesterr.Wrap(ingesterr.WriteFailure, "storage write exhausted retries", lastErr)
}
