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

// Package parquetwriter serializes a CompletedBatch to Parquet, computing
// a content hash in the same pass, deriving a deterministic partition
// path, and handing the bytes to a storage sink.
package parquetwriter

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	"github.com/zeebo/blake3"

	"github.com/smithclay/otlp2parquet/internals/batch"
	"github.com/smithclay/otlp2parquet/internals/ingesterr"
	"github.com/smithclay/otlp2parquet/internals/storage"
)

const (
	otlpVersion          = "1.3.1"
	writerVersion        = "otlp2parquet-1"
	dataPageSizeBytes    = 256 * 1024
	dictPageSizeBytes    = 128 * 1024
	maxRowGroupRows      = 32 * 1024
	writeBatchSizeRows   = 32 * 1024
	maxWriteAttempts     = 5
	initialBackoff       = 200 * time.Millisecond
	backoffFactor        = 2.0
	backoffLimit         = 5 * time.Second
)

// ParquetObject is the final persisted artifact.
type ParquetObject struct {
	Path        string
	ContentHash string
	ByteLength  int
	RowCount    int64
	Schema      *arrow.Schema
	ProducedAt  time.Time
}

// Now is overridden in tests for deterministic wall-clock substitution.
var Now = time.Now

func writerProperties() *parquet.WriterProperties {
	return parquet.NewWriterProperties(
		parquet.WithDictionaryDefault(true),
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithStats(true),
		parquet.WithDataPageSize(dataPageSizeBytes),
		parquet.WithDictionaryPageSizeLimit(dictPageSizeBytes),
		parquet.WithMaxRowGroupLength(maxRowGroupRows),
		parquet.WithBatchSize(writeBatchSizeRows),
		parquet.WithKeyValueMetadata(map[string]string{
			"otlp.version":              otlpVersion,
			"otlp2parquet.writer_version": writerVersion,
		}),
	)
}

// serialize concatenates completed.Batches into a single Parquet file and
// computes its BLAKE3 content hash in the same pass.
func serialize(completed batch.CompletedBatch) (data []byte, hashHex string, rows int64, schema *arrow.Schema, err error) {
	if len(completed.Batches) == 0 {
		return nil, "", 0, nil, ingesterr.New(ingesterr.TransformationError, "cannot serialize a completed batch with no record batches")
	}

	schema = completed.Batches[0].Record.Schema()

	var buf bytes.Buffer
	hasher := blake3.New()
	dst := io.MultiWriter(&buf, hasher)

	fw, err := pqarrow.NewFileWriter(schema, dst, writerProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, "", 0, nil, ingesterr.Wrap(ingesterr.WriteFailure, "cannot create parquet file writer", err)
	}

	for _, rb := range completed.Batches {
		if err := fw.Write(rb.Record); err != nil {
			fw.Close()
			return nil, "", 0, nil, ingesterr.Wrap(ingesterr.WriteFailure, "cannot write record batch", err)
		}
		rows += rb.Record.NumRows()
	}

	if err := fw.Close(); err != nil {
		return nil, "", 0, nil, ingesterr.Wrap(ingesterr.WriteFailure, "cannot finalize parquet file", err)
	}

	return buf.Bytes(), hex.EncodeToString(hasher.Sum(nil)), rows, schema, nil
}

// Write serializes, hashes, computes a partition path, and persists via
// the storage sink, retrying WriteFailure with exponential backoff up to
// maxWriteAttempts times.
func Write(ctx context.Context, sink storage.Sink, completed batch.CompletedBatch) (ParquetObject, error) {
	data, hashHex, rows, schema, err := serialize(completed)
	if err != nil {
		return ParquetObject{}, err
	}

	service := completed.Metadata.ServiceName()
	firstTS := completed.Metadata.FirstTimestampNanos()
	path := PartitionPath(completed.Key.Signal, completed.Key.Kind, service, firstTS, hashHex, Now)

	if err := writeWithRetry(ctx, sink, path, data); err != nil {
		return ParquetObject{}, err
	}

	return ParquetObject{
		Path:        path,
		ContentHash: hashHex,
		ByteLength:  len(data),
		RowCount:    rows,
		Schema:      schema,
		ProducedAt:  Now(),
	}, nil
}
