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

package otlpdata

import "github.com/apache/arrow/go/v17/arrow"

// RecordBatch is a columnar chunk conforming to the fixed schema of its
// signal. It owns its Arrow record; callers that finish with it without
// handing it to the Writer must Release it.
type RecordBatch struct {
	Signal Signal
	// Kind is only meaningful when Signal == SignalMetrics.
	Kind        MetricKind
	Record      arrow.Record
	ApproxBytes int
}

// Release drops the batch's reference to its underlying Arrow buffers.
func (b RecordBatch) Release() {
	if b.Record != nil {
		b.Record.Release()
	}
}

// ApproxBytesOf sums column buffer sizes plus a fixed per-row overhead, used
// only as an input to flush triggers, never for correctness.
const perRowOverheadBytes = 32

func ApproxBytesOf(rec arrow.Record) int {
	total := 0
	for i := 0; i < int(rec.NumCols()); i++ {
		col := rec.Column(i)
		for _, buf := range col.Data().Buffers() {
			if buf != nil {
				total += buf.Len()
			}
		}
	}
	total += int(rec.NumRows()) * perRowOverheadBytes
	return total
}
