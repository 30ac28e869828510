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

// perRecordOverheadBytes approximates the fixed cost (timestamps, ids, enum
// tags) a Record carries beyond its variable-length string fields.
const perRecordOverheadBytes = 48

// EncodedLen estimates the in-memory size of a decoded SignalRequest. It is
// used only for the batcher's max_ingest_bytes admission check, never for
// correctness.
func EncodedLen(req *SignalRequest) int64 {
	var n int64
	for _, rg := range req.ResourceGroups {
		n += attributesLen(rg.ResourceAttributes)
		for _, sg := range rg.Scopes {
			n += int64(len(sg.ScopeName) + len(sg.ScopeVersion))
			for _, rec := range sg.Records {
				n += perRecordOverheadBytes
				n += int64(len(rec.Body) + len(rec.SeverityText) + len(rec.SpanName))
				n += int64(len(rec.MetricName) + len(rec.MetricUnit) + len(rec.MetricDescription))
				n += attributesLen(rec.Attributes)
			}
		}
	}
	return n
}

func attributesLen(attrs Attributes) int64 {
	var n int64
	for k, v := range attrs {
		n += int64(len(k) + len(v))
	}
	return n
}
