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

package daemon

import (
	"net/http"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

// ingest routes a decoded SignalRequest through the daemon's Dispatcher and
// builds the success envelope. Shared by the logs, traces and metrics
// handlers.
func ingest(c *Command, r *http.Request, req *otlpdata.SignalRequest) Response {
	idempotencyKey := r.Header.Get("Idempotency-Key")

	result, err := c.d.dispatcher.Ingest(r.Context(), req, idempotencyKey)
	if err != nil {
		return ErrorResponse(err)
	}

	return IngestResponse(result.RecordsAccepted, len(result.Partitions), result.Partitions)
}
