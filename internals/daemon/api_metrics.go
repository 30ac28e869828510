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
	"io"
	"net/http"

	"github.com/smithclay/otlp2parquet/internals/decode"
	"github.com/smithclay/otlp2parquet/internals/ingesterr"
	"github.com/smithclay/otlp2parquet/internals/telemetry"
)

func v1PostMetrics(c *Command, r *http.Request) Response {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ErrorResponse(ingesterr.Wrap(ingesterr.InvalidPayload, "cannot read request body", err))
	}

	format := decode.DetectFormat(r.Header.Get("Content-Type"))
	req, skipped, err := decode.DecodeMetrics(body, format)
	if err != nil {
		return ErrorResponse(err)
	}
	telemetry.RecordSkips(skipped)

	return ingest(c, r, req)
}
