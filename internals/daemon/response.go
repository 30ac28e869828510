// Copyright (c) 2014-2020 Canonical Ltd
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
	"encoding/json"
	"net/http"

	"github.com/smithclay/otlp2parquet/internals/ingesterr"
	"github.com/smithclay/otlp2parquet/internals/logger"
	"github.com/smithclay/otlp2parquet/internals/telemetry"
)

// Response knows how to serve itself.
type Response interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// resp is the success envelope for POST /v1/{logs,traces,metrics}:
// {"status":"ok","records_processed":N,"flush_count":M,
// "partitions":[...]}.
type resp struct {
	Status           int      `json:"-"`
	StatusText       string   `json:"status"`
	RecordsProcessed int      `json:"records_processed"`
	FlushCount       int      `json:"flush_count"`
	Partitions       []string `json:"partitions"`
}

func (r *resp) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	status := r.Status
	bs, err := json.Marshal(r)
	if err != nil {
		logger.Noticef("Cannot marshal %#v to JSON: %v", *r, err)
		bs = nil
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bs)
}

// IngestResponse builds the 200 OK envelope for a successful ingest call.
func IngestResponse(recordsProcessed, flushCount int, partitions []string) Response {
	if partitions == nil {
		partitions = []string{}
	}
	return &resp{
		Status:           http.StatusOK,
		StatusText:       "ok",
		RecordsProcessed: recordsProcessed,
		FlushCount:       flushCount,
		Partitions:       partitions,
	}
}

// errResp is the error envelope, keyed off ingesterr.Kind.
type errResp struct {
	Status  int    `json:"-"`
	OK      string `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (r *errResp) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	bs, err := json.Marshal(r)
	status := r.Status
	if err != nil {
		bs = []byte(`{"status":"error","kind":"internal","message":"internal server error"}`)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bs)
}

// ErrorResponse maps err through ingesterr.KindOf into the status and body,
// and logs it with its Kind and cause.
func ErrorResponse(err error) Response {
	kind := ingesterr.KindOf(err)
	logger.Noticef("ingest error kind=%s: %v", kind, err)
	telemetry.ErrorsTotal.WithLabelValues(kind.String()).Inc()
	return &errResp{
		Status:  kind.HTTPStatus(),
		OK:      "error",
		Kind:    kind.String(),
		Message: err.Error(),
	}
}

// plainResp serves a fixed status with a small JSON body, used for the
// health check and for the fixed-status error responders below.
type plainResp struct {
	Status  int    `json:"-"`
	OK      string `json:"status"`
	Message string `json:"message"`
}

func (r *plainResp) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	bs, _ := json.Marshal(r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.Status)
	w.Write(bs)
}

func makeStatusResponder(status int) func(message string) Response {
	return func(message string) Response {
		return &plainResp{Status: status, OK: "error", Message: message}
	}
}

// Standard fixed-status responders.
var (
	MethodNotAllowed = makeStatusResponder(http.StatusMethodNotAllowed)
	NotFound         = makeStatusResponder(http.StatusNotFound)
	InternalError    = makeStatusResponder(http.StatusInternalServerError)
)
