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
	"net/http/httptest"
	"testing"

	"github.com/smithclay/otlp2parquet/internals/ingesterr"
)

func TestIngestResponseBody(t *testing.T) {
	r := IngestResponse(42, 2, []string{"logs/svc/part-1.parquet"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, nil)

	if w.Code != 200 {
		t.Fatalf("Code = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["records_processed"].(float64) != 42 {
		t.Errorf("records_processed = %v, want 42", body["records_processed"])
	}
}

func TestIngestResponseNilPartitionsBecomeEmptyArray(t *testing.T) {
	r := IngestResponse(0, 0, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, nil)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if parts, ok := body["partitions"].([]any); !ok || len(parts) != 0 {
		t.Errorf("partitions = %v, want an empty array", body["partitions"])
	}
}

func TestErrorResponseMapsKindToStatus(t *testing.T) {
	err := ingesterr.New(ingesterr.Backpressure, "pending_total_bytes exceeded")
	r := ErrorResponse(err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, nil)

	if w.Code != 429 {
		t.Errorf("Code = %d, want 429", w.Code)
	}
	var body map[string]any
	if jsonErr := json.Unmarshal(w.Body.Bytes(), &body); jsonErr != nil {
		t.Fatalf("Unmarshal: %v", jsonErr)
	}
	if body["kind"] != "backpressure" {
		t.Errorf("kind = %v, want backpressure", body["kind"])
	}
	if body["status"] != "error" {
		t.Errorf("status = %v, want error", body["status"])
	}
}

func TestFixedStatusResponders(t *testing.T) {
	cases := []struct {
		name string
		r    Response
		want int
	}{
		{"MethodNotAllowed", MethodNotAllowed("nope"), 405},
		{"NotFound", NotFound("nope"), 404},
		{"InternalError", InternalError("nope"), 500},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		c.r.ServeHTTP(w, nil)
		if w.Code != c.want {
			t.Errorf("%s: Code = %d, want %d", c.name, w.Code, c.want)
		}
	}
}
