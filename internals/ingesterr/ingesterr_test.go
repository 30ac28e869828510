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

package ingesterr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		InvalidPayload:       http.StatusBadRequest,
		EmptyJsonl:           http.StatusBadRequest,
		PayloadTooLarge:      http.StatusRequestEntityTooLarge,
		Backpressure:         http.StatusTooManyRequests,
		TransformationError:  http.StatusInternalServerError,
		WriteFailure:         http.StatusServiceUnavailable,
		ConfigError:          http.StatusInternalServerError,
		Internal:             http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := kind.HTTPStatus(); got != want {
			t.Errorf("%v.HTTPStatus() = %d, want %d", kind, got, want)
		}
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	base := New(Backpressure, "pending_total_bytes exceeded")
	wrapped := fmt.Errorf("ingest failed: %w", base)
	if KindOf(wrapped) != Backpressure {
		t.Errorf("KindOf(wrapped) = %v, want Backpressure", KindOf(wrapped))
	}
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	if KindOf(errors.New("plain error")) != Internal {
		t.Errorf("KindOf(plain) = %v, want Internal", KindOf(errors.New("plain")))
	}
	if KindOf(nil) != Internal {
		t.Errorf("KindOf(nil) = %v, want Internal", KindOf(nil))
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(WriteFailure, "cannot write partition", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if err.Kind != WriteFailure {
		t.Errorf("Kind = %v, want WriteFailure", err.Kind)
	}
}
