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

package splitter

import (
	"testing"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

func rg(service string, n int) otlpdata.ResourceGroup {
	return otlpdata.ResourceGroup{
		ResourceAttributes: otlpdata.Attributes{"service.name": service},
		Scopes: []otlpdata.ScopeGroup{
			{Records: make([]otlpdata.Record, n)},
		},
	}
}

func TestSplitByServiceSingleGroupShortCircuits(t *testing.T) {
	req := &otlpdata.SignalRequest{
		Signal:         otlpdata.SignalLogs,
		ResourceGroups: []otlpdata.ResourceGroup{rg("api", 2)},
	}
	out := SplitByService(req)
	if len(out) != 1 || out[0] != req {
		t.Fatalf("expected the exact same request back, got %#v", out)
	}
}

func TestSplitByServiceGroupsInFirstOccurrenceOrder(t *testing.T) {
	req := &otlpdata.SignalRequest{
		Signal: otlpdata.SignalLogs,
		ResourceGroups: []otlpdata.ResourceGroup{
			rg("a", 1),
			rg("b", 1),
			rg("a", 1),
		},
	}
	out := SplitByService(req)
	if len(out) != 2 {
		t.Fatalf("expected 2 sub-requests, got %d", len(out))
	}
	if got := otlpdata.ServiceName(out[0].ResourceGroups[0].ResourceAttributes); got != "a" {
		t.Fatalf("expected first sub-request for service a, got %q", got)
	}
	if len(out[0].ResourceGroups) != 2 {
		t.Fatalf("expected service a to carry 2 resource groups, got %d", len(out[0].ResourceGroups))
	}
	if got := otlpdata.ServiceName(out[1].ResourceGroups[0].ResourceAttributes); got != "b" {
		t.Fatalf("expected second sub-request for service b, got %q", got)
	}
}

func TestSplitByServiceDefaultsToUnknown(t *testing.T) {
	req := &otlpdata.SignalRequest{
		Signal: otlpdata.SignalLogs,
		ResourceGroups: []otlpdata.ResourceGroup{
			rg("", 1),
			rg("x", 1),
		},
	}
	out := SplitByService(req)
	if got := otlpdata.ServiceName(out[0].ResourceGroups[0].ResourceAttributes); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}
