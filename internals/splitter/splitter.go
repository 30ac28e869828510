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

// Package splitter groups a decoded SignalRequest's resource groups by
// service.name, independent of wire format.
package splitter

import "github.com/smithclay/otlp2parquet/internals/otlpdata"

// SplitByService groups req's resource groups by resolved service name,
// preserving the relative order of resource groups within each service and
// emitting sub-requests in order of each service's first occurrence. A
// request with a single resource group is returned unchanged (one-element
// slice) without going through the grouping machinery.
func SplitByService(req *otlpdata.SignalRequest) []*otlpdata.SignalRequest {
	if len(req.ResourceGroups) <= 1 {
		return []*otlpdata.SignalRequest{req}
	}

	order := make([]string, 0, len(req.ResourceGroups))
	grouped := make(map[string][]otlpdata.ResourceGroup, len(req.ResourceGroups))
	for _, rg := range req.ResourceGroups {
		service := otlpdata.ServiceName(rg.ResourceAttributes)
		if _, ok := grouped[service]; !ok {
			order = append(order, service)
		}
		grouped[service] = append(grouped[service], rg)
	}

	out := make([]*otlpdata.SignalRequest, 0, len(order))
	for _, service := range order {
		out = append(out, &otlpdata.SignalRequest{
			Signal:         req.Signal,
			ResourceGroups: grouped[service],
		})
	}
	return out
}
