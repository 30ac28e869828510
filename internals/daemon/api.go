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
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// API is the route table, a Command per endpoint, covering the ingestion
// and health/metrics endpoints this daemon exposes.
var API = []*Command{{
	Path: "/v1/logs",
	POST: v1PostLogs,
}, {
	Path: "/v1/traces",
	POST: v1PostTraces,
}, {
	Path: "/v1/metrics",
	POST: v1PostMetrics,
}, {
	Path: "/v1/healthz",
	GET:  v1Health,
}, {
	Path:    "/metrics",
	Handler: promhttp.Handler(),
}}
