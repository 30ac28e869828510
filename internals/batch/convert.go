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

package batch

import (
	"github.com/smithclay/otlp2parquet/internals/otlpdata"
	"github.com/smithclay/otlp2parquet/internals/transform"
)

// convert dispatches a per-service sub-request to the Transformer,
// returning one transform.Result for logs/traces and one per observed
// MetricKind for metrics.
func convert(req *otlpdata.SignalRequest) ([]transform.Result, error) {
	switch req.Signal {
	case otlpdata.SignalLogs:
		res, err := transform.ConvertLogs(req)
		if err != nil {
			return nil, err
		}
		return []transform.Result{res}, nil
	case otlpdata.SignalTraces:
		res, err := transform.ConvertTraces(req)
		if err != nil {
			return nil, err
		}
		return []transform.Result{res}, nil
	case otlpdata.SignalMetrics:
		return transform.ConvertMetrics(req)
	default:
		return nil, nil
	}
}
