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

// Package decode parses OTLP payloads in three wire formats (protobuf,
// single-document JSON, newline-delimited JSON) into the normalized
// otlpdata.SignalRequest tree.
package decode

import (
	"strings"

	"github.com/smithclay/otlp2parquet/internals/ingesterr"
)

// Format identifies the wire format of an OTLP payload.
type Format int

const (
	FormatProtobuf Format = iota
	FormatJSON
	FormatJSONL
)

// DetectFormat maps an HTTP Content-Type header to a Format using
// case-insensitive substring matching. An empty or unrecognized header
// defaults to Protobuf.
func DetectFormat(contentType string) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "x-ndjson"), strings.Contains(ct, "jsonl"):
		return FormatJSONL
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "protobuf"):
		return FormatProtobuf
	default:
		return FormatProtobuf
	}
}

func invalidPayload(format string, err error) error {
	return ingesterr.Wrap(ingesterr.InvalidPayload, "cannot decode "+format+" payload", err)
}

var errUnknownFormat = ingesterr.New(ingesterr.InvalidPayload, "unknown wire format")

func ingesterrEmptyJsonl() error {
	return ingesterr.New(ingesterr.EmptyJsonl, "jsonl payload had no non-blank lines")
}
