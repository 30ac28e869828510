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

package decode

import (
	"encoding/json"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/encoding/protojson"
)

// unmarshalNormalizedJSON decodes data generically, rewrites every camelCase
// OTLP key to its canonical snake_case form, re-encodes, and hands the
// result to protojson so the same ExportXServiceRequest structural decoder
// serves both the protobuf and JSON/JSONL wire formats.
func unmarshalNormalizedJSON(data []byte, msg proto.Message) error {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return invalidPayload("json", err)
	}
	normalized, err := json.Marshal(normalizeKeys(generic))
	if err != nil {
		return invalidPayload("json", err)
	}
	if err := protojson.Unmarshal(normalized, msg); err != nil {
		return invalidPayload("json", err)
	}
	return nil
}
