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
	"encoding/base64"
	"strconv"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"

	"github.com/smithclay/otlp2parquet/internals/otlpdata"
)

// attrsFromKV flattens an OTLP KeyValue list into an Attributes map,
// stringifying every value per the column construction rules.
func attrsFromKV(kvs []*commonpb.KeyValue) otlpdata.Attributes {
	attrs := make(otlpdata.Attributes, len(kvs))
	for _, kv := range kvs {
		if kv == nil {
			continue
		}
		attrs[kv.Key] = anyValueToString(kv.Value)
	}
	return attrs
}

// anyValueToString renders a primitive AnyValue as its natural string, and
// an array/object AnyValue as canonical JSON.
func anyValueToString(v *commonpb.AnyValue) string {
	if v == nil {
		return ""
	}
	switch x := v.Value.(type) {
	case *commonpb.AnyValue_StringValue:
		return x.StringValue
	case *commonpb.AnyValue_BoolValue:
		return strconv.FormatBool(x.BoolValue)
	case *commonpb.AnyValue_IntValue:
		return strconv.FormatInt(x.IntValue, 10)
	case *commonpb.AnyValue_DoubleValue:
		return strconv.FormatFloat(x.DoubleValue, 'g', -1, 64)
	case *commonpb.AnyValue_BytesValue:
		return base64.StdEncoding.EncodeToString(x.BytesValue)
	case *commonpb.AnyValue_ArrayValue, *commonpb.AnyValue_KvlistValue:
		return otlpdata.CanonicalJSON(anyValueToGo(v))
	default:
		return ""
	}
}

// anyValueToGo lowers an AnyValue to a plain Go value suitable for
// encoding/json, used only for the array/object canonicalization path.
func anyValueToGo(v *commonpb.AnyValue) any {
	if v == nil {
		return nil
	}
	switch x := v.Value.(type) {
	case *commonpb.AnyValue_StringValue:
		return x.StringValue
	case *commonpb.AnyValue_BoolValue:
		return x.BoolValue
	case *commonpb.AnyValue_IntValue:
		return x.IntValue
	case *commonpb.AnyValue_DoubleValue:
		return x.DoubleValue
	case *commonpb.AnyValue_BytesValue:
		return base64.StdEncoding.EncodeToString(x.BytesValue)
	case *commonpb.AnyValue_ArrayValue:
		values := x.ArrayValue.GetValues()
		arr := make([]any, len(values))
		for i, e := range values {
			arr[i] = anyValueToGo(e)
		}
		return arr
	case *commonpb.AnyValue_KvlistValue:
		m := make(map[string]any)
		for _, kv := range x.KvlistValue.GetValues() {
			m[kv.Key] = anyValueToGo(kv.Value)
		}
		return m
	default:
		return nil
	}
}
