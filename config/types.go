// Copyright (c) 2021 Canonical Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OptionalDuration distinguishes "unset" from "explicit zero", the way a
// plain time.Duration field cannot for optional backoff-style fields.
type OptionalDuration struct {
	Value time.Duration
	IsSet bool
}

func durationValue(d time.Duration) OptionalDuration {
	return OptionalDuration{Value: d, IsSet: true}
}

func (o OptionalDuration) IsZero() bool { return !o.IsSet }

func (o OptionalDuration) MarshalYAML() (interface{}, error) {
	if !o.IsSet {
		return nil, nil
	}
	return o.Value.String(), nil
}

func (o *OptionalDuration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a YAML string")
	}
	// A bare integer is a number of seconds, matching the *_secs option
	// names and the OTLP2PARQUET_BATCH_MAX_AGE_SECS env var.
	if secs, err := strconv.ParseInt(value.Value, 10, 64); err == nil {
		o.Value = time.Duration(secs) * time.Second
		o.IsSet = true
		return nil
	}
	d, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	o.Value = d
	o.IsSet = true
	return nil
}

// OptionalBytes distinguishes "unset" from "explicit zero" for byte-size
// config fields (max_bytes, max_payload_bytes, ...).
type OptionalBytes struct {
	Value int64
	IsSet bool
}

func bytesValue(n int64) OptionalBytes {
	return OptionalBytes{Value: n, IsSet: true}
}

func (o OptionalBytes) IsZero() bool { return !o.IsSet }

func (o OptionalBytes) MarshalYAML() (interface{}, error) {
	if !o.IsSet {
		return nil, nil
	}
	return o.Value, nil
}

func (o *OptionalBytes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("byte size must be a YAML number")
	}
	n, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid byte size %q", value.Value)
	}
	o.Value = n
	o.IsSet = true
	return nil
}
