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

// Package config implements the configuration surface: a YAML-backed
// layer of defaults, overridden per Profile, merged with environment
// variables and CLI flags, using OptionalDuration/OptionalBytes
// unset-vs-zero wrappers and a Merge-style layering of defaults over
// overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smithclay/otlp2parquet/internals/batch"
	"github.com/smithclay/otlp2parquet/internals/ingesterr"
	"github.com/smithclay/otlp2parquet/internals/storage"
)

// Profile selects which built-in default table applies.
type Profile string

const (
	ProfileGeneral     Profile = "general"
	ProfileConstrained Profile = "constrained"
)

// Backend identifies a storage.Sink implementation.
type Backend string

const (
	BackendFS Backend = "fs"
	BackendS3 Backend = "s3"
	BackendR2 Backend = "r2"
)

type BatchConfig struct {
	MaxRows     int              `yaml:"max_rows,omitempty"`
	MaxBytes    OptionalBytes    `yaml:"max_bytes,omitempty"`
	MaxAgeSecs  OptionalDuration `yaml:"max_age_secs,omitempty"`
}

type IngestConfig struct {
	MaxPayloadBytes            OptionalBytes `yaml:"max_payload_bytes,omitempty"`
	BackpressureThresholdBytes OptionalBytes `yaml:"backpressure_threshold_bytes,omitempty"`
}

type StorageConfig struct {
	Backend Backend `yaml:"backend,omitempty"`

	FSPath string `yaml:"path,omitempty"`

	Bucket          string `yaml:"bucket,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	Prefix          string `yaml:"prefix,omitempty"`
}

// Config is the fully-resolved configuration the daemon boots from.
type Config struct {
	Profile Profile       `yaml:"profile,omitempty"`
	Address string        `yaml:"address,omitempty"`
	Batch   BatchConfig   `yaml:"batch,omitempty"`
	Ingest  IngestConfig  `yaml:"ingest,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
}

// defaults returns the built-in default table for profile.
func defaults(profile Profile) Config {
	if profile == ProfileConstrained {
		return Config{
			Profile: ProfileConstrained,
			Address: ":8080",
			Batch: BatchConfig{
				MaxRows:    100_000,
				MaxBytes:   bytesValue(64 << 20),
				MaxAgeSecs: durationValue(5 * time.Second),
			},
			Ingest: IngestConfig{
				MaxPayloadBytes:            bytesValue(6 << 20),
				BackpressureThresholdBytes: bytesValue(50_000_000),
			},
			Storage: StorageConfig{Backend: BackendFS, FSPath: "./data"},
		}
	}
	return Config{
		Profile: ProfileGeneral,
		Address: ":8080",
		Batch: BatchConfig{
			MaxRows:    200_000,
			MaxBytes:   bytesValue(128 << 20),
			MaxAgeSecs: durationValue(10 * time.Second),
		},
		Ingest: IngestConfig{
			MaxPayloadBytes:            bytesValue(8 << 20),
			BackpressureThresholdBytes: bytesValue(256 << 20), // derived from max_bytes
		},
		Storage: StorageConfig{Backend: BackendFS, FSPath: "./data"},
	}
}

// Load resolves the configuration: built-in defaults for profile, layered
// with path's YAML contents (if non-empty), layered with OTLP2PARQUET_*
// environment variables. CLI flags are applied by the caller afterwards,
// since cmd/otlp2parquet owns flag parsing. Precedence is CLI flags > env
// vars > YAML file > built-in defaults.
func Load(profile Profile, path string) (Config, error) {
	cfg := defaults(profile)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, newConfigError("cannot read config file: " + err.Error())
		}
		var fromFile Config
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return Config{}, newConfigError("cannot parse config file: " + err.Error())
		}
		cfg.Merge(&fromFile)
	}

	cfg.MergeEnv()
	return cfg, nil
}

// Merge merges the fields set in other into c, layering overrides over
// defaults field by field.
func (c *Config) Merge(other *Config) {
	if other.Profile != "" {
		c.Profile = other.Profile
	}
	if other.Address != "" {
		c.Address = other.Address
	}
	if other.Batch.MaxRows != 0 {
		c.Batch.MaxRows = other.Batch.MaxRows
	}
	if other.Batch.MaxBytes.IsSet {
		c.Batch.MaxBytes = other.Batch.MaxBytes
	}
	if other.Batch.MaxAgeSecs.IsSet {
		c.Batch.MaxAgeSecs = other.Batch.MaxAgeSecs
	}
	if other.Ingest.MaxPayloadBytes.IsSet {
		c.Ingest.MaxPayloadBytes = other.Ingest.MaxPayloadBytes
	}
	if other.Ingest.BackpressureThresholdBytes.IsSet {
		c.Ingest.BackpressureThresholdBytes = other.Ingest.BackpressureThresholdBytes
	}
	if other.Storage.Backend != "" {
		c.Storage.Backend = other.Storage.Backend
	}
	if other.Storage.FSPath != "" {
		c.Storage.FSPath = other.Storage.FSPath
	}
	if other.Storage.Bucket != "" {
		c.Storage.Bucket = other.Storage.Bucket
	}
	if other.Storage.Region != "" {
		c.Storage.Region = other.Storage.Region
	}
	if other.Storage.Endpoint != "" {
		c.Storage.Endpoint = other.Storage.Endpoint
	}
	if other.Storage.AccessKeyID != "" {
		c.Storage.AccessKeyID = other.Storage.AccessKeyID
	}
	if other.Storage.SecretAccessKey != "" {
		c.Storage.SecretAccessKey = other.Storage.SecretAccessKey
	}
	if other.Storage.Prefix != "" {
		c.Storage.Prefix = other.Storage.Prefix
	}
}

// MergeEnv layers OTLP2PARQUET_* environment variables over c. Env vars
// beat YAML/defaults; CLI flags beat env vars.
func (c *Config) MergeEnv() {
	if v, ok := os.LookupEnv("OTLP2PARQUET_ADDRESS"); ok {
		c.Address = v
	}
	if v, ok := envInt("OTLP2PARQUET_BATCH_MAX_ROWS"); ok {
		c.Batch.MaxRows = int(v)
	}
	if v, ok := envInt("OTLP2PARQUET_BATCH_MAX_BYTES"); ok {
		c.Batch.MaxBytes = bytesValue(v)
	}
	if v, ok := envDuration("OTLP2PARQUET_BATCH_MAX_AGE_SECS"); ok {
		c.Batch.MaxAgeSecs = durationValue(v)
	}
	if v, ok := envInt("OTLP2PARQUET_INGEST_MAX_PAYLOAD_BYTES"); ok {
		c.Ingest.MaxPayloadBytes = bytesValue(v)
	}
	if v, ok := envInt("OTLP2PARQUET_INGEST_BACKPRESSURE_THRESHOLD_BYTES"); ok {
		c.Ingest.BackpressureThresholdBytes = bytesValue(v)
	}
	if v, ok := os.LookupEnv("OTLP2PARQUET_STORAGE_BACKEND"); ok {
		c.Storage.Backend = Backend(v)
	}
	if v, ok := os.LookupEnv("OTLP2PARQUET_STORAGE_PATH"); ok {
		c.Storage.FSPath = v
	}
	if v, ok := os.LookupEnv("OTLP2PARQUET_STORAGE_BUCKET"); ok {
		c.Storage.Bucket = v
	}
	if v, ok := os.LookupEnv("OTLP2PARQUET_STORAGE_REGION"); ok {
		c.Storage.Region = v
	}
	if v, ok := os.LookupEnv("OTLP2PARQUET_STORAGE_ENDPOINT"); ok {
		c.Storage.Endpoint = v
	}
	if v, ok := os.LookupEnv("OTLP2PARQUET_STORAGE_ACCESS_KEY_ID"); ok {
		c.Storage.AccessKeyID = v
	}
	if v, ok := os.LookupEnv("OTLP2PARQUET_STORAGE_SECRET_ACCESS_KEY"); ok {
		c.Storage.SecretAccessKey = v
	}
	if v, ok := os.LookupEnv("OTLP2PARQUET_STORAGE_PREFIX"); ok {
		c.Storage.Prefix = v
	}
}

func envInt(name string) (int64, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envDuration(name string) (time.Duration, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// ToBatchConfig adapts the resolved Batch/Ingest sections to the shape
// internals/batch.Batcher consumes.
func (c *Config) ToBatchConfig() batch.BatchConfig {
	return batch.BatchConfig{
		MaxRows:                    c.Batch.MaxRows,
		MaxBytes:                   c.Batch.MaxBytes.Value,
		MaxAge:                     c.Batch.MaxAgeSecs.Value,
		BackpressureThresholdBytes: c.Ingest.BackpressureThresholdBytes.Value,
		MaxIngestBytes:             c.Ingest.MaxPayloadBytes.Value,
	}
}

// ToStorageConfig adapts the resolved Storage section to the shape
// internals/storage.New consumes.
func (c *Config) ToStorageConfig() storage.Config {
	return storage.Config{
		Backend: storage.Backend(c.Storage.Backend),
		FS: storage.FSConfig{
			Path: c.Storage.FSPath,
		},
		S3: storage.S3Config{
			Bucket:          c.Storage.Bucket,
			Region:          c.Storage.Region,
			Endpoint:        c.Storage.Endpoint,
			AccessKeyID:     c.Storage.AccessKeyID,
			SecretAccessKey: c.Storage.SecretAccessKey,
			Prefix:          c.Storage.Prefix,
		},
	}
}

func newConfigError(msg string) error {
	return ingesterr.New(ingesterr.ConfigError, msg)
}
