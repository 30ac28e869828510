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

package storage

import "github.com/smithclay/otlp2parquet/internals/ingesterr"

// Backend selects which Sink implementation New constructs.
type Backend string

const (
	BackendFS Backend = "fs"
	BackendS3 Backend = "s3"
	BackendR2 Backend = "r2"
)

// Config is the storage sub-options surface.
type Config struct {
	Backend Backend
	FS      FSConfig
	S3      S3Config
}

// FSConfig configures the filesystem sink.
type FSConfig struct {
	// Path is the root directory objects are written under.
	Path string
}

// S3Config configures both the s3 and r2 backends; r2 reuses the S3 sink
// with a custom BaseEndpoint and path-style addressing.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

func newConfigError(msg string) error {
	return ingesterr.New(ingesterr.ConfigError, msg)
}
