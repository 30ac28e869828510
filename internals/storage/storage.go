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

// Package storage implements the external storage interface: a small Sink
// contract with filesystem, S3 and R2 backends, and a process-wide
// Operator initialized once at startup.
package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Sink is the storage collaborator the Writer hands bytes to.
type Sink interface {
	Write(ctx context.Context, path string, data []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// ErrAlreadyInitialized is returned by New when the process-wide Operator
// has already been set: re-initialization is refused.
var ErrAlreadyInitialized = errors.New("storage: operator already initialized")

// Operator is the process-wide, immutable storage handle.
type Operator struct {
	Sink Sink
}

var (
	operatorMu sync.Mutex
	operator   *Operator
)

// New initializes the process-wide Operator from cfg. A second call after
// one has succeeded returns ErrAlreadyInitialized.
func New(cfg Config) (*Operator, error) {
	operatorMu.Lock()
	defer operatorMu.Unlock()

	if operator != nil {
		return nil, ErrAlreadyInitialized
	}
	sink, err := newSink(cfg)
	if err != nil {
		return nil, err
	}
	operator = &Operator{Sink: sink}
	return operator, nil
}

func newSink(cfg Config) (Sink, error) {
	switch cfg.Backend {
	case BackendFS:
		return newFSStore(cfg.FS)
	case BackendS3:
		return newS3Store(cfg.S3, false)
	case BackendR2:
		return newS3Store(cfg.S3, true)
	default:
		return nil, newConfigError("storage.backend must be one of fs, s3, r2")
	}
}

// cleanPath strips leading slashes; the rest of the path is left unchanged.
func cleanPath(path string) string {
	return strings.TrimLeft(path, "/")
}
