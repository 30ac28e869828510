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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/canonical/go-flags"

	"github.com/smithclay/otlp2parquet/cmd"
	"github.com/smithclay/otlp2parquet/config"
	"github.com/smithclay/otlp2parquet/internals/daemon"
	"github.com/smithclay/otlp2parquet/internals/dispatch"
	"github.com/smithclay/otlp2parquet/internals/logger"
	"github.com/smithclay/otlp2parquet/internals/storage"
)

type options struct {
	Address string `long:"address" description:"Address to listen on" default:""`
	Config  string `long:"config" description:"Path to a YAML config file"`
	Profile string `long:"profile" description:"Default table to start from: general or constrained" default:"general"`
	Verbose bool   `short:"v" long:"verbose" description:"Log debug output"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Run the " + cmd.DisplayName + " ingestion daemon"
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	logger.SetLogger(logger.New(os.Stderr, "["+cmd.ProgramName+"] "))
	if opts.Verbose {
		os.Setenv("OTLP2PARQUET_DEBUG", "1")
	}

	profile := config.Profile(opts.Profile)
	switch profile {
	case config.ProfileGeneral, config.ProfileConstrained:
	default:
		return fmt.Errorf("profile must be %q or %q, got %q", config.ProfileGeneral, config.ProfileConstrained, opts.Profile)
	}

	cfg, err := config.Load(profile, opts.Config)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	if opts.Address != "" {
		cfg.Address = opts.Address
	}

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	return runDaemon(&cfg, sigs)
}

func runDaemon(cfg *config.Config, sigs chan os.Signal) error {
	storageCfg := cfg.ToStorageConfig()
	if storageCfg.Backend == storage.BackendFS && storageCfg.FS.Path == "" {
		storageCfg.FS.Path = cmd.DefaultStoragePath
	}
	op, err := storage.New(storageCfg)
	if err != nil {
		return fmt.Errorf("cannot initialize storage: %w", err)
	}

	dispatcher := dispatch.New(cfg.ToBatchConfig(), op.Sink, 0, 0)

	d, err := daemon.New(&daemon.Options{Address: cfg.Address}, dispatcher, op.Sink)
	if err != nil {
		return fmt.Errorf("cannot create daemon: %w", err)
	}
	d.Version = cmd.Version
	if err := d.Init(); err != nil {
		return fmt.Errorf("cannot init daemon: %w", err)
	}
	if err := d.Start(); err != nil {
		return fmt.Errorf("cannot start daemon: %w", err)
	}

	logger.Noticef("listening on %s (profile=%s, storage=%s)", cfg.Address, cfg.Profile, cfg.Storage.Backend)

	sig := <-sigs
	logger.Noticef("exiting on %s signal", sig)

	return d.Stop()
}
