//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the pustaka project using Mage.
//
// Usage:
//
//	mage build            Compile the pustaka binary to bin/
//	mage test:all         Run all tests
//	mage test:race        Run all tests with the race detector
//	mage test:cover       Run all tests and write coverage.out
//	mage lint             Run golangci-lint
//	mage vet              Run go vet
//	mage clean            Remove build artifacts
//	mage install          Install pustaka to GOPATH/bin
//	mage serve --addr X   Build and run the web UI
//	mage stats            Print per-package LOC, test and catalog counts
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "pustaka"
	binaryDir  = "bin"
	cmdDir     = "./cmd/pustaka"
)

// Build compiles the pustaka binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	for _, path := range []string{binaryDir, "coverage.out"} {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Serve builds the binary and runs the web UI against ./.pustaka-db.
// Accepts --addr and --data-dir after the target name.
func Serve() error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "127.0.0.1:8080", "listen address")
	dataDir := fs.String("data-dir", "", "data directory")
	parseTargetFlags(fs)

	mg.Deps(Build)
	args := []string{"serve", "--addr", *addr}
	if *dataDir != "" {
		args = append(args, "--data-dir", *dataDir)
	}
	return sh.RunV(filepath.Join(binaryDir, binaryName), args...)
}
