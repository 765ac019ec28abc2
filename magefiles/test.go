//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, race, cover, pkg).
type Test mg.Namespace

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Race runs every test with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover runs every test and writes coverage.out, then prints per-function
// coverage.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func=coverage.out")
}

// Pkg runs the tests of the packages whose import path contains name,
// for example "mage test:pkg catalog".
func (Test) Pkg(name string) error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var matched []string
	for pkg := range strings.SplitSeq(pkgs, "\n") {
		if pkg != "" && strings.Contains(pkg, name) {
			matched = append(matched, pkg)
		}
	}
	if len(matched) == 0 {
		fmt.Printf("No packages match %q.\n", name)
		return nil
	}
	args := append([]string{"test", "-v"}, matched...)
	return sh.RunV(binGo, args...)
}
