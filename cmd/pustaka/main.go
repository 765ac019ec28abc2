// Package main provides the pustaka CLI.
package main

import "github.com/mesh-intelligence/pustaka/internal/cli"

func main() {
	cli.Execute()
}
