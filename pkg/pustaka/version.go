// Package pustaka holds release metadata for the pustaka module.
package pustaka

// Version is the current release, set by the release process.
const Version = "0.3.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/pustaka"
