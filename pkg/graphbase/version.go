// Package graphbase holds build-time metadata shared by the CLI.
package graphbase

// Version is the CLI version, overridden at build time with
// -ldflags "-X github.com/graphbase-io/graphbase/pkg/graphbase.Version=...".
var Version = "0.4.0"
