// Package resources bundles classpath-equivalent documents into the
// server binary. Files placed under bundled/ are addressable by
// `class-path` sources in .mcp-vector-search/config.yaml; there is no
// JVM classpath at runtime, so the bundle is compiled in at build time
// instead.
package resources

import "embed"

//go:embed all:bundled
var FS embed.FS
