// Package buildinfo exposes version information stamped into the binary.
package buildinfo

import "runtime/debug"

// BinaryVersion is set at build time via
// -ldflags "-X github.com/Infineon/mtb-manifest-checker/pkg/buildinfo.BinaryVersion=...".
// Defaults to "dev".
var BinaryVersion = "dev"

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return ""
}
