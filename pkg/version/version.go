// Package version holds the build version stamp.
package version

// Version is the current release, overridable at build time via
// -ldflags "-X .../pkg/version.Version=v0.2.0".
var Version = "v0.1.0"
