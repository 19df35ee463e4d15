// Package version carries the build version of the client and derives the
// client identifier sent to servers.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/sseclient/version.Version=1.2.0"
package version
