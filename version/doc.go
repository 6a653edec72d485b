// Package version reports the build identity of the mediagen binary.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/fxgurv/ALONE/version.Version=1.0.0" ./cmd/mediagen
package version
