// Package version reports the build of the running binary.
//
// Version and commit can be stamped at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/iockit/version.Version=1.0.0"
//
// Otherwise the VCS settings embedded by the Go toolchain are used.
package version
