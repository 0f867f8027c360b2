// Package version reports which typedflow build is running.
//
// Version and GitCommit may be set at link time:
//
//	go build -ldflags "-X github.com/kbukum/typedflow/version.Version=v0.3.0"
//
// Otherwise they come from the module build info, which covers programs
// that depend on typedflow as a module.
package version
