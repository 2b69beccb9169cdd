// Package version reports the build of the running edlflash binary.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/edlflash/version.Version=1.2.0 \
//	  -X github.com/kbukum/edlflash/version.GitCommit=$(git rev-parse --short HEAD)"
package version
