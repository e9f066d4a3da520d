// Package buildinfo exposes the version of the modi binaries.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/modi-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Without them, the commit and build time come from the VCS stamp Go embeds
// in the binary, and the Go version from the runtime.
package buildinfo
