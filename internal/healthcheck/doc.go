// Package healthcheck implements the active upstream health-checking core:
// ownership arbitration across workers, the per-peer probe state machine and
// its incremental HTTP response parser, and the anti-flap verdict filter.
//
// The package intentionally knows nothing about how peers were configured
// (the caller parses its own directive syntax and calls RegisterPeer with the
// result) or how the "down" bit gets consumed by request routing beyond the
// IsDown/Snapshot read path. Tests in this package should pass with
// `go test -race ./...`.
package healthcheck
