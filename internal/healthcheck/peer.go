package healthcheck

import "time"

// PeerConfig is the static, immutable configuration for one registered
// peer — the already-parsed result of whatever directive syntax the
// enclosing proxy's config layer understands. The core never parses
// directives itself.
type PeerConfig struct {
	// Upstream is the name of the upstream group this peer belongs to, used
	// for confidence-score aggregation and metric labeling.
	Upstream string

	// Addr is the peer's dial target, e.g. "10.0.0.4:80".
	Addr string

	// Enabled mirrors the "enabled" directive (per upstream group). A
	// disabled peer is never probed and IsDown always reports false for it.
	Enabled bool

	// Delay is the interval between probes once a worker owns this peer.
	Delay time.Duration

	// Timeout bounds an entire probe, connect through verdict.
	Timeout time.Duration

	// Failcount is the number of consecutive like-kind outcomes required to
	// flip the published down bit.
	Failcount int32

	// Send is the raw request bytes written to the peer at the start of
	// each probe: concatenated "send" lines, each CRLF-terminated, with
	// a final blank-line CRLF.
	Send []byte

	// Expected is the literal body bytes a healthy response must match
	// exactly. Nil or empty means "any body accepted."
	Expected []byte

	// BufferSize is the size, in bytes, of the read buffer. It must
	// accommodate the full response (headers + body); FullBuffer is
	// terminal if it doesn't.
	BufferSize int
}

// BuildSendPayload concatenates lines the way the "send" directive does:
// each line followed by CRLF, the whole payload terminated by one extra
// CRLF, producing the blank-line terminator of an HTTP request. Example:
// BuildSendPayload("GET /health HTTP/1.1", "Host: x", "Connection: close").
func BuildSendPayload(lines ...string) []byte {
	var out []byte
	for _, line := range lines {
		out = append(out, line...)
		out = append(out, '\r', '\n')
	}
	out = append(out, '\r', '\n')
	return out
}
