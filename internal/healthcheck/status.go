package healthcheck

import "time"

// PeerStatus is one row of an operator-facing status snapshot. It is a
// best-effort read: fields other than Down may be torn relative to each
// other if captured while the owning worker is mid-update, which is
// explicitly tolerated (see shared.go's slotSnapshot doc comment).
type PeerStatus struct {
	Index       int
	Upstream    string
	Addr        string
	Enabled     bool
	Owner       string
	Down        bool
	LastOutcome string
	RunLength   int32
	SinceMillis int64
	Confidence  float64
}

// Snapshot renders the current state of every registered peer. It is the
// single source both the JSON status endpoint (internal/statuspage) and the
// TUI (cmd/healthtop) render from.
func (r *Registry) Snapshot() []PeerStatus {
	r.mu.Lock()
	peers := make([]PeerConfig, len(r.peers))
	copy(peers, r.peers)
	r.mu.Unlock()

	table := r.table
	out := make([]PeerStatus, len(peers))
	for i, cfg := range peers {
		out[i] = PeerStatus{
			Index:    i,
			Upstream: cfg.Upstream,
			Addr:     cfg.Addr,
			Enabled:  cfg.Enabled,
		}
		if !cfg.Enabled || table == nil || i >= table.len() {
			continue
		}
		snap := table.slot(i).snapshot()
		out[i].Owner = snap.Owner
		out[i].Down = snap.Down
		out[i].LastOutcome = snap.LastCode.String()
		out[i].RunLength = snap.RunLength
		out[i].SinceMillis = snap.Since
		if r.confidence != nil {
			out[i].Confidence = r.confidence.Score(cfg.Upstream)
		}
	}
	return out
}

// Uptime reports how long, in wall-clock time, the current verdict for
// index has held, using the registry's monotonic clock for "now" so it
// agrees with the clock that produced Since in the first place.
func (r *Registry) Uptime(index int) time.Duration {
	r.mu.Lock()
	inRange := index >= 0 && index < len(r.peers)
	r.mu.Unlock()
	if !inRange || r.table == nil {
		return 0
	}
	since := r.table.slot(index).snapshot().Since
	if since == 0 {
		return 0
	}
	now := r.clock.NowMillis()
	if now <= since {
		return 0
	}
	return time.Duration(now-since) * time.Millisecond
}
