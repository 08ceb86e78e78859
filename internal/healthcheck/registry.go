package healthcheck

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kflynn/healthcheckd/internal/metrics"
)

// Registry holds the process-wide peer table and shared-memory pointer.
// One Registry is shared by every worker in a process.
type Registry struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	dialer  Dialer
	clock   *monotonicClock

	mu    sync.Mutex
	peers []PeerConfig

	tableOnce sync.Once
	table     *SharedTable

	confidence *ConfidenceTracker
}

// NewRegistry creates an empty registry. logger must not be nil; m may be
// nil (metrics become a no-op). Probes use a *net.Dialer unless SetDialer
// replaces it.
func NewRegistry(logger *zap.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		logger:     logger,
		metrics:    m,
		dialer:     defaultDialer,
		clock:      newMonotonicClock(),
		confidence: NewConfidenceTracker(logger, m),
	}
}

// Confidence returns the registry's shared confidence tracker.
func (r *Registry) Confidence() *ConfidenceTracker {
	return r.confidence
}

// SetDialer overrides the transport used for probes; intended for tests.
// It must be called before WorkerInit.
func (r *Registry) SetDialer(d Dialer) {
	r.dialer = d
}

// RegisterPeer appends a peer and returns its stable, zero-based index. It
// must be called before the first WorkerInit; there is no runtime
// create/destroy of peers once workers are running.
func (r *Registry) RegisterPeer(cfg PeerConfig) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers = append(r.peers, cfg)
	return len(r.peers) - 1
}

// Len returns the number of registered peers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

// peerConfig returns a copy of the configuration for index.
func (r *Registry) peerConfig(index int) PeerConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peers[index]
}

// ensureTable allocates the shared table exactly once, sized to however
// many peers had been registered by the time the first worker initialized.
func (r *Registry) ensureTable() *SharedTable {
	r.tableOnce.Do(func() {
		r.mu.Lock()
		n := len(r.peers)
		r.mu.Unlock()
		r.table = newSharedTable(n)
	})
	return r.table
}

// IsDown is an O(1) read, false for any disabled or out-of-range peer. It
// is not lock-free: it takes the registry mutex briefly to check the index
// and the enabled flag; the down bit itself is read with an atomic load.
func (r *Registry) IsDown(index int) bool {
	r.mu.Lock()
	inRange := index >= 0 && index < len(r.peers)
	var enabled bool
	if inRange {
		enabled = r.peers[index].Enabled
	}
	r.mu.Unlock()

	if !inRange || !enabled {
		return false
	}

	table := r.table
	if table == nil {
		return false
	}
	return table.slot(index).Down()
}
