package healthcheck

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/kflynn/healthcheckd/internal/metrics"
)

// confidenceWindowSize is the number of most recent probes each upstream's
// confidence score is computed from.
const confidenceWindowSize = 10

// sampleWindow is a small circular buffer of float64 samples.
type sampleWindow struct {
	mu      sync.RWMutex
	samples []float64
	index   int
	count   int
}

func newSampleWindow(size int) *sampleWindow {
	return &sampleWindow{samples: make([]float64, size)}
}

func (w *sampleWindow) add(v float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples[w.index] = v
	w.index = (w.index + 1) % len(w.samples)
	if w.count < len(w.samples) {
		w.count++
	}
}

func (w *sampleWindow) average() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.count == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < w.count; i++ {
		sum += w.samples[i]
	}
	return sum / float64(w.count)
}

func (w *sampleWindow) variance() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.count == 0 {
		return 0
	}
	mean := 0.0
	for i := 0; i < w.count; i++ {
		mean += w.samples[i]
	}
	mean /= float64(w.count)
	variance := 0.0
	for i := 0; i < w.count; i++ {
		diff := w.samples[i] - mean
		variance += diff * diff
	}
	return variance / float64(w.count)
}

// upstreamConfidence is the per-upstream computation state: three sliding
// windows (RTT, success rate, RTT variance) combined into a single [0,1]
// score. There is no cross-node clock to drift in this domain, and every
// terminal Outcome already maps to success or failure through
// Outcome.Bad(), so RTT, availability and variance are the only three
// components, weighted to sum to 1.0.
type upstreamConfidence struct {
	rtt      *sampleWindow
	success  *sampleWindow
	variance *sampleWindow
}

func newUpstreamConfidence() *upstreamConfidence {
	return &upstreamConfidence{
		rtt:      newSampleWindow(confidenceWindowSize),
		success:  newSampleWindow(confidenceWindowSize),
		variance: newSampleWindow(confidenceWindowSize),
	}
}

const (
	confAlphaRTT   = 0.30
	confBetaAvail  = 0.50
	confGammaVar   = 0.20
	confRTTBadSecs = 0.2    // 200ms
	confVarBadSecs = 0.0025 // 50ms^2 expressed in seconds^2
)

func (u *upstreamConfidence) record(rttSeconds float64, ok bool) float64 {
	u.rtt.add(rttSeconds)
	if ok {
		u.success.add(1)
	} else {
		u.success.add(0)
	}
	u.variance.add(u.rtt.variance())

	rttHealth := 1.0 - math.Min(u.rtt.average()/confRTTBadSecs, 1.0)
	availHealth := u.success.average()
	varHealth := 1.0 - math.Min(u.variance.average()/confVarBadSecs, 1.0)

	return confAlphaRTT*rttHealth + confBetaAvail*availHealth + confGammaVar*varHealth
}

// ConfidenceTracker aggregates per-upstream confidence scores across every
// peer that belongs to the same upstream group. It is a supplementary,
// non-authoritative signal: the published down bit in SharedSlot is never
// derived from it, only from the anti-flap verdict filter in verdict.go.
type ConfidenceTracker struct {
	mu      sync.Mutex
	byGroup map[string]*upstreamConfidence
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewConfidenceTracker creates a tracker. m may be nil, in which case scores
// are computed but never exported.
func NewConfidenceTracker(logger *zap.Logger, m *metrics.Metrics) *ConfidenceTracker {
	return &ConfidenceTracker{
		byGroup: make(map[string]*upstreamConfidence),
		logger:  logger,
		metrics: m,
	}
}

// Record folds one probe's outcome into upstream's running score and, if
// metrics are wired, updates the exported gauge.
func (t *ConfidenceTracker) Record(upstream string, rttSeconds float64, ok bool) float64 {
	t.mu.Lock()
	u, found := t.byGroup[upstream]
	if !found {
		u = newUpstreamConfidence()
		t.byGroup[upstream] = u
	}
	t.mu.Unlock()

	score := u.record(rttSeconds, ok)
	if t.metrics != nil {
		t.metrics.ConfidenceScore.WithLabelValues(upstream).Set(score)
	}
	return score
}

// Score returns the most recently computed score for upstream, or 1.0
// (fully confident) if nothing has been recorded yet.
func (t *ConfidenceTracker) Score(upstream string) float64 {
	t.mu.Lock()
	u, found := t.byGroup[upstream]
	t.mu.Unlock()
	if !found {
		return 1.0
	}
	rttHealth := 1.0 - math.Min(u.rtt.average()/confRTTBadSecs, 1.0)
	availHealth := u.success.average()
	varHealth := 1.0 - math.Min(u.variance.average()/confVarBadSecs, 1.0)
	return confAlphaRTT*rttHealth + confBetaAvail*availHealth + confGammaVar*varHealth
}
