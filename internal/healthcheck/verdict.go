package healthcheck

import (
	"go.uber.org/zap"

	"github.com/kflynn/healthcheckd/internal/metrics"
)

// MarkFinished applies the terminal outcome of one probe to slot. It is
// the only place shared.down is ever written.
//
// This is deliberately idempotent: once run_length >= failcount, down is
// rewritten on every subsequent probe, not just on the transition that
// first crossed the threshold. A long run of healthy checks keeps
// reaffirming down=false; this is benign.
//
// The first probe on a fresh slot (runLength 0) always starts a new run,
// so since is stamped even when that first outcome is OK.
func MarkFinished(slot *SharedSlot, peerName string, t Outcome, now int64, failcount int32, m *metrics.Metrics, logger *zap.Logger) {
	bad := t.Bad()

	if bad == slot.lastVerdict && slot.runLength > 0 {
		slot.runLength++
	} else {
		slot.lastVerdict = bad
		slot.runLength = 1
		slot.since = now
	}

	if slot.runLength >= failcount {
		slot.down.Store(bad)
	}

	slot.lastCode = t
	slot.actionTime.Store(now)

	if m != nil {
		m.ProbesTotal.WithLabelValues(peerName, t.String()).Inc()
		m.RunLength.WithLabelValues(peerName).Set(float64(slot.runLength))
		if slot.down.Load() {
			m.PeerDown.WithLabelValues(peerName).Set(1)
		} else {
			m.PeerDown.WithLabelValues(peerName).Set(0)
		}
	}

	if logger != nil {
		if t == BadState {
			logger.Warn("health probe hit internal invariant violation",
				zap.String("peer", peerName), zap.String("outcome", t.String()))
		} else if bad {
			logger.Warn("health probe failed",
				zap.String("peer", peerName),
				zap.String("outcome", t.String()),
				zap.Int32("run_length", slot.runLength))
		} else {
			logger.Debug("health probe succeeded",
				zap.String("peer", peerName),
				zap.Int32("run_length", slot.runLength))
		}
	}
}
