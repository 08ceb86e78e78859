package healthcheck

import "go.uber.org/zap"

// StalenessDeadline is the age, in milliseconds, beyond which a peer's
// current owner is presumed dead.
func StalenessDeadline(delayMillis, timeoutMillis int64) int64 {
	return (delayMillis + timeoutMillis) * 3
}

// claimResult is the outcome of a single ownership attempt, reported back to
// the caller so it can decide which timer to arm next.
type claimResult int

const (
	claimAlreadyOwned claimResult = iota
	claimTookOwnership
	claimTookOverFromDeadOwner
	claimOwnedByLiveWorker
)

// claimOrRenew attempts to claim or renew ownership of a peer. It is
// called from a worker's claim_timer handler. now must come from a
// monotonicClock so action_time never regresses across the
// read-modify-write. Probe-progress touches to action_time deliberately
// do NOT go through this spinlock — the lock guards owner transitions
// only; the owner is the sole writer of the other shared fields, so a
// lock-free atomic store is sufficient for those.
func claimOrRenew(slot *SharedSlot, self string, now, delayMillis, timeoutMillis int64, logger *zap.Logger) claimResult {
	if !slot.acquireSpin() {
		// Spin exhausted without acquiring the lock: another worker is
		// mid-transition. Treat as "owned by a live worker" for this tick;
		// the claim_timer will retry.
		return claimOwnedByLiveWorker
	}

	var result claimResult
	owner := slot.Owner()
	actionTime := slot.actionTime.Load()

	switch {
	case owner == self:
		result = claimAlreadyOwned

	case owner == "":
		slot.owner.Store(self)
		slot.actionTime.Store(now)
		result = claimTookOwnership

	case now-actionTime >= StalenessDeadline(delayMillis, timeoutMillis):
		slot.owner.Store(self)
		slot.actionTime.Store(now)
		result = claimTookOverFromDeadOwner

	default:
		result = claimOwnedByLiveWorker
	}

	if forced := slot.release(); forced {
		logger.Error("ownership spinlock release failed CAS; forcing lock to zero",
			zap.String("worker", self))
	}

	return result
}
