package healthcheck

import (
	"testing"

	"go.uber.org/zap"
)

// ownership claim/renew semantics: unclaimed peers are claimed, the
// current owner renews without a transfer, a live owner blocks a second
// worker, and a stale owner is taken over exactly at the deadline.
func TestClaimOrRenewUnclaimedIsClaimed(t *testing.T) {
	slot := &SharedSlot{}
	result := claimOrRenew(slot, "worker-a", 1000, 5000, 1000, zap.NewNop())
	if result != claimTookOwnership {
		t.Fatalf("got %v, want claimTookOwnership", result)
	}
	if slot.Owner() != "worker-a" {
		t.Fatalf("owner = %q, want worker-a", slot.Owner())
	}
	if slot.ActionTime() != 1000 {
		t.Fatalf("action_time = %d, want 1000", slot.ActionTime())
	}
}

func TestClaimOrRenewSameOwnerRenews(t *testing.T) {
	slot := &SharedSlot{}
	claimOrRenew(slot, "worker-a", 1000, 5000, 1000, zap.NewNop())

	result := claimOrRenew(slot, "worker-a", 2000, 5000, 1000, zap.NewNop())
	if result != claimAlreadyOwned {
		t.Fatalf("got %v, want claimAlreadyOwned", result)
	}
	if slot.Owner() != "worker-a" {
		t.Fatalf("owner changed unexpectedly to %q", slot.Owner())
	}
	// claimAlreadyOwned must not touch action_time; that is verdict.go's job.
	if slot.ActionTime() != 1000 {
		t.Fatalf("action_time = %d, want unchanged at 1000", slot.ActionTime())
	}
}

func TestClaimOrRenewLiveOwnerBlocksOtherWorker(t *testing.T) {
	slot := &SharedSlot{}
	delayMillis, timeoutMillis := int64(5000), int64(1000)
	deadline := StalenessDeadline(delayMillis, timeoutMillis)

	claimOrRenew(slot, "worker-a", 1000, delayMillis, timeoutMillis, zap.NewNop())

	result := claimOrRenew(slot, "worker-b", 1000+deadline-1, delayMillis, timeoutMillis, zap.NewNop())
	if result != claimOwnedByLiveWorker {
		t.Fatalf("got %v, want claimOwnedByLiveWorker", result)
	}
	if slot.Owner() != "worker-a" {
		t.Fatalf("owner changed to %q, want worker-a unchanged", slot.Owner())
	}
}

func TestClaimOrRenewStaleOwnerIsTakenOver(t *testing.T) {
	slot := &SharedSlot{}
	delayMillis, timeoutMillis := int64(5000), int64(1000)
	deadline := StalenessDeadline(delayMillis, timeoutMillis)

	claimOrRenew(slot, "worker-a", 1000, delayMillis, timeoutMillis, zap.NewNop())

	now := 1000 + deadline
	result := claimOrRenew(slot, "worker-b", now, delayMillis, timeoutMillis, zap.NewNop())
	if result != claimTookOverFromDeadOwner {
		t.Fatalf("got %v, want claimTookOverFromDeadOwner", result)
	}
	if slot.Owner() != "worker-b" {
		t.Fatalf("owner = %q, want worker-b", slot.Owner())
	}
	if slot.ActionTime() != now {
		t.Fatalf("action_time = %d, want %d", slot.ActionTime(), now)
	}
}

func TestStalenessDeadlineFormula(t *testing.T) {
	if got := StalenessDeadline(5000, 1000); got != 18000 {
		t.Fatalf("StalenessDeadline(5000, 1000) = %d, want 18000", got)
	}
	if got := StalenessDeadline(0, 0); got != 0 {
		t.Fatalf("StalenessDeadline(0, 0) = %d, want 0", got)
	}
}

func TestAcquireSpinAndRelease(t *testing.T) {
	slot := &SharedSlot{}
	if !slot.acquireSpin() {
		t.Fatal("expected to acquire uncontended lock")
	}
	if slot.acquireSpin() {
		t.Fatal("expected re-acquire of held lock to fail (spin exhausts)")
	}
	if forced := slot.release(); forced {
		t.Fatal("release from held state should not be forced")
	}
	if !slot.acquireSpin() {
		t.Fatal("expected to reacquire after release")
	}
}
