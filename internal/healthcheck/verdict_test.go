package healthcheck

import "testing"

// the published down bit does not flip until failcount consecutive
// like-kind outcomes have been recorded.
func TestMarkFinishedRequiresConsecutiveFailures(t *testing.T) {
	slot := &SharedSlot{}
	const failcount = int32(3)

	for i := int64(1); i < int64(failcount); i++ {
		MarkFinished(slot, "peer", BadConn, i, failcount, nil, nil)
		if slot.Down() {
			t.Fatalf("after %d consecutive failures, down flipped early (failcount=%d)", i, failcount)
		}
	}

	MarkFinished(slot, "peer", BadConn, int64(failcount), failcount, nil, nil)
	if !slot.Down() {
		t.Fatalf("after %d consecutive failures, down should be true", failcount)
	}
}

// once the threshold is crossed, every subsequent like-kind outcome
// reaffirms the bit (idempotent), it does not require re-crossing.
func TestMarkFinishedIdempotentReaffirmation(t *testing.T) {
	slot := &SharedSlot{}
	const failcount = int32(2)

	MarkFinished(slot, "peer", BadConn, 1, failcount, nil, nil)
	MarkFinished(slot, "peer", BadConn, 2, failcount, nil, nil)
	if !slot.Down() {
		t.Fatal("expected down after 2 consecutive failures with failcount=2")
	}

	for i := int64(3); i < 10; i++ {
		MarkFinished(slot, "peer", BadConn, i, failcount, nil, nil)
		if !slot.Down() {
			t.Fatalf("down unexpectedly cleared at tick %d", i)
		}
		if slot.runLength != int32(i) {
			t.Fatalf("run_length = %d, want %d", slot.runLength, i)
		}
	}
}

// A mixed-kind outcome resets the run length and, since it differs from the
// last verdict, does not immediately flip down back.
func TestMarkFinishedResetsRunOnVerdictChange(t *testing.T) {
	slot := &SharedSlot{}
	const failcount = int32(2)

	MarkFinished(slot, "peer", BadConn, 1, failcount, nil, nil)
	MarkFinished(slot, "peer", BadConn, 2, failcount, nil, nil)
	if !slot.Down() {
		t.Fatal("expected down after 2 consecutive failures")
	}

	MarkFinished(slot, "peer", OK, 3, failcount, nil, nil)
	if slot.runLength != 1 {
		t.Fatalf("run_length after verdict change = %d, want 1", slot.runLength)
	}
	if !slot.Down() {
		t.Fatal("down should still be true: only one consecutive good outcome, failcount=2")
	}

	MarkFinished(slot, "peer", OK, 4, failcount, nil, nil)
	if slot.Down() {
		t.Fatal("down should clear after 2 consecutive good outcomes")
	}
}

// since is stamped only on a verdict transition, not on every probe.
func TestMarkFinishedSinceOnlyUpdatesOnTransition(t *testing.T) {
	slot := &SharedSlot{}
	const failcount = int32(1)

	MarkFinished(slot, "peer", BadConn, 100, failcount, nil, nil)
	if slot.since != 100 {
		t.Fatalf("since = %d, want 100", slot.since)
	}

	MarkFinished(slot, "peer", BadConn, 200, failcount, nil, nil)
	if slot.since != 100 {
		t.Fatalf("since changed on a non-transition probe: got %d, want 100", slot.since)
	}

	MarkFinished(slot, "peer", OK, 300, failcount, nil, nil)
	if slot.since != 300 {
		t.Fatalf("since did not update on verdict transition: got %d, want 300", slot.since)
	}
}

func TestMarkFinishedStampsActionTimeAndLastCode(t *testing.T) {
	slot := &SharedSlot{}
	MarkFinished(slot, "peer", Timeout, 42, 1, nil, nil)
	if slot.ActionTime() != 42 {
		t.Fatalf("action_time = %d, want 42", slot.ActionTime())
	}
	if slot.lastCode != Timeout {
		t.Fatalf("last_code = %v, want Timeout", slot.lastCode)
	}
}
