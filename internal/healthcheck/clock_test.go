package healthcheck

import "testing"

func TestMonotonicClockNow(t *testing.T) {
	clock := newMonotonicClock()

	ts1 := clock.NowMillis()
	if ts1 <= 0 {
		t.Fatal("expected positive timestamp")
	}

	ts2 := clock.NowMillis()
	if ts2 <= ts1 {
		t.Errorf("expected ts2 > ts1, got ts1=%d ts2=%d", ts1, ts2)
	}
}

// action_time must never regress even under rapid repeated calls, which
// is the only situation where the OS clock's millisecond granularity would
// otherwise produce a repeat or a regression.
func TestMonotonicClockNeverRegresses(t *testing.T) {
	clock := newMonotonicClock()

	var prev int64
	for i := 0; i < 10000; i++ {
		ts := clock.NowMillis()
		if i > 0 && ts <= prev {
			t.Fatalf("monotonicity violated at iteration %d: %d not after %d", i, ts, prev)
		}
		prev = ts
	}
}

func TestMonotonicClockSurvivesSimulatedBackwardStep(t *testing.T) {
	// last is far ahead of the OS clock (year 2255), as if the wall clock
	// had been stepped backward since the previous call.
	clock := &monotonicClock{last: 9_000_000_000_000}

	ts := clock.NowMillis()
	if ts < 9_000_000_000_000 {
		t.Fatalf("clock regressed below seeded last value: %d", ts)
	}
}
