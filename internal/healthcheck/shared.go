package healthcheck

import (
	"sync/atomic"
)

// spinMaxIterations bounds the ownership spinlock's busy-wait. The critical
// section it guards only ever touches local memory and must never be held
// across I/O, sleeps, or timer operations, so a bound this small is
// generous, not a correctness risk.
const spinMaxIterations = 10000

// SharedSlot is the cross-worker state for a single registered peer. Every
// worker goroutine can read every field; only the current owner may mutate
// the non-ownership fields, and only while holding the slot's spinlock may
// any worker mutate owner. actionTime is written under the spinlock on an
// ownership change and by the owner with a plain atomic store after each
// probe (see verdict.go). down is additionally exposed as
// a lock-free atomic so IsDown never contends with a probe in flight.
//
// Because Go goroutines already share one address space, "shared memory"
// collapses to a struct every worker holds a pointer to, allocated once
// up front as a single []SharedSlot.
type SharedSlot struct {
	owner      atomic.Value // string; zero value (nil) means unclaimed
	lock       atomic.Int32
	actionTime atomic.Int64 // monotonic milliseconds, see clock.go

	// Fields below are mutated only by the current owner, and are not
	// synchronized independently — callers other than the owner and the
	// status snapshot (which tolerates a torn cross-field read) must not
	// rely on them being internally consistent at every instant.
	lastVerdict bool
	runLength   int32
	since       int64
	lastCode    Outcome

	down atomic.Bool
}

// Owner returns the identifier of the worker currently responsible for this
// peer, or "" if unclaimed.
func (s *SharedSlot) Owner() string {
	v, _ := s.owner.Load().(string)
	return v
}

// ActionTime returns the monotonic millisecond timestamp of the most recent
// probe progress or ownership touch.
func (s *SharedSlot) ActionTime() int64 {
	return s.actionTime.Load()
}

// Down is the published health bit consulted by request routing. It is the
// only field a non-owner ever reads for a correctness-relevant decision, and
// the only field this type guarantees is never torn.
func (s *SharedSlot) Down() bool {
	return s.down.Load()
}

// snapshot captures a best-effort, non-atomic read of every field, used
// only by the status page / operator tooling. Cross-field consistency is
// not guaranteed to readers other than the owner; this is acceptable
// because IsDown reads only down.
type slotSnapshot struct {
	Owner      string
	ActionTime int64
	LastVerdict bool
	RunLength  int32
	Since      int64
	LastCode   Outcome
	Down       bool
}

func (s *SharedSlot) snapshot() slotSnapshot {
	return slotSnapshot{
		Owner:       s.Owner(),
		ActionTime:  s.actionTime.Load(),
		LastVerdict: s.lastVerdict,
		RunLength:   s.runLength,
		Since:       s.since,
		LastCode:    s.lastCode,
		Down:        s.down.Load(),
	}
}

// acquireSpin spins on the slot's lock word until it wins the CAS from 0 to
// 1 or exhausts spinMaxIterations. It never sleeps or yields to I/O: the
// critical section it guards is too short to justify a blocking mutex.
func (s *SharedSlot) acquireSpin() bool {
	for i := 0; i < spinMaxIterations; i++ {
		if s.lock.CompareAndSwap(0, 1) {
			return true
		}
	}
	return false
}

// release clears the lock via CAS. On CAS failure (meaning the lock word
// was not 1, an invariant violation) it is forced to zero as a defensive
// fallback, and the caller is expected to log an error — see ownership.go,
// the only call site.
func (s *SharedSlot) release() (forced bool) {
	if s.lock.CompareAndSwap(1, 0) {
		return false
	}
	s.lock.Store(0)
	return true
}

// SharedTable is the fixed-length, peer-indexed array of SharedSlots. It
// is allocated exactly once, by Registry.ensureTable, guarded by
// sync.Once.
type SharedTable struct {
	slots []*SharedSlot
}

func newSharedTable(n int) *SharedTable {
	t := &SharedTable{slots: make([]*SharedSlot, n)}
	for i := range t.slots {
		t.slots[i] = &SharedSlot{}
	}
	return t
}

func (t *SharedTable) slot(index int) *SharedSlot {
	return t.slots[index]
}

func (t *SharedTable) len() int {
	return len(t.slots)
}
