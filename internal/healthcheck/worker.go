package healthcheck

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker is the in-process analogue of an nginx worker process: a set of
// goroutines, one per enabled peer, not an OS process. A process normally runs
// exactly one Worker per configured worker count, each sharing the same
// Registry and therefore the same SharedTable.
type Worker struct {
	id       string
	registry *Registry
	rng      *rand.Rand

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WorkerInit starts one worker bound to parent. It lazily allocates the
// registry's shared table on first call (whichever worker initializes it
// first), then spawns one goroutine per enabled registered peer. id should
// be unique per worker within the process; it doubles as the ownership
// token written into SharedSlot.owner and as the seed for this worker's
// jitter source, so that startup jitter differs per worker and avoids a
// thundering herd of workers all probing every peer in lockstep at startup.
func (r *Registry) WorkerInit(parent context.Context, id string) *Worker {
	table := r.ensureTable()

	ctx, cancel := context.WithCancel(parent)
	w := &Worker{
		id:       id,
		registry: r,
		rng:      rand.New(rand.NewSource(hashSeed(id))),
		ctx:      ctx,
		cancel:   cancel,
	}

	r.mu.Lock()
	peers := make([]PeerConfig, len(r.peers))
	copy(peers, r.peers)
	r.mu.Unlock()

	for i, cfg := range peers {
		if !cfg.Enabled {
			continue
		}
		if i >= table.len() {
			continue
		}
		w.wg.Add(1)
		go func(index int, cfg PeerConfig) {
			defer w.wg.Done()
			w.runPeerLoop(index, cfg, table.slot(index))
		}(i, cfg)
	}

	return w
}

// Shutdown cancels every peer loop this worker owns and blocks until they
// have all returned. It arms no new timers and starts no new probes; any
// probe already in flight is given until its own context deadline (bounded
// by cfg.Timeout) rather than being killed outright.
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

func hashSeed(id string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64())
}

// jitter returns a random duration in [0, d). A zero or negative d yields 0.
func jitter(rng *rand.Rand, d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(d)))
}

// runPeerLoop is the per-worker, per-peer state machine: a claim_timer
// that fires until this worker owns the peer (or discovers it is owned by
// a live peer and backs off), followed by a recurring delay_timer that
// drives one probe per tick for as long as ownership holds. It uses two
// independent timers rather than one shared ticker because claiming and
// probing run on genuinely different schedules.
func (w *Worker) runPeerLoop(index int, cfg PeerConfig, slot *SharedSlot) {
	logger := w.registry.logger
	clock := w.registry.clock

	claimTimer := time.NewTimer(jitter(w.rng, cfg.Delay))
	defer claimTimer.Stop()

	var delayTimer *time.Timer
	defer func() {
		if delayTimer != nil {
			delayTimer.Stop()
		}
	}()

	var delayC <-chan time.Time

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-claimTimer.C:
			now := clock.NowMillis()
			result := claimOrRenew(slot, w.id, now, cfg.Delay.Milliseconds(), cfg.Timeout.Milliseconds(), logger)

			switch result {
			case claimTookOwnership, claimAlreadyOwned:
				delayTimer = time.NewTimer(cfg.Delay)
				delayC = delayTimer.C

			case claimTookOverFromDeadOwner:
				if w.registry.metrics != nil {
					w.registry.metrics.OwnershipTransfers.WithLabelValues(cfg.Addr).Inc()
				}
				if logger != nil {
					logger.Info("took over peer from presumed-dead owner",
						zap.String("worker", w.id), zap.String("peer", cfg.Addr))
				}
				delayTimer = time.NewTimer(cfg.Delay)
				delayC = delayTimer.C

			case claimOwnedByLiveWorker:
				claimTimer.Reset(cfg.Delay * 10)
			}

		case <-delayC:
			if slot.Owner() != w.id {
				// Another worker took this peer over; stop probing and
				// go back to retrying the claim.
				delayC = nil
				claimTimer.Reset(cfg.Delay * 10)
				continue
			}
			outcome, rtt := runProbe(context.WithoutCancel(w.ctx), w.registry.dialer, cfg)
			now := clock.NowMillis()
			MarkFinished(slot, cfg.Addr, outcome, now, cfg.Failcount, w.registry.metrics, logger)

			if w.registry.metrics != nil {
				w.registry.metrics.ProbeDuration.WithLabelValues(cfg.Addr).Observe(rtt.Seconds())
				if outcome == OK {
					w.registry.metrics.ProbeRTT.WithLabelValues(cfg.Addr).Set(rtt.Seconds())
				}
			}
			if w.registry.confidence != nil {
				w.registry.confidence.Record(cfg.Upstream, rtt.Seconds(), !outcome.Bad())
			}

			select {
			case <-w.ctx.Done():
				return
			default:
				delayTimer.Reset(cfg.Delay)
			}
		}
	}
}
