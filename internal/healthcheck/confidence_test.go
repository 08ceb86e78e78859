package healthcheck

import (
	"testing"

	"go.uber.org/zap"
)

func TestConfidenceScoreDefaultsToFullBeforeAnyRecord(t *testing.T) {
	tr := NewConfidenceTracker(zap.NewNop(), nil)
	if got := tr.Score("web"); got != 1.0 {
		t.Fatalf("Score before any record = %v, want 1.0", got)
	}
}

func TestConfidenceScoreDropsOnFailures(t *testing.T) {
	tr := NewConfidenceTracker(zap.NewNop(), nil)

	for i := 0; i < confidenceWindowSize; i++ {
		tr.Record("web", 0.01, true)
	}
	healthy := tr.Score("web")

	for i := 0; i < confidenceWindowSize; i++ {
		tr.Record("web", 0.01, false)
	}
	unhealthy := tr.Score("web")

	if unhealthy >= healthy {
		t.Fatalf("score did not drop after failures: healthy=%v unhealthy=%v", healthy, unhealthy)
	}
}

func TestConfidenceScoreBounded(t *testing.T) {
	tr := NewConfidenceTracker(zap.NewNop(), nil)
	for i := 0; i < confidenceWindowSize*2; i++ {
		tr.Record("web", 10.0, false)
	}
	score := tr.Score("web")
	if score < 0 || score > 1 {
		t.Fatalf("score out of [0,1]: %v", score)
	}
}

func TestConfidenceTracksUpstreamsIndependently(t *testing.T) {
	tr := NewConfidenceTracker(zap.NewNop(), nil)
	for i := 0; i < confidenceWindowSize; i++ {
		tr.Record("good", 0.01, true)
		tr.Record("bad", 1.0, false)
	}

	if tr.Score("good") <= tr.Score("bad") {
		t.Fatalf("expected good upstream score > bad upstream score: good=%v bad=%v",
			tr.Score("good"), tr.Score("bad"))
	}
}

func TestSampleWindowAverageAndVariance(t *testing.T) {
	w := newSampleWindow(3)
	w.add(1)
	w.add(2)
	w.add(3)
	if got := w.average(); got != 2 {
		t.Fatalf("average = %v, want 2", got)
	}
	// window full, next sample evicts the oldest (1)
	w.add(4)
	if got := w.average(); got != 3 {
		t.Fatalf("average after eviction = %v, want 3", got)
	}
}

func TestSampleWindowEmptyIsZero(t *testing.T) {
	w := newSampleWindow(5)
	if w.average() != 0 {
		t.Fatal("average of empty window should be 0")
	}
	if w.variance() != 0 {
		t.Fatal("variance of empty window should be 0")
	}
}
