package classifier

import (
	"math"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const eps = 1e-12

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func TestPredict_UnfittedIsHalf(t *testing.T) {
	m := New(0.1)
	inputs := []FeatureVector{
		nil,
		{},
		{"a": 1},
		{"x": 1000, "y": -3.5},
	}
	for _, in := range inputs {
		if p := m.Predict(in); p != 0.5 {
			t.Errorf("Predict(%v) on unfitted model: want 0.5, got %v", in, p)
		}
	}
	if m.Fitted() {
		t.Error("model should be unfitted before any update")
	}
}

// TestUpdate_SingleStep: {A:1, B:2}, label 1, rate 0.1, from zero state.
func TestUpdate_SingleStep(t *testing.T) {
	m := New(0.1)
	snap := m.Update(FeatureVector{"A": 1, "B": 2}, true)

	if !approx(snap.Weights["A"], 0.05) {
		t.Errorf("weight[A]: want 0.05, got %v", snap.Weights["A"])
	}
	if !approx(snap.Weights["B"], 0.1) {
		t.Errorf("weight[B]: want 0.1, got %v", snap.Weights["B"])
	}
	if !approx(snap.Bias, 0.05) {
		t.Errorf("bias: want 0.05, got %v", snap.Bias)
	}
	if !m.Fitted() {
		t.Error("model should be fitted after an update")
	}
}

// TestUpdate_NotIdempotent: repeating the same example keeps moving the
// prediction towards the label.
func TestUpdate_NotIdempotent(t *testing.T) {
	features := FeatureVector{"A": 1, "B": 2}
	for _, label := range []bool{true, false} {
		m := New(0.1)
		prev := m.Predict(features)
		prevW := 0.0
		for i := 0; i < 20; i++ {
			snap := m.Update(features, label)
			p := m.Predict(features)
			if label && !(p > prev) || !label && !(p < prev) {
				t.Fatalf("label=%v step %d: prediction did not move towards label (%v -> %v)", label, i, prev, p)
			}
			w := snap.Weights["A"]
			if label && !(w > prevW) || !label && !(w < prevW) {
				t.Fatalf("label=%v step %d: weight[A] did not move further (%v -> %v)", label, i, prevW, w)
			}
			prev, prevW = p, w
		}
	}
}

func TestPredict_UnseenFeaturesIgnored(t *testing.T) {
	m := New(0.5)
	m.Update(FeatureVector{"A": 1}, true)

	withUnseen := m.Predict(FeatureVector{"A": 1, "never-seen": 50})
	without := m.Predict(FeatureVector{"A": 1})
	if withUnseen != without {
		t.Errorf("unseen feature changed prediction: %v vs %v", withUnseen, without)
	}
	if _, ok := m.State().Weights["never-seen"]; ok {
		t.Error("Predict must not add weights")
	}
}

func TestWeights_GrowMonotonically(t *testing.T) {
	m := New(0.1)
	m.Update(FeatureVector{"A": 1}, true)
	m.Update(FeatureVector{"B": 1}, false)
	m.Update(FeatureVector{"A": 2}, false)

	w := m.State().Weights
	if len(w) != 2 {
		t.Fatalf("expected 2 weights, got %d: %v", len(w), w)
	}
	if _, ok := w["B"]; !ok {
		t.Error("weight B disappeared after later updates")
	}
}

func TestUpdate_NotifiesObserver(t *testing.T) {
	var got []Snapshot
	m := New(0.1, WithObserver(ObserverFunc(func(s Snapshot) {
		got = append(got, s)
	})))

	m.Update(FeatureVector{"A": 1}, true)
	m.Update(FeatureVector{"B": 1}, true)

	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if len(got[0].Weights) != 1 || len(got[1].Weights) != 2 {
		t.Errorf("observer should receive the full weight mapping: %v / %v", got[0].Weights, got[1].Weights)
	}
	if got[1].Updates != 2 {
		t.Errorf("Updates: want 2, got %d", got[1].Updates)
	}
	// Snapshots are copies.
	got[0].Weights["A"] = 99
	if m.State().Weights["A"] == 99 {
		t.Error("snapshot aliases model state")
	}
}

// TestUpdate_ObserverMayCallModel: the observer runs outside the lock.
func TestUpdate_ObserverMayCallModel(t *testing.T) {
	var m *Model
	var seen float64
	m = New(0.1, WithObserver(ObserverFunc(func(Snapshot) {
		seen = m.Predict(FeatureVector{"A": 1})
	})))
	m.Update(FeatureVector{"A": 1}, true)
	if seen <= 0.5 {
		t.Errorf("observer saw stale prediction %v", seen)
	}
}

func TestSigmoid_Saturates(t *testing.T) {
	if got := sigmoid(1000); got != 1 {
		t.Errorf("sigmoid(1000): want exactly 1, got %v", got)
	}
	if got := sigmoid(-1000); got != 0 {
		t.Errorf("sigmoid(-1000): want exactly 0, got %v", got)
	}
}

// TestUpdate_NaNPropagates: no input validation.
func TestUpdate_NaNPropagates(t *testing.T) {
	m := New(0.1)
	snap := m.Update(FeatureVector{"A": math.NaN()}, true)
	if !math.IsNaN(snap.Weights["A"]) {
		t.Errorf("weight[A]: want NaN, got %v", snap.Weights["A"])
	}
}

func TestWithState(t *testing.T) {
	src := New(0.2)
	src.Update(FeatureVector{"A": 1, "B": 1}, true)
	saved := src.State()

	restored := New(0.2, WithState(saved))
	in := FeatureVector{"A": 1, "B": 3}
	if src.Predict(in) != restored.Predict(in) {
		t.Error("restored model predicts differently")
	}
	if !restored.Fitted() {
		t.Error("restored model should be fitted")
	}
}

func TestSnapshotTop(t *testing.T) {
	s := Snapshot{Weights: map[string]float64{"a": 0.1, "b": -0.9, "c": 0.5, "d": 0.5}}
	top := s.Top(3)
	if len(top) != 3 {
		t.Fatalf("expected 3, got %d", len(top))
	}
	if top[0].Feature != "b" || top[1].Feature != "c" || top[2].Feature != "d" {
		t.Errorf("unexpected order: %+v", top)
	}
	if all := s.Top(0); len(all) != 4 {
		t.Errorf("Top(0): want all 4, got %d", len(all))
	}
}

func TestModel_ConcurrentUpdates(t *testing.T) {
	m := New(0.01)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Update(FeatureVector{"A": 1}, j%2 == 0)
				m.Predict(FeatureVector{"A": 1})
			}
		}()
	}
	wg.Wait()
	if got := m.State().Updates; got != 400 {
		t.Errorf("Updates: want 400, got %d", got)
	}
}
