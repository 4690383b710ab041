// Package classifier implements a minimal online logistic regression model,
// trained one example at a time by gradient descent.
package classifier

import (
	"math"
	"sort"
	"sync"
)

// FeatureVector is a sparse mapping from feature name to value. Absent keys
// are implicitly zero.
type FeatureVector map[string]float64

// Snapshot is a copy of a model's parameters at one point in time.
type Snapshot struct {
	Weights map[string]float64 `json:"weights"`
	Bias    float64            `json:"bias"`
	Updates int                `json:"updates"`
}

// Weight is one named weight, used when ranking features.
type Weight struct {
	Feature string
	Value   float64
}

// Top returns the n weights with the largest magnitude, ties broken by name.
// n <= 0 returns all of them.
func (s Snapshot) Top(n int) []Weight {
	out := make([]Weight, 0, len(s.Weights))
	for k, v := range s.Weights {
		out = append(out, Weight{Feature: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Value), math.Abs(out[j].Value)
		if ai != aj {
			return ai > aj
		}
		return out[i].Feature < out[j].Feature
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Observer is notified synchronously after every update.
type Observer interface {
	Observe(Snapshot)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) Observe(s Snapshot) { f(s) }

// Option configures a Model.
type Option func(*Model)

// WithObserver registers an observer called after each update.
func WithObserver(o Observer) Option {
	return func(m *Model) { m.observer = o }
}

// WithState restores previously saved parameters.
func WithState(s Snapshot) Option {
	return func(m *Model) {
		for k, v := range s.Weights {
			m.weights[k] = v
		}
		m.bias = s.Bias
		m.updates = s.Updates
	}
}

// Model is an online binary logistic regression classifier. It starts
// unfitted, with every weight and the bias at zero, and accepts updates
// indefinitely. Weights are added lazily as new features are seen and never
// removed. A Model is safe for concurrent use.
//
// Inputs are not validated: NaN or infinite feature values propagate into the
// weights.
type Model struct {
	mu           sync.Mutex
	weights      map[string]float64
	bias         float64
	learningRate float64
	updates      int
	observer     Observer
}

// New returns an unfitted model with the given learning rate.
func New(learningRate float64, opts ...Option) *Model {
	m := &Model{
		weights:      make(map[string]float64),
		learningRate: learningRate,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LearningRate returns the step size used by Update.
func (m *Model) LearningRate() float64 { return m.learningRate }

// Predict returns sigmoid(bias + Σ weight[k]*features[k]) over the keys of
// features. Features the model has not seen contribute nothing.
func (m *Model) Predict(features FeatureVector) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predict(features)
}

func (m *Model) predict(features FeatureVector) float64 {
	z := m.bias
	for k, x := range features {
		z += m.weights[k] * x
	}
	return sigmoid(z)
}

// Update applies one gradient step towards label (true = 1, false = 0) and
// notifies the observer with the resulting parameters, which are also
// returned.
func (m *Model) Update(features FeatureVector, label bool) Snapshot {
	m.mu.Lock()
	y := 0.0
	if label {
		y = 1
	}
	step := m.learningRate * (y - m.predict(features))
	for k, x := range features {
		m.weights[k] += step * x
	}
	m.bias += step
	m.updates++
	snap := m.snapshot()
	obs := m.observer
	m.mu.Unlock()

	// Called outside the lock so observers may query the model.
	if obs != nil {
		obs.Observe(snap)
	}
	return snap
}

// Fitted reports whether at least one update has been applied.
func (m *Model) Fitted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates > 0
}

// State returns a copy of the current parameters.
func (m *Model) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Model) snapshot() Snapshot {
	w := make(map[string]float64, len(m.weights))
	for k, v := range m.weights {
		w[k] = v
	}
	return Snapshot{Weights: w, Bias: m.bias, Updates: m.updates}
}

// sigmoid is the logistic function. Large |z| saturates to exactly 0 or 1.
func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
