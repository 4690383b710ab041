package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/pable/nrstats/internal/classifier"
)

// ErrNaNParameter is returned by SaveModel when the bias or a weight is NaN.
// SQLite stores NaN as NULL, so such a model cannot round-trip.
var ErrNaNParameter = errors.New("model has NaN parameters")

// SaveModel replaces the stored parameters of the named classifier.
func (db *DB) SaveModel(name string, learningRate float64, s classifier.Snapshot) error {
	if math.IsNaN(s.Bias) {
		return fmt.Errorf("%w: bias", ErrNaNParameter)
	}
	for feature, w := range s.Weights {
		if math.IsNaN(w) {
			return fmt.Errorf("%w: weight %s", ErrNaNParameter, feature)
		}
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO classifier_models(name, bias, learning_rate, updates) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			bias = excluded.bias, learning_rate = excluded.learning_rate, updates = excluded.updates`,
		name, s.Bias, learningRate, s.Updates); err != nil {
		return fmt.Errorf("upsert model: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM classifier_weights WHERE model = ?", name); err != nil {
		return fmt.Errorf("clear weights: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO classifier_weights(model, feature, weight) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for feature, w := range s.Weights {
		if _, err := stmt.Exec(name, feature, w); err != nil {
			return fmt.Errorf("insert weight %s: %w", feature, err)
		}
	}
	return tx.Commit()
}

// LoadModel returns the stored parameters and learning rate of the named
// classifier, or nil if none were saved.
func (db *DB) LoadModel(name string) (*classifier.Snapshot, float64, error) {
	s := classifier.Snapshot{Weights: make(map[string]float64)}
	var rate float64
	err := db.conn.QueryRow(
		"SELECT bias, learning_rate, updates FROM classifier_models WHERE name = ?", name).
		Scan(&s.Bias, &rate, &s.Updates)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.conn.Query("SELECT feature, weight FROM classifier_weights WHERE model = ?", name)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var feature string
		var w float64
		if err := rows.Scan(&feature, &w); err != nil {
			return nil, 0, err
		}
		s.Weights[feature] = w
	}
	return &s, rate, rows.Err()
}
