package ml

import (
	"fmt"
	"math"
)

// LogisticRegression is a fitted binary classifier. Label 1 is the
// positive ("fraud") class, label 0 legitimate.
type LogisticRegression struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Classes   []int     `json:"classes"`
}

// Classify returns one label per input row.
func (m *LogisticRegression) Classify(matrix [][]float64) ([]int, error) {
	probs, err := m.ClassProbabilities(matrix)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(probs))
	for i, p := range probs {
		if p[1] >= 0.5 {
			labels[i] = 1
		}
	}
	return labels, nil
}

// ClassProbabilities returns [P(legit), P(fraud)] per input row.
func (m *LogisticRegression) ClassProbabilities(matrix [][]float64) ([][2]float64, error) {
	probs := make([][2]float64, len(matrix))
	for i, row := range matrix {
		if len(row) != len(m.Weights) {
			return nil, &InferenceError{
				Reason: fmt.Sprintf("row %d has %d features, model expects %d", i+1, len(row), len(m.Weights)),
			}
		}
		z := m.Intercept
		for j, v := range row {
			z += m.Weights[j] * v
		}
		p := sigmoid(z)
		probs[i] = [2]float64{1 - p, p}
	}
	return probs, nil
}

func (m *LogisticRegression) validate() error {
	if len(m.Weights) != len(FeatureColumns()) {
		return fmt.Errorf("model has %d weights, feature order requires %d", len(m.Weights), len(FeatureColumns()))
	}
	if len(m.Classes) != 2 || m.Classes[0] != 0 || m.Classes[1] != 1 {
		return fmt.Errorf("model classes %v, expected [0 1]", m.Classes)
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
