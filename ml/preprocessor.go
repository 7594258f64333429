package ml

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fraudlens/tabular"
)

// Preprocessor converts a parsed dataset into the model input matrix
// using one bundle snapshot. A single invalid row fails the whole batch
// so predictions stay index-aligned with the input.
type Preprocessor struct {
	bundle *Bundle
}

func NewPreprocessor(bundle *Bundle) *Preprocessor {
	return &Preprocessor{bundle: bundle}
}

// Transform validates required columns, coerces and scales numerics,
// encodes the category column and assembles feature vectors in fitted
// order, preserving row order.
func (p *Preprocessor) Transform(ds *tabular.Dataset) ([][]float64, error) {
	present := make(map[string]bool, len(ds.Headers))
	for _, h := range ds.Headers {
		present[h] = true
	}
	for _, col := range FeatureColumns() {
		if !present[col] {
			return nil, &ValidationError{Column: col, Reason: "required column is missing"}
		}
	}

	matrix := make([][]float64, 0, len(ds.Rows))
	for n, row := range ds.Rows {
		vector := make([]float64, 0, len(FeatureColumns()))

		for _, col := range NumericColumns() {
			raw := strings.TrimSpace(row[col])
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &ValidationError{
					Row:    n + 1,
					Column: col,
					Reason: fmt.Sprintf("value %q is not numeric", row[col]),
				}
			}
			// ParseFloat accepts NaN/Inf tokens, which would poison the
			// probabilities downstream.
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return nil, &ValidationError{
					Row:    n + 1,
					Column: col,
					Reason: fmt.Sprintf("value %q is not a finite number", row[col]),
				}
			}
			scaled, err := p.bundle.Scaler.Transform(col, value)
			if err != nil {
				return nil, &ValidationError{Row: n + 1, Column: col, Reason: err.Error()}
			}
			vector = append(vector, scaled)
		}

		category := strings.TrimSpace(row[ColCategory])
		code, ok := p.bundle.Encoder.Lookup(category)
		if !ok {
			return nil, &ValidationError{
				Row:    n + 1,
				Column: ColCategory,
				Reason: fmt.Sprintf("value %q is outside the encoder's known classes", row[ColCategory]),
			}
		}
		vector = append(vector, float64(code))

		matrix = append(matrix, vector)
	}
	return matrix, nil
}
