package ml

import "fmt"

// Classifier is the capability surface a fitted model must expose before
// the service is marked ready.
type Classifier interface {
	Classify(matrix [][]float64) ([]int, error)
	ClassProbabilities(matrix [][]float64) ([][2]float64, error)
}

// Required input columns, in the order the model was fitted with. The
// three numeric columns are scaled, category is label-encoded and
// appended last.
const (
	ColAmount      = "Amount"
	ColAvgAmount   = "avg_amount_per_customer"
	ColAmountRatio = "amount_ratio"
	ColCategory    = "category"
)

// NumericColumns returns the scaled columns in fitted order.
func NumericColumns() []string {
	return []string{ColAmount, ColAvgAmount, ColAmountRatio}
}

// FeatureColumns returns the full model input order.
func FeatureColumns() []string {
	return []string{ColAmount, ColAvgAmount, ColAmountRatio, ColCategory}
}

// ValidationError reports a missing or malformed input column. Row is
// 1-based; zero means the whole batch is invalid.
type ValidationError struct {
	Row    int
	Column string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("validation error: row %d, column %q: %s", e.Row, e.Column, e.Reason)
	}
	if e.Column != "" {
		return fmt.Sprintf("validation error: column %q: %s", e.Column, e.Reason)
	}
	return "validation error: " + e.Reason
}

// InferenceError reports an unavailable model or a matrix shape the
// classifier rejects.
type InferenceError struct {
	Reason string
	Err    error
}

func (e *InferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inference error: %s: %v", e.Reason, e.Err)
	}
	return "inference error: " + e.Reason
}

func (e *InferenceError) Unwrap() error { return e.Err }
