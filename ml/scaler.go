package ml

import "fmt"

// StandardScaler standardizes numeric features using the mean and scale
// stored at fitting time. Transform only, never refit.
type StandardScaler struct {
	Features []string  `json:"features"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`

	index map[string]int
}

// Transform standardizes one value of the named feature.
func (s *StandardScaler) Transform(feature string, value float64) (float64, error) {
	i, ok := s.index[feature]
	if !ok {
		return 0, fmt.Errorf("scaler has no stats for feature %q", feature)
	}
	return (value - s.Mean[i]) / s.Scale[i], nil
}

func (s *StandardScaler) validate() error {
	if len(s.Features) == 0 {
		return fmt.Errorf("scaler has no features")
	}
	if len(s.Mean) != len(s.Features) || len(s.Scale) != len(s.Features) {
		return fmt.Errorf("scaler mean/scale length %d/%d does not match %d features",
			len(s.Mean), len(s.Scale), len(s.Features))
	}
	s.index = make(map[string]int, len(s.Features))
	for i, f := range s.Features {
		if s.Scale[i] == 0 {
			return fmt.Errorf("scaler feature %q has zero scale", f)
		}
		s.index[f] = i
	}
	for _, col := range NumericColumns() {
		if _, ok := s.index[col]; !ok {
			return fmt.Errorf("scaler missing required feature %q", col)
		}
	}
	return nil
}
