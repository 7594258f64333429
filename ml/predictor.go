package ml

// Predictor adapts the current bundle's classifier to the request
// pipeline. Each request takes one snapshot and preprocesses and
// classifies against it, so a concurrent reload cannot split a batch
// across two bundles.
type Predictor struct {
	provider *Provider
}

func NewPredictor(provider *Provider) *Predictor {
	return &Predictor{provider: provider}
}

// Snapshot returns the bundle to run this request against, or an
// InferenceError when the artifact failed to load.
func (p *Predictor) Snapshot() (*Bundle, error) {
	bundle := p.provider.Current()
	if bundle == nil {
		return nil, &InferenceError{Reason: "model bundle is not loaded"}
	}
	return bundle, nil
}

// Loaded reports whether predictions can be served.
func (p *Predictor) Loaded() bool { return p.provider.Loaded() }

// Predict runs the matrix through the snapshot's classifier and returns
// aligned labels and class probability pairs.
func (p *Predictor) Predict(bundle *Bundle, matrix [][]float64) ([]int, [][2]float64, error) {
	labels, err := bundle.Model.Classify(matrix)
	if err != nil {
		return nil, nil, err
	}
	probs, err := bundle.Model.ClassProbabilities(matrix)
	if err != nil {
		return nil, nil, err
	}
	return labels, probs, nil
}
