package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
)

// Bundle is the fitted artifact: category encoder, numeric scaler and the
// classifier, loaded together and treated as immutable.
type Bundle struct {
	Encoder *LabelEncoder       `json:"encoder"`
	Scaler  *StandardScaler     `json:"scaler"`
	Model   *LogisticRegression `json:"model"`
}

// LoadBundle reads and validates a model bundle from a JSON artifact.
func LoadBundle(path string) (*Bundle, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bundle Bundle
	if err := json.Unmarshal(payload, &bundle); err != nil {
		return nil, fmt.Errorf("decoding model bundle: %w", err)
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// Validate checks all three capabilities are present and consistent with
// the feature order contract.
func (b *Bundle) Validate() error {
	if b.Encoder == nil {
		return errors.New("model bundle is missing the category encoder")
	}
	if b.Scaler == nil {
		return errors.New("model bundle is missing the numeric scaler")
	}
	if b.Model == nil {
		return errors.New("model bundle is missing the classifier")
	}
	if err := b.Encoder.validate(); err != nil {
		return err
	}
	if err := b.Scaler.validate(); err != nil {
		return err
	}
	return b.Model.validate()
}

// Provider holds the current bundle behind an atomic pointer so reloads
// swap without readers observing a half-built bundle.
type Provider struct {
	bundle atomic.Pointer[Bundle]
}

// Swap installs a new bundle.
func (p *Provider) Swap(b *Bundle) { p.bundle.Store(b) }

// Current returns the installed bundle, nil when loading failed at startup.
func (p *Provider) Current() *Bundle { return p.bundle.Load() }

// Loaded reports whether predictions can be served.
func (p *Provider) Loaded() bool { return p.bundle.Load() != nil }
