package ml

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func testBundle(t *testing.T) *Bundle {
	t.Helper()

	classes := make([]string, 28)
	for i := range classes {
		classes[i] = strconv.Itoa(i)
	}
	bundle := &Bundle{
		Encoder: &LabelEncoder{Classes: classes},
		Scaler: &StandardScaler{
			Features: []string{ColAmount, ColAvgAmount, ColAmountRatio},
			Mean:     []float64{100, 50, 1},
			Scale:    []float64{50, 25, 0.5},
		},
		Model: &LogisticRegression{
			Weights:   []float64{0.8, -0.3, 0.5, 0.05},
			Intercept: -0.2,
			Classes:   []int{0, 1},
		},
	}
	if err := bundle.Validate(); err != nil {
		t.Fatalf("fixture bundle failed validation: %v", err)
	}
	return bundle
}

func TestLoadBundle(t *testing.T) {
	payload := `{
        "encoder": {"classes": ["0", "1", "2"]},
        "scaler": {
            "features": ["Amount", "avg_amount_per_customer", "amount_ratio"],
            "mean": [10, 5, 1],
            "scale": [2, 1, 0.5]
        },
        "model": {"weights": [0.1, 0.2, 0.3, 0.4], "intercept": -0.5, "classes": [0, 1]}
    }`
	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatal(err)
	}

	bundle, err := LoadBundle(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code, ok := bundle.Encoder.Lookup("2"); !ok || code != 2 {
		t.Fatalf("encoder lookup failed: code=%d ok=%v", code, ok)
	}
	if _, ok := bundle.Encoder.Lookup("3"); ok {
		t.Fatal("expected lookup miss for unseen class")
	}
}

func TestLoadBundleMissingClassifier(t *testing.T) {
	payload := `{
        "encoder": {"classes": ["0"]},
        "scaler": {
            "features": ["Amount", "avg_amount_per_customer", "amount_ratio"],
            "mean": [0, 0, 0],
            "scale": [1, 1, 1]
        }
    }`
	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadBundle(path); err == nil {
		t.Fatal("expected validation error for missing classifier")
	}
}

func TestBundleValidateZeroScale(t *testing.T) {
	bundle := testBundle(t)
	bundle.Scaler.Scale[0] = 0
	if err := bundle.Validate(); err == nil {
		t.Fatal("expected validation error for zero scale")
	}
}

func TestBundleValidateWeightCount(t *testing.T) {
	bundle := testBundle(t)
	bundle.Model.Weights = []float64{0.1, 0.2}
	if err := bundle.Validate(); err == nil {
		t.Fatal("expected validation error for weight count mismatch")
	}
}

func TestProviderSwap(t *testing.T) {
	provider := &Provider{}
	if provider.Loaded() {
		t.Fatal("empty provider reports loaded")
	}

	predictor := NewPredictor(provider)
	if _, err := predictor.Snapshot(); err == nil {
		t.Fatal("expected inference error before a bundle is installed")
	}

	provider.Swap(testBundle(t))
	if !provider.Loaded() {
		t.Fatal("provider not loaded after swap")
	}
	if _, err := predictor.Snapshot(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
