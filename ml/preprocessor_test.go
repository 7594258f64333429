package ml

import (
	"errors"
	"math"
	"testing"

	"fraudlens/tabular"
)

func dataset(headers []string, rows ...[]string) *tabular.Dataset {
	ds := &tabular.Dataset{Headers: headers}
	for _, row := range rows {
		record := make(tabular.Record, len(headers))
		for i, h := range headers {
			record[h] = row[i]
		}
		ds.Rows = append(ds.Rows, record)
	}
	return ds
}

func TestTransformFixedOrder(t *testing.T) {
	bundle := testBundle(t)
	ds := dataset(
		[]string{"Amount", "avg_amount_per_customer", "amount_ratio", "category"},
		[]string{"500.50", "250.25", "2.0", "1"},
	)

	matrix, err := NewPreprocessor(bundle).Transform(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matrix) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(matrix))
	}
	vector := matrix[0]
	if len(vector) != 4 {
		t.Fatalf("expected feature vector of length 4, got %d", len(vector))
	}

	// Fixture scaler: mean [100 50 1], scale [50 25 0.5].
	want := []float64{(500.50 - 100) / 50, (250.25 - 50) / 25, (2.0 - 1) / 0.5, 1}
	for i, w := range want {
		if math.Abs(vector[i]-w) > 1e-9 {
			t.Fatalf("vector[%d] = %f, want %f", i, vector[i], w)
		}
	}
}

func TestTransformExtraColumnsIgnored(t *testing.T) {
	bundle := testBundle(t)
	ds := dataset(
		[]string{"TransactionID", "Amount", "avg_amount_per_customer", "amount_ratio", "category"},
		[]string{"tx-9", "10", "5", "2", "0"},
	)

	matrix, err := NewPreprocessor(bundle).Transform(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matrix[0]) != 4 {
		t.Fatalf("expected 4 features, got %d", len(matrix[0]))
	}
}

func TestTransformMissingColumn(t *testing.T) {
	bundle := testBundle(t)
	ds := dataset(
		[]string{"Amount", "avg_amount_per_customer", "category"},
		[]string{"10", "5", "1"},
	)

	_, err := NewPreprocessor(bundle).Transform(ds)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if validationErr.Column != ColAmountRatio {
		t.Fatalf("expected missing column %q, got %q", ColAmountRatio, validationErr.Column)
	}
}

func TestTransformNonNumericCell(t *testing.T) {
	bundle := testBundle(t)
	ds := dataset(
		[]string{"Amount", "avg_amount_per_customer", "amount_ratio", "category"},
		[]string{"10", "5", "2", "1"},
		[]string{"abc", "5", "2", "1"},
	)

	_, err := NewPreprocessor(bundle).Transform(ds)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if validationErr.Row != 2 || validationErr.Column != ColAmount {
		t.Fatalf("error should name row 2 column Amount, got row %d column %q",
			validationErr.Row, validationErr.Column)
	}
}

func TestTransformNonFiniteCell(t *testing.T) {
	bundle := testBundle(t)

	for _, token := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		ds := dataset(
			[]string{"Amount", "avg_amount_per_customer", "amount_ratio", "category"},
			[]string{token, "5", "2", "1"},
		)

		_, err := NewPreprocessor(bundle).Transform(ds)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("%s: expected *ValidationError, got %T: %v", token, err, err)
		}
		if validationErr.Row != 1 || validationErr.Column != ColAmount {
			t.Fatalf("%s: error should name row 1 column Amount, got row %d column %q",
				token, validationErr.Row, validationErr.Column)
		}
	}
}

func TestTransformUnseenCategory(t *testing.T) {
	bundle := testBundle(t)
	ds := dataset(
		[]string{"Amount", "avg_amount_per_customer", "amount_ratio", "category"},
		[]string{"10", "5", "2", "99"},
	)

	_, err := NewPreprocessor(bundle).Transform(ds)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if validationErr.Column != ColCategory {
		t.Fatalf("expected category column in error, got %q", validationErr.Column)
	}
}
