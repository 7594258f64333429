package results

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"testing"

	"fraudlens/store"
	"fraudlens/tabular"
)

func batchOf(t *testing.T, labels []int) *store.Batch {
	t.Helper()

	ds := &tabular.Dataset{Headers: []string{"Amount"}}
	probs := make([][2]float64, len(labels))
	for i, label := range labels {
		ds.Rows = append(ds.Rows, tabular.Record{"Amount": "1"})
		if label == 1 {
			probs[i] = [2]float64{0.25, 0.75}
		} else {
			probs[i] = [2]float64{0.75, 0.25}
		}
	}
	return store.NewBatch(ds, labels, probs)
}

func TestSummarize(t *testing.T) {
	batch := batchOf(t, []int{1, 0, 0})
	summary := Summarize(batch)

	if summary.TotalRows != 3 || summary.FraudCount != 1 || summary.LegitCount != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.FraudPercentage != 33.33 {
		t.Fatalf("expected 33.33, got %f", summary.FraudPercentage)
	}
}

func TestPageClamping(t *testing.T) {
	labels := make([]int, 50)
	batch := batchOf(t, labels)

	first := Page(batch, 1, 25)
	if first.TotalPages != 2 {
		t.Fatalf("50 rows at page size 25 should give 2 pages, got %d", first.TotalPages)
	}
	if len(first.Rows) != 25 {
		t.Fatalf("expected 25 rows on page 1, got %d", len(first.Rows))
	}
	if first.Rows[0].Row != 1 {
		t.Fatalf("page 1 should start at row 1, got %d", first.Rows[0].Row)
	}

	clamped := Page(batch, 3, 25)
	if clamped.Page != 2 {
		t.Fatalf("page 3 should clamp to page 2, got %d", clamped.Page)
	}
	if clamped.Rows[0].Row != 26 {
		t.Fatalf("page 2 should start at row 26, got %d", clamped.Rows[0].Row)
	}

	low := Page(batch, 0, 25)
	if low.Page != 1 {
		t.Fatalf("page 0 should clamp to page 1, got %d", low.Page)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	labels := []int{1, 0, 1, 1, 0}
	batch := batchOf(t, labels)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != len(labels)+1 {
		t.Fatalf("expected header plus %d rows, got %d records", len(labels), len(records))
	}
	if records[0][0] != "Amount" || records[0][1] != "prediction" {
		t.Fatalf("header should echo input columns before predictions: %v", records[0])
	}
	for i, label := range labels {
		if records[i+1][0] != "1" {
			t.Fatalf("row %d: input cell not echoed, got %q", i+1, records[i+1][0])
		}
		got, err := strconv.Atoi(records[i+1][1])
		if err != nil || got != label {
			t.Fatalf("row %d: exported label %q, want %d", i+1, records[i+1][1], label)
		}
		if records[i+1][4] != "0.7500" {
			t.Fatalf("confidence should be formatted to 4 decimals, got %q", records[i+1][4])
		}
	}
}

func TestWriteCSVEmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, batchOf(t, nil))
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}
