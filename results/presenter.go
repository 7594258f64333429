// Package results derives summaries, pages and CSV exports from a stored
// prediction batch.
package results

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"

	"fraudlens/store"
)

// ErrEmptyBatch signals there is nothing to export.
var ErrEmptyBatch = errors.New("nothing to export")

// DefaultPageSize is the dashboard table convention.
const DefaultPageSize = 25

// Summary aggregates one batch for the dashboard cards.
type Summary struct {
	TotalRows       int     `json:"total_rows"`
	FraudCount      int     `json:"fraud_count"`
	LegitCount      int     `json:"legit_count"`
	FraudPercentage float64 `json:"fraud_percentage"`
}

// Summarize computes batch aggregates; the percentage is rounded to two
// decimals.
func Summarize(b *store.Batch) Summary {
	s := Summary{
		TotalRows:  b.TotalRows,
		FraudCount: b.FraudCount,
		LegitCount: b.LegitCount,
	}
	if b.TotalRows > 0 {
		s.FraudPercentage = math.Round(float64(b.FraudCount)/float64(b.TotalRows)*100*100) / 100
	}
	return s
}

// PagedResult is one table row: 1-based input row number plus outcome.
type PagedResult struct {
	Row int `json:"row"`
	store.Result
}

// PageView is one page of results for the dashboard table.
type PageView struct {
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	Rows       []PagedResult `json:"rows"`
}

// Page returns the requested page, clamping the page number into
// [1, totalPages].
func Page(b *store.Batch, page, size int) PageView {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := (b.TotalRows + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > b.TotalRows {
		start = b.TotalRows
	}
	if end > b.TotalRows {
		end = b.TotalRows
	}

	rows := make([]PagedResult, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, PagedResult{Row: i + 1, Result: b.Results[i]})
	}
	return PageView{Page: page, PageSize: size, TotalPages: totalPages, Rows: rows}
}

// WriteCSV serializes the batch: the original input columns first, then
// the prediction columns. Probabilities and confidence are formatted to
// four decimal places.
func WriteCSV(w io.Writer, b *store.Batch) error {
	if b == nil || b.TotalRows == 0 {
		return ErrEmptyBatch
	}

	writer := csv.NewWriter(w)
	header := make([]string, 0, len(b.Headers)+4)
	header = append(header, b.Headers...)
	header = append(header, "prediction", "legit_probability", "fraud_probability", "confidence")
	if err := writer.Write(header); err != nil {
		return err
	}
	for i, result := range b.Results {
		record := make([]string, 0, len(header))
		for _, h := range b.Headers {
			record = append(record, b.Records[i][h])
		}
		record = append(record,
			strconv.Itoa(result.Label),
			strconv.FormatFloat(result.Probabilities[0], 'f', 4, 64),
			strconv.FormatFloat(result.Probabilities[1], 'f', 4, 64),
			strconv.FormatFloat(result.Confidence, 'f', 4, 64),
		)
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
