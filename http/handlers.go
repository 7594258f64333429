package http

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"fraudlens/db"
	"fraudlens/ml"
	"fraudlens/monitoring"
	"fraudlens/results"
	"fraudlens/store"
	"fraudlens/tabular"
)

type predictResponse struct {
	Success         bool         `json:"success"`
	TotalRows       int          `json:"total_rows"`
	FraudCount      int          `json:"fraud_count"`
	LegitCount      int          `json:"legit_count"`
	FraudPercentage float64      `json:"fraud_percentage"`
	Predictions     []int        `json:"predictions"`
	Probabilities   [][2]float64 `json:"probabilities"`
	Message         string       `json:"message"`
	Timestamp       time.Time    `json:"timestamp"`
}

func batchResponse(b *store.Batch) predictResponse {
	summary := results.Summarize(b)
	predictions := make([]int, len(b.Results))
	probabilities := make([][2]float64, len(b.Results))
	for i, result := range b.Results {
		predictions[i] = result.Label
		probabilities[i] = result.Probabilities
	}
	return predictResponse{
		Success:         true,
		TotalRows:       summary.TotalRows,
		FraudCount:      summary.FraudCount,
		LegitCount:      summary.LegitCount,
		FraudPercentage: summary.FraudPercentage,
		Predictions:     predictions,
		Probabilities:   probabilities,
		Message:         fmt.Sprintf("Successfully processed %d records", summary.TotalRows),
		Timestamp:       b.CreatedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !s.deps.Predictor.Loaded() {
		status = "degraded"
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"model_loaded": s.deps.Predictor.Loaded(),
		"timestamp":    time.Now(),
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		// A body over the configured cap surfaces here as MaxBytesError;
		// keep it so the size rejection maps to 413, not a generic 400.
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.failUpload(w, "", err, nil)
			return
		}
		s.failUpload(w, "", fmt.Errorf("no file provided"), err)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.failUpload(w, "", fmt.Errorf("no file selected"), nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.failUpload(w, header.Filename, err, nil)
		return
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	// Byte-identical re-uploads reuse the finished batch.
	if cached, ok := s.deps.Store.Lookup(digest); ok {
		batch := *cached
		batch.CreatedAt = time.Now()
		s.finishUpload(w, header.Filename, &batch)
		return
	}

	dataset, err := tabular.Parse(bytes.NewReader(data), header.Filename)
	if err != nil {
		s.failUpload(w, header.Filename, err, nil)
		return
	}

	bundle, err := s.deps.Predictor.Snapshot()
	if err != nil {
		s.failUpload(w, header.Filename, err, nil)
		return
	}

	matrix, err := ml.NewPreprocessor(bundle).Transform(dataset)
	if err != nil {
		s.failUpload(w, header.Filename, err, nil)
		return
	}

	labels, probs, err := s.deps.Predictor.Predict(bundle, matrix)
	if err != nil {
		s.failUpload(w, header.Filename, err, nil)
		return
	}

	batch := store.NewBatch(dataset, labels, probs)
	s.deps.Store.Remember(digest, batch)
	s.finishUpload(w, header.Filename, batch)
}

// finishUpload stores the batch, records audit/metrics, pushes the
// summary to dashboard clients and writes the predict response.
func (s *Server) finishUpload(w http.ResponseWriter, filename string, batch *store.Batch) {
	s.deps.Store.Set(batch)

	summary := results.Summarize(batch)
	if err := db.LogUpload(db.UploadLog{
		Filename:   filename,
		TotalRows:  summary.TotalRows,
		FraudCount: summary.FraudCount,
		LegitCount: summary.LegitCount,
		Status:     "ok",
	}); err != nil {
		s.deps.Logger.Warnw("failed to write upload audit entry", "error", err)
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordBatch(summary.TotalRows)
	}
	if s.deps.Hub != nil {
		s.deps.Hub.Publish(monitoring.BatchSummary, summary)
	}

	respondJSON(w, http.StatusOK, batchResponse(batch))
}

// failUpload rejects the upload, leaving any previously stored batch
// untouched.
func (s *Server) failUpload(w http.ResponseWriter, filename string, err, cause error) {
	status := statusForError(err)
	if cause != nil {
		s.deps.Logger.Debugw("upload rejected", "filename", filename, "error", err, "cause", cause)
	}

	auditStatus := "rejected"
	if status >= http.StatusInternalServerError {
		auditStatus = "failed"
	}
	if logErr := db.LogUpload(db.UploadLog{
		Filename: filename,
		Status:   auditStatus,
		Message:  err.Error(),
	}); logErr != nil {
		s.deps.Logger.Warnw("failed to write upload audit entry", "error", logErr)
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordFailure()
	}

	writeError(w, status, err)
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	batch, err := s.deps.Store.Get()
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, batchResponse(batch))
}

func (s *Server) handlePredictionsPage(w http.ResponseWriter, r *http.Request) {
	batch, err := s.deps.Store.Get()
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			page = v
		}
	}
	respondJSON(w, http.StatusOK, results.Page(batch, page, s.config.PageSize))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	batch, err := s.deps.Store.Get()
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	filename := "predictions_" + time.Now().Format("20060102_150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := results.WriteCSV(w, batch); err != nil {
		s.deps.Logger.Warnw("csv export failed", "error", err)
	}
}

func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	logs, err := db.RecentUploads(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to load upload history"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"uploads": logs,
		"count":   len(logs),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.deps.Metrics == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("metrics collector not initialized"))
		return
	}
	respondJSON(w, http.StatusOK, s.deps.Metrics.Stats())
}
