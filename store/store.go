// Package store holds the most recent prediction batch in process
// memory. The slot is per-process: with multiple replicas, predict and
// the subsequent retrieval are only consistent when the same process
// serves both, so deployments need sticky routing for the read paths.
package store

import (
	"errors"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"fraudlens/tabular"
)

// ErrNoBatch signals that no prediction batch has been stored yet.
var ErrNoBatch = errors.New("no predictions available")

// Result is one row's outcome: binary label (1 = fraud), the two class
// probabilities [P(legit), P(fraud)] and confidence = max of the pair.
type Result struct {
	Label         int        `json:"label"`
	Probabilities [2]float64 `json:"probabilities"`
	Confidence    float64    `json:"confidence"`
}

// Batch is one upload's aligned rows and outcomes plus aggregate counts.
type Batch struct {
	Headers    []string         `json:"headers"`
	Records    []tabular.Record `json:"records"`
	Results    []Result         `json:"results"`
	TotalRows  int              `json:"total_rows"`
	FraudCount int              `json:"fraud_count"`
	LegitCount int              `json:"legit_count"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewBatch assembles a batch from the parsed dataset and the aligned
// classifier output.
func NewBatch(ds *tabular.Dataset, labels []int, probs [][2]float64) *Batch {
	batch := &Batch{
		Headers:   ds.Headers,
		Records:   ds.Rows,
		Results:   make([]Result, len(labels)),
		TotalRows: len(labels),
		CreatedAt: time.Now(),
	}
	for i, label := range labels {
		confidence := probs[i][0]
		if probs[i][1] > confidence {
			confidence = probs[i][1]
		}
		batch.Results[i] = Result{Label: label, Probabilities: probs[i], Confidence: confidence}
		if label == 1 {
			batch.FraudCount++
		} else {
			batch.LegitCount++
		}
	}
	return batch
}

// Store is the single-slot session store plus a bounded reuse cache
// keyed by upload digest. Last write wins; a failed upload never touches
// the slot.
type Store struct {
	current atomic.Pointer[Batch]
	cache   *lru.Cache[string, *Batch]
}

// New creates a store with a digest cache of the given size.
func New(cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = 16
	}
	cache, err := lru.New[string, *Batch](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache}, nil
}

// Set atomically replaces the current batch.
func (s *Store) Set(batch *Batch) {
	s.current.Store(batch)
}

// Get returns the current batch or ErrNoBatch.
func (s *Store) Get() (*Batch, error) {
	batch := s.current.Load()
	if batch == nil {
		return nil, ErrNoBatch
	}
	return batch, nil
}

// Lookup returns a previously finished batch for a byte-identical upload.
func (s *Store) Lookup(digest string) (*Batch, bool) {
	return s.cache.Get(digest)
}

// Remember caches a finished batch under the upload's digest.
func (s *Store) Remember(digest string, batch *Batch) {
	s.cache.Add(digest, batch)
}
