package ml

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ArtifactFormatVersion is bumped whenever the persisted layout
// changes incompatibly. Load refuses artifacts from other versions.
const ArtifactFormatVersion = 1

// Artifact is the immutable bundle produced by one training run: the
// fitted encoder vocabularies, the fitted forest, and run metadata.
// It is created offline, persisted as gzip-compressed JSON, loaded
// once at gateway start, and treated as read-only for the process
// lifetime. Retraining produces a new artifact which replaces the old
// one through Handle.Swap.
type Artifact struct {
	FormatVersion int             `json:"format_version"`
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	Encoder       *Encoder        `json:"encoder"`
	Forest        *Forest         `json:"forest"`
	Report        *TrainingReport `json:"report,omitempty"`
}

// TrainingReport carries the evaluation computed at training time.
// Accuracy is kept for parity with the original trainer; the per-class
// precision/recall/F1 are the meaningful numbers under imbalance.
type TrainingReport struct {
	RunID         string    `json:"run_id"`
	TrainExamples int       `json:"train_examples"`
	TestExamples  int       `json:"test_examples"`
	TrainAccuracy float64   `json:"train_accuracy"`
	TestAccuracy  float64   `json:"test_accuracy"`
	TrainMetrics  Metrics   `json:"train_metrics"`
	TestMetrics   Metrics   `json:"test_metrics"`
	Seed          int64     `json:"seed"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Metrics are positive-class (attack) evaluation numbers.
type Metrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// NewArtifact assembles a bundle from fitted components.
func NewArtifact(enc *Encoder, forest *Forest, report *TrainingReport) *Artifact {
	return &Artifact{
		FormatVersion: ArtifactFormatVersion,
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Encoder:       enc,
		Forest:        forest,
		Report:        report,
	}
}

// PredictProbability encodes the record with the frozen vocabularies
// and averages the forest. Pure: no state is touched.
func (a *Artifact) PredictProbability(rc *RequestContext) float64 {
	return a.Forest.PredictProbability(a.Encoder.Transform(rc))
}

// Save writes the artifact to path as gzip-compressed JSON. The write
// goes to a temp file in the same directory followed by a rename, so a
// concurrently starting gateway never reads a partial artifact.
func (a *Artifact) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	zw := gzip.NewWriter(tmp)
	if err := json.NewEncoder(zw).Encode(a); err != nil {
		tmp.Close()
		return fmt.Errorf("save artifact: encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("save artifact: compress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads and validates a persisted artifact. Any failure
// here is fatal for a starting gateway: serving without a model is not
// an option.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", path, err)
	}
	defer zr.Close()

	var a Artifact
	if err := json.NewDecoder(zr).Decode(&a); err != nil {
		return nil, fmt.Errorf("load artifact %s: decode: %w", path, err)
	}
	if a.FormatVersion != ArtifactFormatVersion {
		return nil, fmt.Errorf("load artifact %s: format version %d, want %d", path, a.FormatVersion, ArtifactFormatVersion)
	}
	if a.Encoder == nil || a.Forest == nil {
		return nil, fmt.Errorf("load artifact %s: missing encoder or forest", path)
	}
	return &a, nil
}

// Handle is the shared, swappable reference to the current artifact.
// Readers call Current on every request; Swap installs a fully loaded
// replacement atomically, so no reader ever observes a half-loaded
// model. Old artifacts are released by the GC once in-flight requests
// drop their references.
type Handle struct {
	ptr atomic.Pointer[Artifact]
}

// NewHandle wraps an already-loaded artifact.
func NewHandle(a *Artifact) *Handle {
	h := &Handle{}
	h.ptr.Store(a)
	return h
}

// Current returns the active artifact.
func (h *Handle) Current() *Artifact {
	return h.ptr.Load()
}

// Swap atomically installs a new artifact and returns the previous one.
func (h *Handle) Swap(a *Artifact) *Artifact {
	return h.ptr.Swap(a)
}
