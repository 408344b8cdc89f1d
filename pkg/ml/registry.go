package ml

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Registry tracks trained artifacts across runs: metadata JSON next to
// each artifact file on disk, optionally mirrored to Redis so a fleet
// of gateways can discover the latest artifact without shared storage.
// The Redis client may be nil, in which case the registry is
// disk-only.
type Registry struct {
	storageDir  string
	redisClient *redis.Client
	mu          sync.RWMutex
	entries     map[string]*RegistryEntry
}

// RegistryEntry is the registered metadata for one artifact.
type RegistryEntry struct {
	ArtifactID   string    `json:"artifact_id"`
	Path         string    `json:"path"`
	FileHash     string    `json:"file_hash"`
	FileSize     int64     `json:"file_size"`
	FeatureWidth int       `json:"feature_width"`
	Trees        int       `json:"trees"`
	TestAccuracy float64   `json:"test_accuracy"`
	TestF1       float64   `json:"test_f1"`
	CreatedAt    time.Time `json:"created_at"`
	RegisteredAt time.Time `json:"registered_at"`
}

var (
	regArtifactsRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskgate",
			Subsystem: "registry",
			Name:      "artifacts_registered_total",
			Help:      "Total number of artifacts registered.",
		},
	)

	regArtifactSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "riskgate",
			Subsystem: "registry",
			Name:      "artifact_size_bytes",
			Help:      "Size of the registered artifact file in bytes.",
		},
		[]string{"artifact_id"},
	)
)

func init() {
	// Safe register; ignore duplicate registration in case of multiple imports
	_ = prometheus.Register(regArtifactsRegistered)
	_ = prometheus.Register(regArtifactSize)
}

// NewRegistry opens (or creates) a registry rooted at storageDir and
// loads any metadata already present.
func NewRegistry(storageDir string, redisClient *redis.Client) (*Registry, error) {
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("registry: create storage dir: %w", err)
	}
	r := &Registry{
		storageDir:  storageDir,
		redisClient: redisClient,
		entries:     make(map[string]*RegistryEntry),
	}
	if err := r.loadEntries(); err != nil {
		return nil, fmt.Errorf("registry: load entries: %w", err)
	}
	return r, nil
}

// Register records an already-persisted artifact. The file is hashed
// so operators can verify what a gateway actually loaded.
func (r *Registry) Register(ctx context.Context, a *Artifact, artifactPath string) (*RegistryEntry, error) {
	hash, size, err := hashFile(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("registry: hash artifact: %w", err)
	}

	entry := &RegistryEntry{
		ArtifactID:   a.ID,
		Path:         artifactPath,
		FileHash:     hash,
		FileSize:     size,
		FeatureWidth: a.Encoder.Width,
		Trees:        len(a.Forest.Trees),
		CreatedAt:    a.CreatedAt,
		RegisteredAt: time.Now().UTC(),
	}
	if a.Report != nil {
		entry.TestAccuracy = a.Report.TestAccuracy
		entry.TestF1 = a.Report.TestMetrics.F1
	}

	r.mu.Lock()
	r.entries[entry.ArtifactID] = entry
	r.mu.Unlock()

	if err := r.saveEntryToDisk(entry); err != nil {
		return nil, err
	}
	if err := r.mirrorToRedis(ctx, entry); err != nil {
		return nil, err
	}

	regArtifactsRegistered.Inc()
	regArtifactSize.WithLabelValues(entry.ArtifactID).Set(float64(size))
	return entry, nil
}

// Latest returns the most recently created entry, or nil if the
// registry is empty.
func (r *Registry) Latest() *RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *RegistryEntry
	for _, e := range r.entries {
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	return latest
}

// Get returns the entry for an artifact ID, checking Redis for entries
// registered by another host.
func (r *Registry) Get(ctx context.Context, artifactID string) (*RegistryEntry, error) {
	r.mu.RLock()
	entry, ok := r.entries[artifactID]
	r.mu.RUnlock()
	if ok {
		return entry, nil
	}
	if r.redisClient == nil {
		return nil, fmt.Errorf("registry: artifact not found: %s", artifactID)
	}

	data, err := r.redisClient.Get(ctx, redisArtifactKey(artifactID)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("registry: artifact not found: %s: %w", artifactID, err)
	}
	var e RegistryEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("registry: unmarshal entry: %w", err)
	}
	r.mu.Lock()
	r.entries[e.ArtifactID] = &e
	r.mu.Unlock()
	return &e, nil
}

// List returns all known entries, newest first.
func (r *Registry) List() []*RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Registry) saveEntryToDisk(entry *RegistryEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: marshal entry: %w", err)
	}
	path := filepath.Join(r.storageDir, entry.ArtifactID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("registry: write entry: %w", err)
	}
	return nil
}

func (r *Registry) mirrorToRedis(ctx context.Context, entry *RegistryEntry) error {
	if r.redisClient == nil {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("registry: marshal entry: %w", err)
	}
	if err := r.redisClient.Set(ctx, redisArtifactKey(entry.ArtifactID), data, 0).Err(); err != nil {
		return fmt.Errorf("registry: redis set: %w", err)
	}
	if err := r.redisClient.Set(ctx, redisLatestKey, entry.ArtifactID, 0).Err(); err != nil {
		return fmt.Errorf("registry: redis set latest: %w", err)
	}
	return nil
}

func (r *Registry) loadEntries() error {
	files, err := os.ReadDir(r.storageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.storageDir, f.Name()))
		if err != nil {
			continue
		}
		var e RegistryEntry
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		r.entries[e.ArtifactID] = &e
	}
	return nil
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

const redisLatestKey = "riskgate:artifact:latest"

func redisArtifactKey(artifactID string) string {
	return fmt.Sprintf("riskgate:artifact:%s", artifactID)
}
