// Package retriever serves top-k queries from the latest published snapshot.
package retriever

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"ragindex/internal/domain"
	"ragindex/internal/flatindex"
	"ragindex/internal/snapshot"
	"ragindex/internal/tfidf"
)

// DefaultK is used when Search is called with k <= 0.
const DefaultK = 3

// State is the lifecycle of the loaded artifact set.
type State int

const (
	Unloaded State = iota
	Loading
	Ready
	Degraded
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Degraded:
		return "degraded"
	}
	return "unknown"
}

// Info describes the currently loaded snapshot.
type Info struct {
	State     State
	Version   string
	Documents int
	Dimension int
}

type loaded struct {
	version string
	index   *flatindex.Index
	model   *tfidf.Model
	records []domain.Record
}

// Retriever holds one loaded snapshot. It does not watch the store; call
// LoadArtifacts after each ingestion to pick up the new version.
type Retriever struct {
	store  *snapshot.Store
	logger *slog.Logger

	mu    sync.RWMutex
	state State
	snap  loaded
}

var _ domain.Searcher = (*Retriever)(nil)

// New creates an unloaded Retriever reading from store.
func New(store *snapshot.Store, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, logger: logger}
}

// LoadArtifacts loads the index, model and metadata of the latest snapshot.
// Each artifact is optional; if any is missing, unreadable or inconsistent
// with the others the retriever becomes Degraded and Search returns nothing.
func (r *Retriever) LoadArtifacts() State {
	r.mu.Lock()
	r.state = Loading
	r.mu.Unlock()

	snap := r.load()
	state := Ready
	if !r.consistent(snap) {
		state = Degraded
	}

	r.mu.Lock()
	r.snap = snap
	r.state = state
	r.mu.Unlock()
	return state
}

func (r *Retriever) load() loaded {
	version, err := r.store.Latest()
	if err != nil {
		if errors.Is(err, snapshot.ErrNoSnapshot) {
			r.logger.Warn("vector index not found; retrieval unavailable until files are ingested", "dir", r.store.Dir())
		} else {
			r.logger.Error("error resolving snapshot", "error", err)
		}
		return loaded{}
	}

	snap := loaded{version: version}
	if snap.index, err = r.store.LoadIndex(version); err != nil {
		r.logArtifactError("index", version, err)
		snap.index = nil
	}
	if snap.model, err = r.store.LoadModel(version); err != nil {
		r.logArtifactError("vectorizer", version, err)
		snap.model = nil
	}
	if snap.records, err = r.store.LoadRecords(version); err != nil {
		r.logArtifactError("metadata", version, err)
		snap.records = nil
	}
	return snap
}

func (r *Retriever) logArtifactError(name, version string, err error) {
	if errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("artifact not found", "artifact", name, "version", version)
		return
	}
	r.logger.Error("error loading artifact", "artifact", name, "version", version, "error", err)
}

func (r *Retriever) consistent(s loaded) bool {
	if s.index == nil || s.model == nil || s.records == nil {
		return false
	}
	if s.index.Len() != len(s.records) {
		r.logger.Error("snapshot inconsistent", "version", s.version, "vectors", s.index.Len(), "records", len(s.records))
		return false
	}
	if s.index.Dimension() != s.model.Dimension() {
		r.logger.Error("snapshot inconsistent", "version", s.version, "index_dimension", s.index.Dimension(), "model_dimension", s.model.Dimension())
		return false
	}
	return true
}

// State returns the current lifecycle state.
func (r *Retriever) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Info describes the loaded snapshot.
func (r *Retriever) Info() Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info := Info{State: r.state, Version: r.snap.version}
	if r.state == Ready {
		info.Documents = len(r.snap.records)
		info.Dimension = r.snap.index.Dimension()
	}
	return info
}

// Search returns up to k documents nearest to query, closest first. It never
// fails: without a Ready snapshot it returns nil, and hits whose source file
// can no longer be read are skipped.
func (r *Retriever) Search(query string, k int) []domain.Result {
	if k <= 0 {
		k = DefaultK
	}
	r.mu.RLock()
	state, snap := r.state, r.snap
	r.mu.RUnlock()

	if state != Ready {
		r.logger.Warn("vector store not initialized; no documents available for retrieval", "state", state.String())
		return nil
	}

	vec, err := snap.model.Transform(query)
	if err != nil {
		r.logger.Error("transform query", "error", err)
		return nil
	}
	hits, err := snap.index.Search(vec, k)
	if err != nil {
		r.logger.Error("search index", "error", err)
		return nil
	}

	results := make([]domain.Result, 0, len(hits))
	for _, h := range hits {
		if h.ID < 0 || h.ID >= len(snap.records) {
			continue
		}
		rec := snap.records[h.ID]
		data, err := os.ReadFile(rec.FilePath)
		if err != nil {
			r.logger.Warn("error reading document", "path", rec.FilePath, "error", err)
			continue
		}
		results = append(results, domain.Result{
			Content:  string(data),
			FileName: rec.FileName,
			FilePath: rec.FilePath,
			Distance: h.Distance,
		})
	}
	return results
}
