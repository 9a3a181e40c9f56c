// Package ingest turns a document directory into a published retrieval
// snapshot: load the corpus, fit TF-IDF over it, embed every document into
// an exact flat index and persist the three artifacts together.
package ingest

import (
	"fmt"
	"log/slog"
	"sync"

	"ragindex/internal/corpus"
	"ragindex/internal/domain"
	"ragindex/internal/flatindex"
	"ragindex/internal/snapshot"
	"ragindex/internal/tfidf"
)

// Config configures an Ingester.
type Config struct {
	Root       string
	Extensions []string
	Stopwords  string
}

// Summary reports the outcome of one ingestion run.
type Summary struct {
	Documents int
	Skipped   int
	// Version is empty when nothing was published.
	Version string
}

// Ingester owns the in-memory corpus between LoadCorpus and BuildIndex.
// Runs are serialized.
type Ingester struct {
	mu        sync.Mutex
	root      string
	stopwords string
	loader    *corpus.Loader
	store     *snapshot.Store
	logger    *slog.Logger

	documents []domain.Document
	skipped   int
}

// New creates an Ingester that publishes into store.
func New(cfg Config, store *snapshot.Store, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		root:      cfg.Root,
		stopwords: cfg.Stopwords,
		loader:    corpus.NewLoader(cfg.Extensions, logger),
		store:     store,
		logger:    logger,
	}
}

// LoadCorpus replaces the in-memory corpus with the files currently under
// the configured root.
func (in *Ingester) LoadCorpus() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.loadCorpus()
}

// Documents returns the loaded corpus in vector-id order.
func (in *Ingester) Documents() []domain.Document {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]domain.Document(nil), in.documents...)
}

// BuildIndex fits the model over the loaded corpus and publishes a new
// snapshot. With an empty corpus it warns and returns a nil manifest,
// leaving any published snapshot untouched.
func (in *Ingester) BuildIndex() (*snapshot.Manifest, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.buildIndex()
}

// Ingest runs LoadCorpus followed by BuildIndex.
func (in *Ingester) Ingest() (Summary, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.logger.Info("loading documents", "root", in.root)
	if err := in.loadCorpus(); err != nil {
		return Summary{}, err
	}
	in.logger.Info("loaded documents", "count", len(in.documents), "skipped", in.skipped)

	sum := Summary{Documents: len(in.documents), Skipped: in.skipped}
	m, err := in.buildIndex()
	if err != nil {
		return sum, err
	}
	if m != nil {
		sum.Version = m.Version
		in.logger.Info("embeddings created and saved", "version", m.Version, "dimension", m.Dimension)
	}
	return sum, nil
}

func (in *Ingester) loadCorpus() error {
	docs, skipped, err := in.loader.Load(in.root)
	if err != nil {
		return err
	}
	in.documents = docs
	in.skipped = skipped
	return nil
}

func (in *Ingester) buildIndex() (*snapshot.Manifest, error) {
	if len(in.documents) == 0 {
		in.logger.Warn("no documents loaded; keeping existing index", "root", in.root)
		return nil, nil
	}

	texts := make([]string, len(in.documents))
	records := make([]domain.Record, len(in.documents))
	for i, d := range in.documents {
		texts[i] = d.Content
		records[i] = d.Record()
	}

	model := tfidf.New(tfidf.WithStopwords(in.stopwords))
	if err := model.Fit(texts); err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}
	vectors, err := model.TransformAll(texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	idx, err := flatindex.New(model.Dimension())
	if err != nil {
		return nil, err
	}
	if err := idx.Add(vectors...); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	m, err := in.store.Write(snapshot.Set{Index: idx, Model: model, Records: records})
	if err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	return &m, nil
}
