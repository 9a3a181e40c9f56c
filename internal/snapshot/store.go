// Package snapshot persists the artifact set that makes up one retrieval
// snapshot: the flat index, the fitted TF-IDF model and the ordered metadata.
//
// Each ingestion writes a new version directory under snapshots/ and then
// publishes it by atomically renaming a pointer file onto LATEST. Readers
// resolve LATEST once per load, so they never observe a half-written set.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragindex/internal/domain"
	"ragindex/internal/flatindex"
	"ragindex/internal/tfidf"
)

const (
	IndexFilename    = "index.bin"
	ModelFilename    = "vectorizer.json"
	MetadataFilename = "metadata.json"
	ManifestFilename = "manifest.json"
	LatestFilename   = "LATEST"
	snapshotsDir     = "snapshots"
)

// ErrNoSnapshot means nothing has been published to the store yet.
var ErrNoSnapshot = errors.New("no snapshot published")

// Set is one complete, mutually consistent group of artifacts.
type Set struct {
	Index   *flatindex.Index
	Model   *tfidf.Model
	Records []domain.Record
}

// Manifest describes a published snapshot.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Documents int       `json:"documents"`
	Dimension int       `json:"dimension"`
}

// Store reads and writes snapshots under a single directory.
type Store struct {
	dir    string
	keep   int
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKeep sets how many published versions survive pruning. Values below 1
// are treated as 1.
func WithKeep(n int) Option {
	return func(s *Store) { s.keep = n }
}

// WithLogger sets the logger used for pruning diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns a store rooted at dir. The directory is created lazily on Write.
func New(dir string, opts ...Option) *Store {
	s := &Store{dir: dir, keep: 3, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	if s.keep < 1 {
		s.keep = 1
	}
	return s
}

// Dir returns the store root.
func (s *Store) Dir() string { return s.dir }

// Path returns the location of an artifact inside a version directory.
func (s *Store) Path(version, name string) string {
	return filepath.Join(s.dir, snapshotsDir, version, name)
}

// Write persists set as a new version and publishes it as LATEST.
func (s *Store) Write(set Set) (Manifest, error) {
	if err := validate(set); err != nil {
		return Manifest{}, err
	}
	id, err := newVersionID()
	if err != nil {
		return Manifest{}, fmt.Errorf("new version id: %w", err)
	}
	m := Manifest{
		Version:   id.String(),
		CreatedAt: time.Now().UTC(),
		Documents: len(set.Records),
		Dimension: set.Index.Dimension(),
	}
	dir := filepath.Join(s.dir, snapshotsDir, m.Version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("create snapshot directory: %w", err)
	}

	if err := writeArtifacts(dir, set, m); err != nil {
		s.discard(dir)
		return Manifest{}, err
	}
	if err := s.publish(m.Version); err != nil {
		s.discard(dir)
		return Manifest{}, err
	}
	s.prune(m.Version)
	return m, nil
}

var newVersionID = uuid.NewV7

func writeArtifacts(dir string, set Set, m Manifest) error {
	if err := writeFile(filepath.Join(dir, IndexFilename), func(f *os.File) error {
		_, err := set.Index.WriteTo(f)
		return err
	}); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := writeFile(filepath.Join(dir, ModelFilename), func(f *os.File) error {
		return set.Model.Save(f)
	}); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, MetadataFilename), set.Records); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, ManifestFilename), m); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// discard removes an unpublished version directory.
func (s *Store) discard(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("remove unpublished snapshot", "path", dir, "error", err)
	}
}

// Latest returns the published version name.
func (s *Store) Latest() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, LatestFilename))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoSnapshot
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", LatestFilename, err)
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", ErrNoSnapshot
	}
	return version, nil
}

// LoadIndex reads the index of a version.
func (s *Store) LoadIndex(version string) (*flatindex.Index, error) {
	f, err := os.Open(s.Path(version, IndexFilename))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return flatindex.Read(f)
}

// LoadModel reads the vectorization model of a version.
func (s *Store) LoadModel(version string) (*tfidf.Model, error) {
	f, err := os.Open(s.Path(version, ModelFilename))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tfidf.Load(f)
}

// LoadRecords reads the ordered metadata of a version.
func (s *Store) LoadRecords(version string) ([]domain.Record, error) {
	var records []domain.Record
	if err := readJSON(s.Path(version, MetadataFilename), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadManifest reads the manifest of a version.
func (s *Store) LoadManifest(version string) (Manifest, error) {
	var m Manifest
	err := readJSON(s.Path(version, ManifestFilename), &m)
	return m, err
}

// Versions lists version directories, oldest first. UUIDv7 names sort by
// creation time.
func (s *Store) Versions() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, snapshotsDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) publish(version string) error {
	tmp, err := os.CreateTemp(s.dir, LatestFilename+".*.tmp")
	if err != nil {
		return fmt.Errorf("create pointer: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(version + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write pointer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync pointer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close pointer: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, LatestFilename)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func (s *Store) prune(current string) {
	versions, err := s.Versions()
	if err != nil {
		s.logger.Warn("list snapshots for pruning", "error", err)
		return
	}
	excess := len(versions) - s.keep
	for _, v := range versions {
		if excess <= 0 {
			break
		}
		if v == current {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.dir, snapshotsDir, v)); err != nil {
			s.logger.Warn("remove old snapshot", "version", v, "error", err)
			continue
		}
		excess--
	}
}

func validate(set Set) error {
	switch {
	case set.Index == nil:
		return errors.New("snapshot missing index")
	case set.Model == nil || !set.Model.Fitted():
		return errors.New("snapshot missing fitted model")
	case set.Index.Len() != len(set.Records):
		return fmt.Errorf("index has %d vectors but metadata has %d records", set.Index.Len(), len(set.Records))
	case set.Index.Dimension() != set.Model.Dimension():
		return fmt.Errorf("index dimension %d does not match model dimension %d", set.Index.Dimension(), set.Model.Dimension())
	}
	return nil
}

func writeFile(path string, fill func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
