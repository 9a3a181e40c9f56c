// Package corpus discovers and reads the documents to be indexed.
package corpus

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ragindex/internal/domain"
)

// Loader walks a directory tree and reads files whose extension is allowed.
type Loader struct {
	extensions map[string]struct{}
	logger     *slog.Logger
}

// NewLoader creates a loader for the given extensions (".txt", ".md", ...).
// Matching is case-insensitive.
func NewLoader(extensions []string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return &Loader{extensions: set, logger: logger}
}

// Allowed reports whether path has an allowed extension.
func (l *Loader) Allowed(path string) bool {
	_, ok := l.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load returns the documents under root in lexical walk order, plus the
// number of matching files that could not be read. A missing root is
// created and yields an empty corpus.
func (l *Loader) Load(root string) ([]domain.Document, int, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, 0, fmt.Errorf("create corpus root: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve corpus root: %w", err)
	}

	var (
		docs    []domain.Document
		skipped int
	)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			l.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !l.Allowed(path) {
			return nil
		}
		doc, err := readDocument(path)
		if err != nil {
			l.logger.Warn("error loading document", "path", path, "error", err)
			skipped++
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, skipped, fmt.Errorf("walk corpus: %w", walkErr)
	}
	return docs, skipped, nil
}

func readDocument(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	if !utf8.Valid(data) {
		return domain.Document{}, errors.New("not valid UTF-8 text")
	}
	return domain.Document{
		ID:      documentID(path, data),
		Path:    path,
		Name:    filepath.Base(path),
		Content: string(data),
	}, nil
}

// documentID derives a stable identifier from a document's path and bytes.
func documentID(path string, content []byte) string {
	h := sha1.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil)[:8])
}
