package domain

import "context"

// Document represents a single text file loaded into the system.
// Its position in the corpus is its vector-id for one index generation.
type Document struct {
	ID      string
	Path    string
	Name    string
	Content string
}

// Record is the persisted metadata entry for one indexed document.
type Record struct {
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	ID       string `json:"id,omitempty"`
}

// Record returns the metadata entry describing d.
func (d Document) Record() Record {
	return Record{FilePath: d.Path, FileName: d.Name, ID: d.ID}
}

// Hit is a raw index match: a vector-id and its squared L2 distance.
type Hit struct {
	ID       int
	Distance float32
}

// Result is a resolved search hit with the document's current content.
type Result struct {
	Content  string  `json:"content"`
	FileName string  `json:"file_name"`
	FilePath string  `json:"file_path"`
	Distance float32 `json:"distance"`
}

// Completer sends a prompt to a language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Searcher is the query-side contract consumed by the answer step and the UI.
type Searcher interface {
	Search(query string, k int) []Result
}
