// Package flatindex is an exact nearest-neighbour index over dense float32
// vectors. Every search scans all rows and ranks them by squared Euclidean
// distance.
package flatindex

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"ragindex/internal/domain"
)

// ErrDimensionMismatch is returned when a vector does not match the index width.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

var magic = [4]byte{'F', 'L', 'T', '1'}

// Index stores vectors in insertion order; a row's position is its vector-id.
type Index struct {
	dimension int
	data      []float32
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	return &Index{dimension: dimension}, nil
}

// Dimension returns the vector width.
func (x *Index) Dimension() int { return x.dimension }

// Len returns the number of stored vectors.
func (x *Index) Len() int { return len(x.data) / x.dimension }

// Add appends vectors; the first one receives id Len().
func (x *Index) Add(vectors ...[]float32) error {
	for _, v := range vectors {
		if len(v) != x.dimension {
			return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, x.dimension, len(v))
		}
	}
	for _, v := range vectors {
		x.data = append(x.data, v...)
	}
	return nil
}

// Search returns up to k hits ordered by ascending distance.
// Equal distances are ordered by lower vector-id.
func (x *Index) Search(query []float32, k int) ([]domain.Hit, error) {
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, x.dimension, len(query))
	}
	n := x.Len()
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}
	hits := make([]domain.Hit, n)
	for i := 0; i < n; i++ {
		hits[i] = domain.Hit{ID: i, Distance: squaredL2(x.row(i), query)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })
	return hits[:k], nil
}

func (x *Index) row(i int) []float32 {
	return x.data[i*x.dimension : (i+1)*x.dimension]
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// WriteTo serializes the index: a magic header, dimension and count as
// little-endian uint32, then the row-major float32 data.
func (x *Index) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	header := make([]byte, 12)
	copy(header, magic[:])
	binary.LittleEndian.PutUint32(header[4:], uint32(x.dimension))
	binary.LittleEndian.PutUint32(header[8:], uint32(x.Len()))
	n, err := bw.Write(header)
	written += int64(n)
	if err != nil {
		return written, err
	}
	buf := make([]byte, 4)
	for _, f := range x.data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
		n, err := bw.Write(buf)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// chunkFloats bounds how much of the vector payload Read buffers at once.
const chunkFloats = 16 * 1024

// Read deserializes an index written by WriteTo. Header values are not
// trusted: memory grows only as payload bytes actually arrive, so a corrupt
// or truncated file yields an error rather than a huge allocation.
func Read(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)
	header := make([]byte, 12)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if [4]byte(header[:4]) != magic {
		return nil, errors.New("not a flat index file")
	}
	dim := binary.LittleEndian.Uint32(header[4:])
	count := binary.LittleEndian.Uint32(header[8:])
	if dim == 0 || uint64(dim) > math.MaxInt32 {
		return nil, fmt.Errorf("invalid dimension %d", dim)
	}
	total := uint64(dim) * uint64(count)
	if total > math.MaxInt/4 {
		return nil, fmt.Errorf("implausible index size: dimension %d, count %d", dim, count)
	}
	x, err := New(int(dim))
	if err != nil {
		return nil, err
	}
	x.data = make([]float32, 0, min(total, chunkFloats))
	buf := make([]byte, 4*chunkFloats)
	for remaining := total; remaining > 0; {
		n := min(remaining, chunkFloats)
		chunk := buf[:4*n]
		if _, err := io.ReadFull(br, chunk); err != nil {
			return nil, fmt.Errorf("read vectors: %w", err)
		}
		for i := 0; i < len(chunk); i += 4 {
			x.data = append(x.data, math.Float32frombits(binary.LittleEndian.Uint32(chunk[i:])))
		}
		remaining -= n
	}
	return x, nil
}
