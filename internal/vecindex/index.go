// Package vecindex implements a flat brute-force L2 similarity index
// over fixed-dimension float32 vectors, with a lossless binary
// serialization suitable for durable storage.
package vecindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrDimensionMismatch indicates vectors of differing widths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmpty indicates a build with no vectors.
	ErrEmpty = errors.New("no vectors to index")

	// ErrDecode indicates a serialized blob that cannot be reconstructed.
	// Deserialization never yields a partial index.
	ErrDecode = errors.New("index decode failed")
)

// Serialization header: magic, format version.
const (
	blobMagic   = "LSVI"
	blobVersion = uint16(1)
)

// Index is a flat similarity index. Vectors are L2-normalized at build
// time; the structure is immutable after construction and safe for
// concurrent searches without locking.
type Index struct {
	dim     int
	vectors [][]float32
}

// Build L2-normalizes the vectors in place and constructs an index over
// them. The dimension is taken from the first vector; all vectors must
// share it.
func Build(vectors [][]float32) (*Index, error) {
	if len(vectors) == 0 {
		return nil, ErrEmpty
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-width vector", ErrDimensionMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has width %d, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		normalize(v)
	}

	return &Index{dim: dim, vectors: vectors}, nil
}

// Dim returns the vector dimension.
func (ix *Index) Dim() int { return ix.dim }

// Count returns the number of stored vectors.
func (ix *Index) Count() int { return len(ix.vectors) }

// Result is one nearest-neighbour hit.
type Result struct {
	// Ordinal is the stored vector's position in build order
	Ordinal int

	// Distance is the squared L2 distance to the query (lower is closer)
	Distance float32
}

// Search returns the k nearest stored vectors to the query by L2
// distance, ascending. k is clamped to the stored count. Equal
// distances keep build order (stable tie-break by ordinal).
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has width %d, want %d", ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	q := make([]float32, ix.dim)
	copy(q, query)
	normalize(q)

	results := make([]Result, len(ix.vectors))
	for i, v := range ix.vectors {
		results[i] = Result{Ordinal: i, Distance: sqL2(q, v)}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})

	return results[:k], nil
}

// Serialize encodes the index to an opaque blob: magic, version,
// dimension, count, then the normalized vectors as little-endian
// float32s.
func (ix *Index) Serialize() ([]byte, error) {
	size := len(blobMagic) + 2 + 4 + 4 + 4*ix.dim*len(ix.vectors)
	buf := make([]byte, 0, size)

	buf = append(buf, blobMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, blobVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(ix.dim))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.vectors)))

	for _, v := range ix.vectors {
		for _, f := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf, nil
}

// Deserialize reconstructs an index from its serialized form. A blob
// that fails any structural check yields ErrDecode and no index.
func Deserialize(data []byte) (*Index, error) {
	header := len(blobMagic) + 2 + 4 + 4
	if len(data) < header {
		return nil, fmt.Errorf("%w: truncated header", ErrDecode)
	}
	if string(data[:len(blobMagic)]) != blobMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrDecode)
	}

	off := len(blobMagic)
	version := binary.LittleEndian.Uint16(data[off:])
	if version != blobVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrDecode, version)
	}
	off += 2

	dim := int(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	count := int(binary.LittleEndian.Uint32(data[off:]))
	off += 4

	if dim <= 0 || count <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrDecode, count, dim)
	}
	if len(data)-off != 4*dim*count {
		return nil, fmt.Errorf("%w: payload size %d does not match %dx%d vectors", ErrDecode, len(data)-off, count, dim)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		v := make([]float32, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = v
	}

	return &Index{dim: dim, vectors: vectors}, nil
}

// normalize scales v to unit L2 length in place. Zero vectors are left
// untouched.
func normalize(v []float32) {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

// sqL2 computes the squared L2 distance between equal-width vectors.
func sqL2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}
