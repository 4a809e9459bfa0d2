// Package vecmath holds the vector arithmetic shared by the vector index
// implementations.
package vecmath

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// CosineDistance returns 1 - cos(a, b). A zero vector is at distance 1
// from everything. The vectors must have the same length.
func CosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Scored pairs an item position with its distance.
type Scored struct {
	Pos      int
	Distance float64
}

// Nearest sorts scored by ascending distance, keeping input order among
// equal distances, and returns at most k entries.
func Nearest(scored []Scored, k int) []Scored {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})
	if k >= 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// Encode packs a vector as little-endian float32 values.
func Encode(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// Decode unpacks a little-endian float32 blob.
func Decode(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec, nil
}
