package embedding

import "math"

// SparseVector stores the non-zero entries of a vector. Indices are strictly increasing.
type SparseVector struct {
	Indices []int     `json:"i"`
	Values  []float64 `json:"v"`
}

// Len returns the number of stored entries.
func (v SparseVector) Len() int { return len(v.Indices) }

// IsZero reports whether the vector has no non-zero entries.
func (v SparseVector) IsZero() bool { return len(v.Indices) == 0 }

// Dot returns the inner product of two sparse vectors.
func (v SparseVector) Dot(o SparseVector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm returns the Euclidean length.
func (v SparseVector) Norm() float64 {
	sum := 0.0
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize scales the vector to unit length in place. The zero vector is left unchanged.
func (v SparseVector) Normalize() {
	norm := v.Norm()
	if norm == 0 {
		return
	}
	for i := range v.Values {
		v.Values[i] /= norm
	}
}

// Valid reports whether indices are strictly increasing, inside [0, dim) and paired with values.
func (v SparseVector) Valid(dim int) bool {
	if len(v.Indices) != len(v.Values) {
		return false
	}
	prev := -1
	for _, idx := range v.Indices {
		if idx <= prev || idx >= dim {
			return false
		}
		prev = idx
	}
	return true
}

// Clone returns a deep copy.
func (v SparseVector) Clone() SparseVector {
	return SparseVector{
		Indices: append([]int(nil), v.Indices...),
		Values:  append([]float64(nil), v.Values...),
	}
}
