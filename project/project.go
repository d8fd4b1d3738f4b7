// Package project reduces high-dimensional embeddings to 3D positions for
// display.
//
// The reduction is an approximate PCA: top components are extracted by a
// fixed, short power iteration with random starts and deflation against
// previously found components. Results are stochastic between runs and the
// spread is only approximately principal; that is sufficient for visual
// exploration and deliberately cheaper than an exact eigensolver.
package project

import (
	"math"
	"math/rand/v2"
)

const powerIterations = 10

// Position is one projected point.
type Position [3]float64

// ReduceTo3D projects each embedding onto the top three approximate
// principal components of the set. Output length and order always match
// the input. Inputs of native dimensionality <= 3 are passed through,
// zero-padded; a single embedding projects to the origin.
func ReduceTo3D(embeddings [][]float32) []Position {
	if len(embeddings) == 0 {
		return []Position{}
	}
	if len(embeddings) == 1 {
		return []Position{{0, 0, 0}}
	}

	n := len(embeddings)
	dims := len(embeddings[0])
	if dims <= 3 {
		out := make([]Position, n)
		for i, e := range embeddings {
			for d := 0; d < dims && d < 3; d++ {
				out[i][d] = float64(e[d])
			}
		}
		return out
	}

	// Center the data.
	means := make([]float64, dims)
	for _, e := range embeddings {
		for d, v := range e {
			means[d] += float64(v)
		}
	}
	for d := range means {
		means[d] /= float64(n)
	}

	centered := make([][]float64, n)
	for i, e := range embeddings {
		row := make([]float64, dims)
		for d, v := range e {
			row[d] = float64(v) - means[d]
		}
		centered[i] = row
	}

	// Covariance matrix, sample-normalized.
	cov := make([][]float64, dims)
	for i := range cov {
		cov[i] = make([]float64, dims)
	}
	for _, row := range centered {
		for i := 0; i < dims; i++ {
			for j := 0; j < dims; j++ {
				cov[i][j] += row[i] * row[j]
			}
		}
	}
	for i := 0; i < dims; i++ {
		for j := 0; j < dims; j++ {
			cov[i][j] /= float64(n - 1)
		}
	}

	// Top three components by deflated power iteration.
	components := make([][]float64, 0, 3)
	for pc := 0; pc < 3; pc++ {
		v := make([]float64, dims)
		for i := range v {
			v[i] = rand.Float64() - 0.5
		}
		normalizeVec(v)

		for iter := 0; iter < powerIterations; iter++ {
			next := make([]float64, dims)
			for i := 0; i < dims; i++ {
				var sum float64
				for j := 0; j < dims; j++ {
					sum += cov[i][j] * v[j]
				}
				next[i] = sum
			}

			// Deflate against already-extracted components to keep the
			// new axis approximately orthogonal to them.
			for _, prev := range components {
				var dot float64
				for i := range next {
					dot += next[i] * prev[i]
				}
				for i := range next {
					next[i] -= dot * prev[i]
				}
			}

			normalizeVec(next)
			v = next
		}

		components = append(components, v)
	}

	// Project every centered point onto the components.
	out := make([]Position, n)
	for i, row := range centered {
		for pc, comp := range components {
			var dot float64
			for d := range row {
				dot += row[d] * comp[d]
			}
			out[i][pc] = dot
		}
	}
	return out
}

// NormalizePositions rescales a point set into a bounded display volume:
// each axis is centered at its min/max midpoint, then all axes are divided
// by the single largest axis range and multiplied by scale. The result is
// centered at the origin with its widest axis spanning [-scale/2, scale/2].
// Aspect ratios between axes are preserved. Zero-range axes fall back to a
// range of 1 so degenerate sets never divide by zero.
func NormalizePositions(positions []Position, scale float64) []Position {
	if len(positions) == 0 {
		return []Position{}
	}

	mins := Position{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxs := Position{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, pos := range positions {
		for i := 0; i < 3; i++ {
			mins[i] = math.Min(mins[i], pos[i])
			maxs[i] = math.Max(maxs[i], pos[i])
		}
	}

	var centers, ranges Position
	for i := 0; i < 3; i++ {
		centers[i] = (mins[i] + maxs[i]) / 2
		ranges[i] = maxs[i] - mins[i]
		if ranges[i] == 0 {
			ranges[i] = 1
		}
	}
	maxRange := math.Max(ranges[0], math.Max(ranges[1], ranges[2]))

	out := make([]Position, len(positions))
	for i, pos := range positions {
		for d := 0; d < 3; d++ {
			out[i][d] = (pos[d] - centers[d]) / maxRange * scale
		}
	}
	return out
}

func normalizeVec(v []float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
}
