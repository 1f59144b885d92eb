package simplex

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// dependencyTol is the relative residual below which a row counts as a
// combination of the rows kept before it.
const dependencyTol = 1e-9

// dropDependentRows removes equality rows that are linear combinations of
// earlier rows, leaving A with full row rank. A dropped row whose right-hand
// side disagrees with the same combination of kept right-hand sides makes the
// system infeasible.
//
// Rows with a private slack column are always kept and never enter the
// basis: no combination of other rows can reach their slack.
func dropDependentRows(rows []row, numCols int) ([]row, error) {
	var (
		basis    [][]float64 // orthonormal span of the kept shared rows
		basisRHS []float64   // right-hand side of each basis equation
	)

	kept := make([]row, 0, len(rows))
	for _, r := range rows {
		if r.private {
			kept = append(kept, r)
			continue
		}

		vec := make([]float64, numCols)
		for col, coef := range r.coefs {
			vec[col] = coef
		}
		norm := floats.Norm(vec, 2)
		rhs := r.rhs
		scale := math.Max(1, math.Abs(rhs))

		// Two Gram-Schmidt passes keep the residual orthogonal in floating point.
		for pass := 0; pass < 2; pass++ {
			for k, q := range basis {
				proj := floats.Dot(q, vec)
				floats.AddScaled(vec, -proj, q)
				rhs -= proj * basisRHS[k]
				scale += math.Abs(proj * basisRHS[k])
			}
		}

		residual := floats.Norm(vec, 2)
		if residual <= dependencyTol*norm {
			if math.Abs(rhs) > dependencyTol*scale {
				return nil, fmt.Errorf("%w: implied equation 0 = %g", errInconsistent, rhs)
			}
			continue
		}

		floats.Scale(1/residual, vec)
		basis = append(basis, vec)
		basisRHS = append(basisRHS, rhs/residual)
		kept = append(kept, r)
	}

	return kept, nil
}
