package simplex

import (
	"errors"
	"fmt"
	"math"

	"github.com/aristath/rebalancer/internal/modules/optimization/lp"
	"github.com/aristath/rebalancer/internal/modules/optimization/solver"
)

// term maps a model variable onto a standard-form column.
type term struct {
	col  int
	sign float64
}

// mapping expresses a model variable as offset + sum(sign * column).
type mapping struct {
	offset float64
	terms  []term
}

// standardForm is A x = b, x >= 0 with A stored row-major.
type standardForm struct {
	a       []float64
	b       []float64
	c       []float64
	numCols int
	vars    []mapping
}

func (sf *standardForm) recover(cols []float64) []float64 {
	values := make([]float64, len(sf.vars))
	for i, m := range sf.vars {
		v := m.offset
		for _, t := range m.terms {
			v += t.sign * cols[t.col]
		}
		values[i] = v
	}
	return values
}

// row is one equation of A x = b. A row with a slack column of its own is
// independent of every other row.
type row struct {
	coefs   map[int]float64
	rhs     float64
	private bool
}

var (
	errInfeasibleRow = errors.New("constraint cannot be satisfied by fixed variables")
	errUnboundedVar  = errors.New("unconstrained variable improves objective without limit")
	errInconsistent  = errors.New("equality constraints contradict each other")
)

// toStandardForm rewrites model. On failure it returns the status the failure
// implies along with the error.
func toStandardForm(model *lp.Model) (*standardForm, solver.Status, error) {
	n := model.NumVariables()
	cost := make([]float64, n)
	for v, coef := range model.Objective.Coefficients {
		cost[v] = coef
		if model.Objective.Sense == lp.Maximize {
			cost[v] = -coef
		}
	}

	// Rows with both sides infinite constrain nothing.
	active := make([]*lp.Constraint, 0, len(model.Constraints))
	used := make([]bool, n)
	for _, c := range model.Constraints {
		if math.IsInf(c.Lower, -1) && math.IsInf(c.Upper, 1) {
			continue
		}
		active = append(active, c)
		for v, coef := range c.Coefficients {
			if coef != 0 {
				used[v] = true
			}
		}
	}

	// Fixed value per variable; NaN means the variable becomes columns.
	fixed := make([]float64, n)
	for i, v := range model.Variables {
		fixed[i] = math.NaN()
		switch {
		case v.Fixed():
			fixed[i] = v.Lower
		case !used[i]:
			val, err := cheapestBound(v, cost[i])
			if err != nil {
				return nil, solver.StatusUnbounded, fmt.Errorf("variable %q: %w", v.Name, err)
			}
			fixed[i] = val
		}
	}

	sf := &standardForm{vars: make([]mapping, n)}
	var rows []row
	var costs []float64
	newCol := func(c float64) int {
		costs = append(costs, c)
		sf.numCols++
		return sf.numCols - 1
	}

	for i, v := range model.Variables {
		if !math.IsNaN(fixed[i]) {
			sf.vars[i] = mapping{offset: fixed[i]}
			continue
		}
		lowerInf := math.IsInf(v.Lower, -1)
		upperInf := math.IsInf(v.Upper, 1)
		switch {
		case !lowerInf:
			col := newCol(cost[i])
			sf.vars[i] = mapping{offset: v.Lower, terms: []term{{col: col, sign: 1}}}
			if !upperInf {
				slack := newCol(0)
				rows = append(rows, row{
					coefs:   map[int]float64{col: 1, slack: 1},
					rhs:     v.Upper - v.Lower,
					private: true,
				})
			}
		case !upperInf:
			col := newCol(-cost[i])
			sf.vars[i] = mapping{offset: v.Upper, terms: []term{{col: col, sign: -1}}}
		default:
			pos := newCol(cost[i])
			neg := newCol(-cost[i])
			sf.vars[i] = mapping{terms: []term{{col: pos, sign: 1}, {col: neg, sign: -1}}}
		}
	}

	for _, c := range active {
		coefs := make(map[int]float64)
		constant := 0.0
		for v, coef := range c.Coefficients {
			if coef == 0 {
				continue
			}
			m := sf.vars[v]
			constant += coef * m.offset
			for _, t := range m.terms {
				coefs[t.col] += coef * t.sign
			}
		}
		for col, coef := range coefs {
			if coef == 0 {
				delete(coefs, col)
			}
		}

		lower := c.Lower - constant
		upper := c.Upper - constant

		if len(coefs) == 0 {
			if lower > feasibilityTol || upper < -feasibilityTol {
				return nil, solver.StatusInfeasible, fmt.Errorf("%w: %q needs [%g, %g], fixed activity %g",
					errInfeasibleRow, c.Name, c.Lower, c.Upper, constant)
			}
			continue
		}

		if c.Equality() {
			rows = append(rows, row{coefs: coefs, rhs: lower})
			continue
		}
		if !math.IsInf(lower, -1) {
			r := row{coefs: cloneCoefs(coefs), rhs: lower, private: true}
			r.coefs[newCol(0)] = -1
			rows = append(rows, r)
		}
		if !math.IsInf(upper, 1) {
			r := row{coefs: cloneCoefs(coefs), rhs: upper, private: true}
			r.coefs[newCol(0)] = 1
			rows = append(rows, r)
		}
	}

	// gonum rejects a singular A, so equality rows implied by earlier ones go.
	rows, err := dropDependentRows(rows, sf.numCols)
	if err != nil {
		return nil, solver.StatusInfeasible, err
	}

	sf.c = costs
	sf.b = make([]float64, len(rows))
	sf.a = make([]float64, len(rows)*sf.numCols)
	for r, rw := range rows {
		sf.b[r] = rw.rhs
		for col, coef := range rw.coefs {
			sf.a[r*sf.numCols+col] = coef
		}
	}
	return sf, solver.StatusOptimal, nil
}

// cheapestBound picks the value of an unconstrained variable that minimizes
// its cost contribution.
func cheapestBound(v lp.Variable, cost float64) (float64, error) {
	switch {
	case cost > 0:
		if math.IsInf(v.Lower, -1) {
			return 0, errUnboundedVar
		}
		return v.Lower, nil
	case cost < 0:
		if math.IsInf(v.Upper, 1) {
			return 0, errUnboundedVar
		}
		return v.Upper, nil
	default:
		if !math.IsInf(v.Lower, -1) {
			return v.Lower, nil
		}
		if !math.IsInf(v.Upper, 1) {
			return v.Upper, nil
		}
		return 0, nil
	}
}

func cloneCoefs(src map[int]float64) map[int]float64 {
	dst := make(map[int]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
