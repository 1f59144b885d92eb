// Package lp defines the linear program representation handed to solver engines.
//
// A Model is a set of continuous variables with explicit bounds, range
// constraints over those variables and a linear objective. Engines consume it
// read-only.
package lp

import (
	"errors"
	"fmt"
	"math"
)

// Sense is the optimization direction of an objective.
type Sense int

const (
	// Minimize is the default sense.
	Minimize Sense = iota
	// Maximize flips the objective direction.
	Maximize
)

// String returns the sense name.
func (s Sense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// VarID indexes a variable inside its Model.
type VarID int

// Variable is a continuous decision variable.
type Variable struct {
	Name  string
	Lower float64
	Upper float64 // math.Inf(1) when unbounded above
}

// Fixed reports whether the variable bounds collapse to a single value.
func (v Variable) Fixed() bool {
	return v.Lower == v.Upper
}

// Constraint is a range constraint Lower <= sum(coef * var) <= Upper.
// Equality constraints use Lower == Upper.
type Constraint struct {
	Name         string
	Lower        float64
	Upper        float64
	Coefficients map[VarID]float64
}

// SetCoefficient sets the coefficient of v, replacing any earlier value.
func (c *Constraint) SetCoefficient(v VarID, coef float64) {
	c.Coefficients[v] = coef
}

// SetBounds replaces the constraint range.
func (c *Constraint) SetBounds(lower, upper float64) {
	c.Lower = lower
	c.Upper = upper
}

// Equality reports whether the constraint is an equality.
func (c *Constraint) Equality() bool {
	return c.Lower == c.Upper
}

// Activity returns sum(coef * value) for the given assignment.
func (c *Constraint) Activity(values []float64) float64 {
	var sum float64
	for v, coef := range c.Coefficients {
		sum += coef * values[v]
	}
	return sum
}

// Objective is a linear objective.
type Objective struct {
	Sense        Sense
	Coefficients map[VarID]float64
}

// SetCoefficient sets the objective coefficient of v.
func (o *Objective) SetCoefficient(v VarID, coef float64) {
	o.Coefficients[v] = coef
}

// Model is a linear program.
type Model struct {
	Name        string
	Variables   []Variable
	Constraints []*Constraint
	Objective   Objective
}

// NewModel creates an empty minimization model.
func NewModel(name string) *Model {
	return &Model{
		Name: name,
		Objective: Objective{
			Sense:        Minimize,
			Coefficients: make(map[VarID]float64),
		},
	}
}

// AddVariable adds a continuous variable bounded by [lower, upper].
func (m *Model) AddVariable(name string, lower, upper float64) VarID {
	m.Variables = append(m.Variables, Variable{Name: name, Lower: lower, Upper: upper})
	return VarID(len(m.Variables) - 1)
}

// AddConstraint adds an empty range constraint and returns it for population.
func (m *Model) AddConstraint(name string, lower, upper float64) *Constraint {
	c := &Constraint{
		Name:         name,
		Lower:        lower,
		Upper:        upper,
		Coefficients: make(map[VarID]float64),
	}
	m.Constraints = append(m.Constraints, c)
	return c
}

// NumVariables returns the number of variables.
func (m *Model) NumVariables() int {
	return len(m.Variables)
}

// Constraint returns the constraint with the given name.
func (m *Model) Constraint(name string) (*Constraint, bool) {
	for _, c := range m.Constraints {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Evaluate returns the objective value for the given assignment.
func (m *Model) Evaluate(values []float64) float64 {
	var sum float64
	for v, coef := range m.Objective.Coefficients {
		sum += coef * values[v]
	}
	return sum
}

// ErrInvalidModel is returned by Validate.
var ErrInvalidModel = errors.New("invalid linear model")

// Validate checks the model is well formed: ordered finite-or-infinite bounds,
// no NaN, and coefficients that reference existing variables.
func (m *Model) Validate() error {
	n := VarID(len(m.Variables))
	for i, v := range m.Variables {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) {
			return fmt.Errorf("%w: variable %q has NaN bound", ErrInvalidModel, v.Name)
		}
		if v.Lower > v.Upper {
			return fmt.Errorf("%w: variable %d (%q) lower bound %g above upper bound %g",
				ErrInvalidModel, i, v.Name, v.Lower, v.Upper)
		}
		if math.IsInf(v.Lower, 1) || math.IsInf(v.Upper, -1) {
			return fmt.Errorf("%w: variable %q has empty domain", ErrInvalidModel, v.Name)
		}
	}
	for _, c := range m.Constraints {
		if math.IsNaN(c.Lower) || math.IsNaN(c.Upper) {
			return fmt.Errorf("%w: constraint %q has NaN bound", ErrInvalidModel, c.Name)
		}
		if c.Lower > c.Upper {
			return fmt.Errorf("%w: constraint %q lower bound %g above upper bound %g",
				ErrInvalidModel, c.Name, c.Lower, c.Upper)
		}
		for v, coef := range c.Coefficients {
			if v < 0 || v >= n {
				return fmt.Errorf("%w: constraint %q references unknown variable %d", ErrInvalidModel, c.Name, v)
			}
			if math.IsNaN(coef) || math.IsInf(coef, 0) {
				return fmt.Errorf("%w: constraint %q has non-finite coefficient", ErrInvalidModel, c.Name)
			}
		}
	}
	for v, coef := range m.Objective.Coefficients {
		if v < 0 || v >= n {
			return fmt.Errorf("%w: objective references unknown variable %d", ErrInvalidModel, v)
		}
		if math.IsNaN(coef) || math.IsInf(coef, 0) {
			return fmt.Errorf("%w: objective has non-finite coefficient", ErrInvalidModel)
		}
	}
	return nil
}
