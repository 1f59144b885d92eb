package lp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_AddVariableAndConstraint(t *testing.T) {
	m := NewModel("test")
	x := m.AddVariable("x", 0, math.Inf(1))
	y := m.AddVariable("y", 0, 0)

	assert.Equal(t, VarID(0), x)
	assert.Equal(t, VarID(1), y)
	assert.Equal(t, 2, m.NumVariables())
	assert.True(t, m.Variables[y].Fixed())
	assert.False(t, m.Variables[x].Fixed())

	c := m.AddConstraint("sum", 1, 3)
	c.SetCoefficient(x, 1)
	c.SetCoefficient(y, 2)
	c.SetCoefficient(y, -1) // overwrite

	got, ok := m.Constraint("sum")
	require.True(t, ok)
	assert.Equal(t, -1.0, got.Coefficients[y])
	assert.False(t, got.Equality())

	got.SetBounds(2, 2)
	assert.True(t, got.Equality())
	assert.InDelta(t, 1.0, got.Activity([]float64{3, 2}), 1e-12)

	_, ok = m.Constraint("missing")
	assert.False(t, ok)
}

func TestModel_Evaluate(t *testing.T) {
	m := NewModel("eval")
	x := m.AddVariable("x", 0, 10)
	y := m.AddVariable("y", 0, 10)
	m.Objective.SetCoefficient(x, 2)
	m.Objective.SetCoefficient(y, 3)

	assert.Equal(t, Minimize, m.Objective.Sense)
	assert.InDelta(t, 13.0, m.Evaluate([]float64{2, 3}), 1e-12)
}

func TestModel_Validate(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Model
		ok    bool
	}{
		{
			name: "well formed",
			build: func() *Model {
				m := NewModel("ok")
				x := m.AddVariable("x", 0, math.Inf(1))
				m.AddConstraint("c", 0, 1).SetCoefficient(x, 1)
				m.Objective.SetCoefficient(x, 1)
				return m
			},
			ok: true,
		},
		{
			name: "inverted variable bounds",
			build: func() *Model {
				m := NewModel("bad")
				m.AddVariable("x", 2, 1)
				return m
			},
		},
		{
			name: "inverted constraint bounds",
			build: func() *Model {
				m := NewModel("bad")
				m.AddConstraint("c", 5, 1)
				return m
			},
		},
		{
			name: "unknown variable in constraint",
			build: func() *Model {
				m := NewModel("bad")
				m.AddConstraint("c", 0, 1).SetCoefficient(VarID(3), 1)
				return m
			},
		},
		{
			name: "NaN coefficient in objective",
			build: func() *Model {
				m := NewModel("bad")
				x := m.AddVariable("x", 0, 1)
				m.Objective.SetCoefficient(x, math.NaN())
				return m
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.build().Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}
