package material

import (
	"errors"
	"math"
	"testing"

	"github.com/GG1991/MicroPP/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	recElastic = Record{ID: 0, Type: types.LawElastic, E: 1.e6, Nu: 0.3}
	recPlastic = Record{ID: 1, Type: types.LawPlastic, E: 1.e6, Nu: 0.3, Ka: 5.e4, Sy: 2.e4}
)

// numericTangent differentiates Stress by central differences
func numericTangent(law Law, eps types.Voigt, vars []float64) (c types.Ctan) {
	const h = 1.e-8
	for j := 0; j < types.NVoigt; j++ {
		var sp, sm types.Voigt
		ep, em := eps, eps
		ep[j] += h
		em[j] -= h
		law.Stress(&ep, vars, &sp, nil)
		law.Stress(&em, vars, &sm, nil)
		for i := 0; i < types.NVoigt; i++ {
			c.Set(i, j, (sp[i]-sm[i])/(2*h))
		}
	}
	return
}

func TestTable(t *testing.T) {
	{ // Validation
		_, err := NewTable()
		assert.True(t, errors.Is(err, types.ErrConfiguration))
		_, err = NewTable(recElastic, recElastic)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
		bad := recPlastic
		bad.Sy = 0
		_, err = NewTable(bad)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
		bad = recElastic
		bad.Type = types.LawType(42)
		_, err = New(&bad)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
	}
	tab, err := NewTable(recPlastic, recElastic)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, tab.IDs())
	assert.NoError(t, tab.Require(2))
	assert.Error(t, tab.Require(3))
	assert.Equal(t, NumVarsPlastic, tab.MaxNumVars())
	assert.False(t, tab.Linear())
	_, isPlastic := tab.Law(1).(*Plastic)
	assert.True(t, isPlastic)
	assert.Nil(t, tab.Law(7))
}

func TestElastic(t *testing.T) {
	law := NewElastic(&recElastic)
	var (
		E, nu  = recElastic.E, recElastic.Nu
		lambda = E * nu / ((1 + nu) * (1 - 2*nu))
		mu     = E / (2 * (1 + nu))
		eps    = types.Voigt{0.001, -0.002, 0.0005, 0.003, 0, 0.01}
		sig    types.Voigt
	)
	f := law.Stress(&eps, nil, &sig, nil)
	assert.True(t, f < 0)
	tr := eps.Trace()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, lambda*tr+2*mu*eps[i], sig[i], 1e-8)
	}
	for i := 3; i < 6; i++ {
		assert.InDelta(t, mu*eps[i], sig[i], 1e-8)
	}
	var c types.Ctan
	law.Tangent(&eps, nil, &c)
	assert.Equal(t, 0., c.MaxAsymmetry())
	assert.InDelta(t, lambda+2*mu, c.At(0, 0), 1e-8)
	assert.InDelta(t, mu, c.At(5, 5), 1e-8)
}

func TestPlastic(t *testing.T) {
	law := NewPlastic(&recPlastic)
	{ // Below yield: elastic response, no variable change
		eps := types.Voigt{0.001, 0, 0, 0, 0, 0}
		var sig types.Voigt
		vars := make([]float64, NumVarsPlastic)
		f := law.Stress(&eps, nil, &sig, vars)
		assert.True(t, f < 0)
		assert.Equal(t, make([]float64, NumVarsPlastic), vars)
		var c types.Ctan
		law.Tangent(&eps, nil, &c)
		assert.Equal(t, law.ctanElast, c)
	}
	{ // Past yield: stress returns to the updated yield surface
		eps := types.Voigt{0.1, -0.05, 0.01, 0.05, -0.02, 0.03}
		var sig types.Voigt
		vars := make([]float64, NumVarsPlastic)
		f := law.Stress(&eps, nil, &sig, vars)
		require.True(t, f > 0)
		p := sig.Trace() / 3
		s := types.Voigt{sig[0] - p, sig[1] - p, sig[2] - p, sig[3], sig[4], sig[5]}
		alpha := vars[ixAlpha]
		assert.True(t, alpha > 0)
		assert.InDelta(t, sqrt23*(recPlastic.Sy+recPlastic.Ka*alpha), tensorNorm(&s), 1e-6)
		// Plastic flow is isochoric
		assert.InDelta(t, 0., vars[0]+vars[1]+vars[2], 1e-15)
		// Re-evaluating from the updated state at the same strain is elastic
		f2 := law.Stress(&eps, vars, &sig, nil)
		assert.True(t, f2 <= 1e-8*recPlastic.Sy)
	}
	{ // Consistent tangent matches the derivative of the return mapping
		eps := types.Voigt{0.03, -0.01, 0.002, 0.02, -0.004, 0.006}
		vars := []float64{0.001, -0.0005, -0.0005, 0.002, 0, 0.001, 0.002}
		var c types.Ctan
		law.Tangent(&eps, vars, &c)
		cn := numericTangent(law, eps, vars)
		scale := recPlastic.E
		for i := range c {
			assert.InDelta(t, cn[i]/scale, c[i]/scale, 1e-5, "component %d", i)
		}
		assert.True(t, c.MaxAsymmetry() < 1e-9*scale)
		// Plastic tangent is softer than the elastic one along the flow direction
		assert.True(t, c.At(0, 0) < law.ctanElast.At(0, 0))
		assert.False(t, math.IsNaN(c[0]))
	}
}
