package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes(t *testing.T) {
	{ // Voigt algebra
		v := Voigt{1, 2, 3, 4, 5, 6}
		assert.Equal(t, 6., v.Trace())
		assert.Equal(t, Voigt{2, 4, 6, 8, 10, 12}, v.Scale(2))
		assert.Equal(t, Voigt{2, 2, 3, 4, 5, 6}, v.Add(Unit(0)))
		assert.InDelta(t, 9.539392014169456, v.Norm(), 1e-14)
	}
	{ // Tangent storage is row major
		var c Ctan
		c.Set(1, 4, 3)
		assert.Equal(t, 3., c[1*NVoigt+4])
		assert.Equal(t, 3., c.At(1, 4))
		assert.Equal(t, 3., c.MaxAsymmetry())
		ct := c.Transpose()
		assert.Equal(t, 3., ct.At(4, 1))
		c.SetCol(4, Voigt{1, 1, 1, 1, 1, 1})
		assert.Equal(t, Voigt{0, 0, 0, 0, 1, 0}, c.Row(2))
		assert.Equal(t, Voigt{1, 1, 1, 1, 1, 1}, c.Mul(Unit(4)))
	}
	{ // Face flags
		f := FaceX1 | FaceZ1
		assert.True(t, f.IsBoundary())
		assert.True(t, f.Has(FaceZ1))
		assert.False(t, f.Has(FaceY0))
		assert.Equal(t, "x1|z1", f.String())
		assert.Equal(t, "interior", FaceNone.String())
	}
	{ // Law tags by name or number
		lt, err := NewLawType(" Elasto-Plastic ")
		require.NoError(t, err)
		assert.Equal(t, LawPlastic, lt)
		_, err = NewLawType("damage")
		assert.True(t, errors.Is(err, ErrConfiguration))
		var rec struct{ Type LawType }
		require.NoError(t, json.Unmarshal([]byte(`{"Type": "elastic"}`), &rec))
		assert.Equal(t, LawElastic, rec.Type)
		require.NoError(t, json.Unmarshal([]byte(`{"Type": 1}`), &rec))
		assert.Equal(t, LawPlastic, rec.Type)
		assert.Error(t, json.Unmarshal([]byte(`{"Type": 7}`), &rec))
		data, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.Equal(t, `{"Type":"Plastic"}`, string(data))
		assert.Equal(t, "LawType(9)", LawType(9).String())
	}
}
