package InputParameters

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GG1991/MicroPP/ell"
	"github.com/GG1991/MicroPP/types"
)

func TestParse(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
NGP: 2
Size: [3, 3, 3]
MicroType: Sphere
MicroParams: [1, 1, 1, 0.1]
Materials:
  - ID: 0
    Type: plastic
    E: 1.e6
    Nu: 0.3
    Ka: 5.e4
    Sy: 2.e4
  - {ID: 1, Type: 1, E: 1.e3, Nu: 0.3, Ka: 5.e4, Sy: 1.e3}
StrainDir: 2
Solver: cholesky
`)
	var input InputParameters3D
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, [3]int{3, 3, 3}, input.Size)
	assert.Equal(t, 0.1, input.MicroParams[3])
	require.Equal(t, 2, len(input.Materials))
	assert.Equal(t, types.LawPlastic, input.Materials[0].Type)
	assert.Equal(t, types.LawPlastic, input.Materials[1].Type)
	assert.Equal(t, 1.e3, input.Materials[1].Sy)
	// Defaults
	assert.Equal(t, 60, input.TimeSteps)
	assert.Equal(t, 0.01, input.DEps)
	s, err := input.LinearSolver()
	require.NoError(t, err)
	assert.Equal(t, ell.Cholesky{}, s)
	input.Print()
	{ // Ramp up, down and up again on the driven component
		path := input.StrainPath()
		require.Equal(t, 60, len(path))
		assert.InDelta(t, 0.01, path[0][2], 1e-15)
		assert.InDelta(t, 0.2, path[19][2], 1e-12)
		assert.InDelta(t, 0., path[39][2], 1e-12)
		assert.InDelta(t, 0.2, path[59][2], 1e-12)
		assert.Equal(t, 0., path[59][0])
	}
	{
		m, err := input.NewMicro()
		require.NoError(t, err)
		assert.Equal(t, 2, m.NumGP())
		assert.Equal(t, 27, m.Grid().NumNodes)
	}
}

func TestReadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/good.yaml", []byte(ExampleFile), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/bad.yaml", []byte("MicroType: torus\nMaterials: [{ID: 0, Type: elastic, E: 1, Nu: 0.2}]\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/dir.yaml", []byte("StrainDir: 6\nMaterials: [{ID: 0, Type: elastic, E: 1, Nu: 0.2}]\n"), 0644))
	ip, err := ReadFile(fs, "/in/good.yaml")
	require.NoError(t, err)
	assert.Equal(t, 4, ip.NGP)
	assert.Equal(t, types.LawElastic, ip.Materials[1].Type)
	_, err = ReadFile(fs, "/in/bad.yaml")
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	_, err = ReadFile(fs, "/in/dir.yaml")
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	_, err = ReadFile(fs, "/in/missing.yaml")
	assert.Error(t, err)
}
