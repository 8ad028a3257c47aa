package micro

import (
	"fmt"
	"math"
	"strings"

	"github.com/GG1991/MicroPP/hexgrid"
)

// MicroType selects how elements are mapped to material ids
type MicroType uint8

const (
	MicHomogeneous  MicroType = iota // Material 0 everywhere
	MicSphere                        // Sphere of radius p centred in the RVE is material 1
	MicLayerY                        // Elements below y = p*ly are material 1
	MicCylinderZ                     // Cylinder of radius p along z through the centre is material 1
	MicCylindersXZ                   // Two crossed cylinders of radius p, along x and along z
	numMicroTypes
)

var MicroTypeNames = map[string]MicroType{
	"homogeneous":  MicHomogeneous,
	"sphere":       MicSphere,
	"layer":        MicLayerY,
	"layer-y":      MicLayerY,
	"cylinder":     MicCylinderZ,
	"cylinder-z":   MicCylinderZ,
	"fibers-xz":    MicCylindersXZ,
	"cylinders-xz": MicCylindersXZ,
}

var microTypePrint = []string{"Homogeneous", "Sphere", "LayerY", "CylinderZ", "CylindersXZ"}

func (mt MicroType) String() string {
	if mt >= numMicroTypes {
		return fmt.Sprintf("MicroType(%d)", uint8(mt))
	}
	return microTypePrint[mt]
}

func NewMicroType(token string) (mt MicroType, err error) {
	var ok bool
	if mt, ok = MicroTypeNames[strings.ToLower(strings.TrimSpace(token))]; !ok {
		err = fmt.Errorf("%w: unknown micro type %q", ErrConfiguration, token)
	}
	return
}

// NumMaterials is the number of distinct material ids the geometry uses
func (mt MicroType) NumMaterials() int {
	if mt == MicHomogeneous {
		return 1
	}
	return 2
}

type microstructure struct {
	kind       MicroType
	lx, ly, lz float64
	param      float64
}

func newMicrostructure(kind MicroType, params []float64) (ms microstructure, err error) {
	if kind >= numMicroTypes {
		err = fmt.Errorf("%w: unknown micro type %d", ErrConfiguration, kind)
		return
	}
	if len(params) < 3 {
		err = fmt.Errorf("%w: micro params need the RVE lengths [lx,ly,lz], have %v",
			ErrConfiguration, params)
		return
	}
	ms = microstructure{kind: kind, lx: params[0], ly: params[1], lz: params[2]}
	if kind == MicHomogeneous {
		return
	}
	if len(params) < 4 || !(params[3] > 0) {
		err = fmt.Errorf("%w: micro type %s needs a positive geometry parameter, have %v",
			ErrConfiguration, kind, params)
		return
	}
	ms.param = params[3]
	return
}

// materialID maps a point, normally an element centroid, to a material id
func (ms *microstructure) materialID(x [hexgrid.Dim]float64) int {
	var (
		cx, cy, cz = x[0] - ms.lx/2, x[1] - ms.ly/2, x[2] - ms.lz/2
		inside     bool
	)
	switch ms.kind {
	case MicSphere:
		inside = math.Sqrt(cx*cx+cy*cy+cz*cz) < ms.param
	case MicLayerY:
		inside = x[1] < ms.param*ms.ly
	case MicCylinderZ:
		inside = math.Hypot(cx, cy) < ms.param
	case MicCylindersXZ:
		inside = math.Hypot(cx, cy) < ms.param || math.Hypot(cy, cz) < ms.param
	}
	if inside {
		return 1
	}
	return 0
}
