package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"

	"github.com/GG1991/MicroPP/ell"
	"github.com/GG1991/MicroPP/material"
	"github.com/GG1991/MicroPP/micro"
	"github.com/GG1991/MicroPP/types"
)

// Parameters obtained from the YAML input file
type InputParameters3D struct {
	Title           string            `yaml:"Title"`
	NGP             int               `yaml:"NGP"`
	Size            [3]int            `yaml:"Size"` // Nodes per direction
	MicroType       string            `yaml:"MicroType"`
	MicroParams     []float64         `yaml:"MicroParams"` // lx, ly, lz, geometry parameter
	Materials       []material.Record `yaml:"Materials"`
	TimeSteps       int               `yaml:"TimeSteps"`
	StrainDir       int               `yaml:"StrainDir"` // Voigt component driven by the strain path
	DEps            float64           `yaml:"DEps"`
	NRMaxIts        int               `yaml:"NRMaxIts"`
	NRAbsTol        float64           `yaml:"NRAbsTol"`
	NRRelTol        float64           `yaml:"NRRelTol"`
	Solver          string            `yaml:"Solver"` // CG or Cholesky
	CGMaxIts        int               `yaml:"CGMaxIts"`
	CGRelTol        float64           `yaml:"CGRelTol"`
	Workers         int               `yaml:"Workers"`
	AssemblyWorkers int               `yaml:"AssemblyWorkers"`
}

var ExampleFile = `
########################################
Title: "Sphere in matrix"
NGP: 4
Size: [10, 10, 10]
MicroType: sphere   # homogeneous, sphere, layer-y, cylinder-z, cylinders-xz
MicroParams: [1., 1., 1., 0.2]
Materials:
  - {ID: 0, Type: plastic, E: 1.e6, Nu: 0.3, Ka: 5.e4, Sy: 2.e4}
  - {ID: 1, Type: elastic, E: 1.e7, Nu: 0.3}
TimeSteps: 60
StrainDir: 2
DEps: 0.01
########################################
`

func (ip *InputParameters3D) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.setDefaults()
	return ip.Validate()
}

func ReadFile(fs afero.Fs, fileName string) (ip *InputParameters3D, err error) {
	var data []byte
	if data, err = afero.ReadFile(fs, fileName); err != nil {
		return
	}
	ip = &InputParameters3D{}
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("%s: %w", fileName, err)
	}
	return
}

func (ip *InputParameters3D) setDefaults() {
	if ip.NGP == 0 {
		ip.NGP = 1
	}
	if len(ip.MicroType) == 0 {
		ip.MicroType = "homogeneous"
	}
	if ip.TimeSteps == 0 {
		ip.TimeSteps = 60
	}
	if ip.DEps == 0 {
		ip.DEps = 0.01
	}
	if ip.NRMaxIts == 0 {
		ip.NRMaxIts = micro.DefaultNRMaxIts
	}
	if ip.NRAbsTol == 0 {
		ip.NRAbsTol = micro.DefaultNRAbsTol
	}
	if ip.NRRelTol == 0 {
		ip.NRRelTol = micro.DefaultNRRelTol
	}
	if len(ip.Solver) == 0 {
		ip.Solver = "CG"
	}
}

func (ip *InputParameters3D) Validate() (err error) {
	if _, err = micro.NewMicroType(ip.MicroType); err != nil {
		return
	}
	if ip.StrainDir < 0 || ip.StrainDir >= types.NVoigt {
		return fmt.Errorf("%w: StrainDir must be in [0,%d), have %d", types.ErrConfiguration, types.NVoigt, ip.StrainDir)
	}
	if len(ip.Materials) == 0 {
		return fmt.Errorf("%w: no Materials", types.ErrConfiguration)
	}
	if _, err = ip.LinearSolver(); err != nil {
		return
	}
	return
}

func (ip *InputParameters3D) LinearSolver() (s ell.Solver, err error) {
	switch strings.ToLower(ip.Solver) {
	case "cg":
		cg := ell.NewCG()
		if ip.CGMaxIts > 0 {
			cg.MaxIts = ip.CGMaxIts
		}
		if ip.CGRelTol > 0 {
			cg.RelTol = ip.CGRelTol
		}
		s = cg
	case "cholesky":
		s = ell.Cholesky{}
	default:
		err = fmt.Errorf("%w: unknown Solver %q, use CG or Cholesky", types.ErrConfiguration, ip.Solver)
	}
	return
}

// NewMicro builds the instance described by the input
func (ip *InputParameters3D) NewMicro(opts ...micro.Option) (m *micro.Micro, err error) {
	var (
		mt  micro.MicroType
		tab *material.Table
		s   ell.Solver
	)
	if mt, err = micro.NewMicroType(ip.MicroType); err != nil {
		return
	}
	if tab, err = material.NewTable(ip.Materials...); err != nil {
		return
	}
	if s, err = ip.LinearSolver(); err != nil {
		return
	}
	opts = append([]micro.Option{
		micro.WithNewton(ip.NRMaxIts, ip.NRAbsTol, ip.NRRelTol),
		micro.WithSolver(s),
		micro.WithWorkers(ip.Workers),
		micro.WithAssemblyWorkers(ip.AssemblyWorkers),
	}, opts...)
	return micro.New(ip.NGP, ip.Size, mt, ip.MicroParams, tab, opts...)
}

/*
StrainPath returns the macro strain of every time step: the driven component
grows by DEps per step for the first third, decreases for the second third and
grows again for the rest.
*/
func (ip *InputParameters3D) StrainPath() (path []types.Voigt) {
	var (
		eps   types.Voigt
		third = ip.TimeSteps / 3
	)
	path = make([]types.Voigt, ip.TimeSteps)
	for t := range path {
		switch {
		case t < third:
			eps[ip.StrainDir] += ip.DEps
		case t < 2*third:
			eps[ip.StrainDir] -= ip.DEps
		default:
			eps[ip.StrainDir] += ip.DEps
		}
		path[t] = eps
	}
	return
}

func (ip *InputParameters3D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t= Gauss points\n", ip.NGP)
	fmt.Printf("%v\t\t= Size (nodes)\n", ip.Size)
	fmt.Printf("[%s]\t\t= MicroType\n", ip.MicroType)
	fmt.Printf("%v\t= MicroParams\n", ip.MicroParams)
	for _, rec := range ip.Materials {
		fmt.Printf("Material[%d] = %s E=%g Nu=%g Ka=%g Sy=%g\n", rec.ID, rec.Type, rec.E, rec.Nu, rec.Ka, rec.Sy)
	}
	fmt.Printf("[%d]\t\t\t= TimeSteps\n", ip.TimeSteps)
	fmt.Printf("[%d] %8.5f\t\t= StrainDir, DEps\n", ip.StrainDir, ip.DEps)
	fmt.Printf("[%d] %g %g\t= Newton MaxIts, AbsTol, RelTol\n", ip.NRMaxIts, ip.NRAbsTol, ip.NRRelTol)
	fmt.Printf("[%s]\t\t\t= Solver\n", ip.Solver)
}
