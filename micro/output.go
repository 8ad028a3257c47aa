package micro

import (
	"bufio"
	"fmt"
	"io"

	"github.com/GG1991/MicroPP/hexgrid"
	"github.com/GG1991/MicroPP/types"
)

// Fields is a copy of the latest solution of one RVE
type Fields struct {
	Displ      []float64     // Nodal displacement, 3 per node
	Strain     []types.Voigt // Per element, averaged over its gauss points
	Stress     []types.Voigt // Per element, averaged over its gauss points
	MaterialID []int
	Vars       []float64 // Internal variables per element, gauss point, variable
	NumVars    int
}

func (m *Micro) GetFields(gp int) (f *Fields, err error) {
	var r *rve
	if r, err = m.result(gp); err != nil {
		return
	}
	g := m.grid
	f = &Fields{
		Displ:      append([]float64{}, r.u...),
		Strain:     make([]types.Voigt, g.NumElems),
		Stress:     make([]types.Voigt, g.NumElems),
		MaterialID: make([]int, g.NumElems),
		Vars:       append([]float64{}, r.vars...),
		NumVars:    m.nvars,
	}
	for e := 0; e < g.NumElems; e++ {
		var (
			ex, ey, ez = g.ElemIJK(e)
			ue         = g.ElemDispl(r.u, ex, ey, ez)
			law        = m.law(ex, ey, ez)
		)
		f.MaterialID[e] = law.Record().ID
		for gp := 0; gp < hexgrid.NGP; gp++ {
			var (
				eps = g.StrainFromElem(&ue, gp)
				sig types.Voigt
			)
			// The latest variables already hold the return mapped state
			law.Stress(&eps, m.gpVars(r.vars, ex, ey, ez, gp), &sig, nil)
			f.Strain[e] = f.Strain[e].Add(eps)
			f.Stress[e] = f.Stress[e].Add(sig)
		}
		f.Strain[e] = f.Strain[e].Scale(1. / hexgrid.NGP)
		f.Stress[e] = f.Stress[e].Scale(1. / hexgrid.NGP)
	}
	return
}

// WriteVTK writes the latest solution of RVE gp as a legacy ASCII VTK unstructured grid of hexahedra
func (m *Micro) WriteVTK(gp int, w io.Writer) (err error) {
	var f *Fields
	if f, err = m.GetFields(gp); err != nil {
		return
	}
	var (
		g  = m.grid
		bw = bufio.NewWriter(w)
	)
	fmt.Fprintf(bw, "# vtk DataFile Version 2.0\nmicropp gp %d\nASCII\nDATASET UNSTRUCTURED_GRID\n", gp)
	fmt.Fprintf(bw, "POINTS %d double\n", g.NumNodes)
	for n := 0; n < g.NumNodes; n++ {
		x := g.NodeCoords(n)
		fmt.Fprintf(bw, "%e %e %e\n", x[0], x[1], x[2])
	}
	fmt.Fprintf(bw, "CELLS %d %d\n", g.NumElems, g.NumElems*(hexgrid.NPE+1))
	for e := 0; e < g.NumElems; e++ {
		nodes := g.ElemNodes(g.ElemIJK(e))
		fmt.Fprintf(bw, "%d", hexgrid.NPE)
		for _, n := range nodes {
			fmt.Fprintf(bw, " %d", n)
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintf(bw, "CELL_TYPES %d\n", g.NumElems)
	for e := 0; e < g.NumElems; e++ {
		fmt.Fprintln(bw, vtkHexahedron)
	}
	fmt.Fprintf(bw, "POINT_DATA %d\nVECTORS displ double\n", g.NumNodes)
	for n := 0; n < g.NumNodes; n++ {
		d := f.Displ[n*hexgrid.Dim:]
		fmt.Fprintf(bw, "%e %e %e\n", d[0], d[1], d[2])
	}
	fmt.Fprintf(bw, "CELL_DATA %d\nSCALARS material int 1\nLOOKUP_TABLE default\n", g.NumElems)
	for _, id := range f.MaterialID {
		fmt.Fprintln(bw, id)
	}
	fmt.Fprintf(bw, "FIELD FieldData 2\n")
	for _, field := range []struct {
		name string
		vals []types.Voigt
	}{{"strain", f.Strain}, {"stress", f.Stress}} {
		fmt.Fprintf(bw, "%s %d %d double\n", field.name, types.NVoigt, g.NumElems)
		for _, v := range field.vals {
			fmt.Fprintf(bw, "%e %e %e %e %e %e\n", v[0], v[1], v[2], v[3], v[4], v[5])
		}
	}
	return bw.Flush()
}

const vtkHexahedron = 12

func (m *Micro) PrintInfo(w io.Writer) {
	g := m.grid
	fmt.Fprintf(w, "ngp = %d\n", m.ngp)
	fmt.Fprintf(w, "nodes = [%d, %d, %d], elements = [%d, %d, %d], dofs = %d\n",
		g.Nx, g.Ny, g.Nz, g.Nex, g.Ney, g.Nez, g.NumDofs)
	fmt.Fprintf(w, "lengths = [%g, %g, %g], micro type = %s, micro params = %v\n",
		g.Lx, g.Ly, g.Lz, m.ms.kind, m.microParams)
	fmt.Fprintf(w, "internal variables per gauss point = %d\n", m.nvars)
	for _, id := range m.materials.IDs() {
		rec := m.materials.Law(id).Record()
		fmt.Fprintf(w, "material %d: %s E = %g Nu = %g Ka = %g Sy = %g\n",
			id, rec.Type, rec.E, rec.Nu, rec.Ka, rec.Sy)
	}
	fmt.Fprintf(w, "newton: max its = %d, abs tol = %g, rel tol = %g, solver = %T\n",
		m.opts.NRMaxIts, m.opts.NRAbsTol, m.opts.NRRelTol, m.opts.Solver)
	if m.partitions != nil {
		fmt.Fprintf(w, "workers = %d, assembly workers = %d\n", m.partitions.ParallelDegree, m.opts.AssemblyWorkers)
	}
	if !m.solved || m.closed {
		return
	}
	for _, r := range m.rves {
		fmt.Fprintf(w, "gp %d: %s cost = %d nonlinear = %t f_trial_max = %e\n",
			r.gp, r.state, r.cost, r.nonLinear, r.fTrialMax)
	}
}
