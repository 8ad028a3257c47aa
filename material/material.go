// Package material implements the small strain constitutive laws evaluated at
// the RVE gauss points. Laws are pure: stresses and tangents are functions of
// the strain and the committed internal variables only, state transitions are
// owned by the caller.
package material

import (
	"fmt"
	"sort"

	"github.com/GG1991/MicroPP/types"
)

// Record holds the parameters of one material, immutable once a Table is built
type Record struct {
	ID   int           `json:"ID"`
	Type types.LawType `json:"Type"`
	E    float64       `json:"E"`  // Young modulus
	Nu   float64       `json:"Nu"` // Poisson ratio
	Ka   float64       `json:"Ka"` // Isotropic hardening modulus
	Sy   float64       `json:"Sy"` // Initial yield stress
}

func (r *Record) Validate() (err error) {
	if !(r.E > 0) {
		return fmt.Errorf("%w: material %d: E must be positive, have %g", types.ErrConfiguration, r.ID, r.E)
	}
	if !(r.Nu > -1 && r.Nu < 0.5) {
		return fmt.Errorf("%w: material %d: Nu must be in (-1, 0.5), have %g", types.ErrConfiguration, r.ID, r.Nu)
	}
	if r.Type == types.LawPlastic {
		if !(r.Sy > 0) || r.Ka < 0 {
			return fmt.Errorf("%w: material %d: plastic law needs Sy > 0 and Ka >= 0, have Sy=%g Ka=%g",
				types.ErrConfiguration, r.ID, r.Sy, r.Ka)
		}
	}
	return
}

// Lame returns λ and μ
func (r *Record) Lame() (lambda, mu float64) {
	lambda = r.E * r.Nu / ((1 + r.Nu) * (1 - 2*r.Nu))
	mu = r.E / (2 * (1 + r.Nu))
	return
}

/*
Law is the constitutive interface shared by every material variant.

Stress computes σ for the total strain eps starting from the committed internal
variables varsOld (nil means virgin state) and writes the updated variables to
varsNew when it is not nil. The returned fTrial is the trial yield function; the
point is nonlinear when fTrial > 0. Elastic laws return a negative value.

Tangent writes dσ/dε consistent with Stress at the same (eps, varsOld).
*/
type Law interface {
	Record() *Record
	NumVars() int
	Stress(eps *types.Voigt, varsOld []float64, sig *types.Voigt, varsNew []float64) (fTrial float64)
	Tangent(eps *types.Voigt, varsOld []float64, ctan *types.Ctan)
}

var allocators = map[types.LawType]func(rec *Record) Law{}

// New builds the law selected by the record's type tag
func New(rec *Record) (law Law, err error) {
	if err = rec.Validate(); err != nil {
		return
	}
	allocator, ok := allocators[rec.Type]
	if !ok {
		err = fmt.Errorf("%w: material %d: law %s is not available", types.ErrConfiguration, rec.ID, rec.Type)
		return
	}
	return allocator(rec), nil
}

// Table is the read only material collection shared by all RVEs of an instance
type Table struct {
	records []Record
	laws    map[int]Law
	ids     []int
}

func NewTable(records ...Record) (t *Table, err error) {
	if len(records) == 0 {
		err = fmt.Errorf("%w: empty material table", types.ErrConfiguration)
		return
	}
	t = &Table{
		records: make([]Record, len(records)),
		laws:    make(map[int]Law, len(records)),
	}
	copy(t.records, records)
	for i := range t.records {
		rec := &t.records[i]
		if _, exists := t.laws[rec.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate material id %d", types.ErrConfiguration, rec.ID)
		}
		var law Law
		if law, err = New(rec); err != nil {
			return nil, err
		}
		t.laws[rec.ID] = law
		t.ids = append(t.ids, rec.ID)
	}
	sort.Ints(t.ids)
	return
}

func (t *Table) Len() int { return len(t.records) }

func (t *Table) IDs() []int { return t.ids }

// Law returns the law of material id, nil when the id is unknown
func (t *Table) Law(id int) Law { return t.laws[id] }

// Require checks that ids 0..n-1 are all present
func (t *Table) Require(n int) (err error) {
	for id := 0; id < n; id++ {
		if _, ok := t.laws[id]; !ok {
			return fmt.Errorf("%w: microstructure needs material id %d, table has %v",
				types.ErrConfiguration, id, t.ids)
		}
	}
	return
}

// MaxNumVars is the largest internal variable count of any law in the table
func (t *Table) MaxNumVars() (nv int) {
	for _, law := range t.laws {
		if law.NumVars() > nv {
			nv = law.NumVars()
		}
	}
	return
}

// Linear reports whether every law in the table is elastic
func (t *Table) Linear() bool {
	for _, rec := range t.records {
		if rec.Type != types.LawElastic {
			return false
		}
	}
	return true
}
