package ell

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotConverged = errors.New("linear solver did not converge")
	ErrBreakdown    = errors.New("linear solver breakdown")
)

// SolveStats reports how a linear solve went
type SolveStats struct {
	Its    int     // Iterations, 1 for direct solvers
	ResErr float64 // Final residual norm |b - A x|
}

/*
Solver is the linear solve capability injected into the Newton-Raphson loop.
A is symmetric positive definite with Dirichlet rows already enforced. Solve
overwrites x and either completes or returns an error before returning.
Solvers that keep scratch storage implement Cloner, and every goroutine then
works on its own clone.
*/
type Solver interface {
	Solve(A *Matrix, b, x []float64) (SolveStats, error)
}

type Cloner interface {
	Clone() Solver
}

// PerWorker returns a solver one goroutine may use exclusively
func PerWorker(s Solver) Solver {
	if c, ok := s.(Cloner); ok {
		return c.Clone()
	}
	return s
}

/*
CG is a Jacobi preconditioned conjugate gradient solver. Vector kernels go
through gonum blas64, so the netlib build accelerates them. A CG keeps its
work vectors between calls and must not be shared between goroutines.
*/
type CG struct {
	MaxIts int
	RelTol float64 // Relative to |b|
	AbsTol float64
	r, z   []float64
	p, ap  []float64
	minv   []float64 // Inverse of the diagonal of A
}

func NewCG() *CG {
	return &CG{MaxIts: 4000, RelTol: 1.e-8, AbsTol: 1.e-14}
}

func (cg *CG) Clone() Solver {
	return &CG{MaxIts: cg.MaxIts, RelTol: cg.RelTol, AbsTol: cg.AbsTol}
}

func (cg *CG) setScratch(n int) {
	if len(cg.r) == n {
		return
	}
	cg.r, cg.z = make([]float64, n), make([]float64, n)
	cg.p, cg.ap = make([]float64, n), make([]float64, n)
	cg.minv = make([]float64, n)
}

func vec(x []float64) blas64.Vector { return blas64.Vector{N: len(x), Data: x, Inc: 1} }

func (cg *CG) Solve(A *Matrix, b, x []float64) (stats SolveStats, err error) {
	if len(b) != A.Nrow || len(x) != A.Nrow {
		err = fmt.Errorf("vector lengths b=%d x=%d do not match matrix rows %d", len(b), len(x), A.Nrow)
		return
	}
	cg.setScratch(A.Nrow)
	A.DiagTo(cg.minv)
	for i, d := range cg.minv {
		if d <= 0 {
			err = fmt.Errorf("%w: non positive diagonal %g at row %d", ErrBreakdown, d, i)
			return
		}
		cg.minv[i] = 1 / d
	}
	var (
		r, z  = vec(cg.r), vec(cg.z)
		p, ap = vec(cg.p), vec(cg.ap)
		xv    = vec(x)
		tol   = math.Max(cg.AbsTol, cg.RelTol*blas64.Nrm2(vec(b)))
	)
	clear(x)
	blas64.Copy(vec(b), r)
	floats.MulTo(cg.z, cg.minv, cg.r)
	blas64.Copy(z, p)
	rz := blas64.Dot(r, z)
	for stats.ResErr = blas64.Nrm2(r); stats.ResErr > tol; stats.ResErr = blas64.Nrm2(r) {
		if stats.Its == cg.MaxIts {
			err = fmt.Errorf("%w: %d iterations, residual %g > %g", ErrNotConverged, stats.Its, stats.ResErr, tol)
			return
		}
		A.MulVec(cg.p, cg.ap)
		pAp := blas64.Dot(p, ap)
		if pAp <= 0 {
			err = fmt.Errorf("%w: p'Ap = %g at iteration %d", ErrBreakdown, pAp, stats.Its)
			return
		}
		alpha := rz / pAp
		blas64.Axpy(alpha, p, xv)
		blas64.Axpy(-alpha, ap, r)
		floats.MulTo(cg.z, cg.minv, cg.r)
		rzNew := blas64.Dot(r, z)
		blas64.Scal(rzNew/rz, p)
		blas64.Axpy(1, z, p)
		rz = rzNew
		stats.Its++
	}
	return
}

/*
Cholesky factors a dense copy of A. It is exact and meant for small RVEs and
for checking iterative solutions.
*/
type Cholesky struct{}

func (Cholesky) Solve(A *Matrix, b, x []float64) (stats SolveStats, err error) {
	var (
		n     = A.Nrow
		dense = A.ToDense()
		sym   = mat.NewSymDense(n, nil)
		chol  mat.Cholesky
	)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, dense.At(i, j))
		}
	}
	if ok := chol.Factorize(sym); !ok {
		err = fmt.Errorf("%w: matrix is not positive definite", ErrBreakdown)
		return
	}
	xv := mat.NewVecDense(n, x)
	if err = chol.SolveVecTo(xv, mat.NewVecDense(n, b)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			err = fmt.Errorf("%w: %v", ErrBreakdown, err)
			return
		}
		err = nil // ill conditioning is reported through the residual
	}
	r := make([]float64, n)
	A.MulVec(x, r)
	floats.Sub(r, b)
	stats = SolveStats{Its: 1, ResErr: floats.Norm(r, 2)}
	return
}
