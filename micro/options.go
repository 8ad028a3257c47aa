package micro

import (
	"fmt"

	"github.com/GG1991/MicroPP/ell"
)

const (
	DefaultNRMaxIts = 20
	DefaultNRAbsTol = 1.e-10
	DefaultNRRelTol = 1.e-5
)

type Options struct {
	NRMaxIts        int     // Newton iteration cap, reaching it is a convergence failure
	NRAbsTol        float64 // Converged when |r| < NRAbsTol
	NRRelTol        float64 // or when |r| < |r0| * NRRelTol
	Solver          ell.Solver
	Workers         int // Goroutines over RVEs, 0 uses every CPU
	AssemblyWorkers int // Goroutines over elements inside one assembly
}

type Option func(o *Options)

func DefaultOptions() Options {
	return Options{
		NRMaxIts:        DefaultNRMaxIts,
		NRAbsTol:        DefaultNRAbsTol,
		NRRelTol:        DefaultNRRelTol,
		Solver:          ell.NewCG(),
		AssemblyWorkers: 1,
	}
}

func WithNewton(maxIts int, absTol, relTol float64) Option {
	return func(o *Options) {
		o.NRMaxIts, o.NRAbsTol, o.NRRelTol = maxIts, absTol, relTol
	}
}

func WithSolver(s ell.Solver) Option { return func(o *Options) { o.Solver = s } }

func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

func WithAssemblyWorkers(n int) Option { return func(o *Options) { o.AssemblyWorkers = n } }

func (o *Options) validate() (err error) {
	switch {
	case o.NRMaxIts < 1:
		err = fmt.Errorf("%w: newton iteration cap must be >= 1, have %d", ErrConfiguration, o.NRMaxIts)
	case o.NRAbsTol < 0 || o.NRRelTol < 0:
		err = fmt.Errorf("%w: negative newton tolerance", ErrConfiguration)
	case o.Solver == nil:
		err = fmt.Errorf("%w: no linear solver", ErrConfiguration)
	case o.Workers < 0 || o.AssemblyWorkers < 0:
		err = fmt.Errorf("%w: negative worker count", ErrConfiguration)
	}
	if o.AssemblyWorkers == 0 {
		o.AssemblyWorkers = 1
	}
	return
}
