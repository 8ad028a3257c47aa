//go:build cgo && netlib
// +build cgo,netlib

package utils

/*
#cgo CFLAGS: -march=native -mavx -mavx2
#cgo LDFLAGS: -lopenblas -llapacke -lgfortran -lm -lpthread
#include <cblas.h>
#include <lapacke.h>
*/
import "C"

import (
	jww "github.com/spf13/jwalterweatherman"
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// Dense factorizations in gonum go through blas64, route them to the system BLAS
func init() {
	blas64.Use(netblas.Implementation{})
	jww.INFO.Println("Using netlib to accelerate BLAS")
}
