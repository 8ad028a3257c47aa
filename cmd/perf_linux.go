//go:build linux
// +build linux

package cmd

import (
	perf "github.com/hodgesds/perf-utils"
	jww "github.com/spf13/jwalterweatherman"
)

type stepCounter struct {
	enabled bool
}

func newStepCounter(enabled bool) *stepCounter { return &stepCounter{enabled: enabled} }

// Count runs f and returns the CPU cycles it used, zero when counting is off or unavailable
func (sc *stepCounter) Count(f func() error) (cycles uint64, err error) {
	if !sc.enabled {
		return 0, f()
	}
	var ran bool
	pv, perr := perf.CPUCycles(func() error {
		ran = true
		err = f()
		return nil
	})
	if perr != nil {
		jww.WARN.Printf("perf counters unavailable, disabling: %s\n", perr)
		sc.enabled = false
		if !ran {
			err = f()
		}
		return
	}
	cycles = pv.Value
	return
}
