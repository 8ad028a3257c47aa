//go:build !linux
// +build !linux

package cmd

import jww "github.com/spf13/jwalterweatherman"

type stepCounter struct{}

func newStepCounter(enabled bool) *stepCounter {
	if enabled {
		jww.WARN.Println("perf counters are only available on linux")
	}
	return &stepCounter{}
}

func (sc *stepCounter) Count(f func() error) (cycles uint64, err error) { return 0, f() }
