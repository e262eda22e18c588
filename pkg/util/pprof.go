package util

import (
	"errors"
	"os"
	"runtime/pprof"
)

// StartCPUProfile writes a CPU profile to filename until stop is called.
func StartCPUProfile(filename string) (stop func() error, err error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return nil, errors.Join(err, f.Close())
	}
	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}
