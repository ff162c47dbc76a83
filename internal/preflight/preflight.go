// Package preflight verifies the environment before a batch starts.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// ErrNotWritable is returned when the output directory rejects writes.
var ErrNotWritable = errors.New("output directory is not writable")

// Check is one named environment check.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Binary checks that an executable can be resolved, either as a path or
// through PATH.
func Binary(name, binary string) Check {
	return Check{
		Name: name,
		Run: func(context.Context) error {
			if _, err := exec.LookPath(binary); err != nil {
				return fmt.Errorf("%s not found: %w", binary, err)
			}
			return nil
		},
	}
}

// Writable checks that files can be created in dir.
func Writable(dir string) Check {
	return Check{
		Name: "output directory",
		Run: func(context.Context) error {
			f, err := os.CreateTemp(dir, ".musare-dl-probe-*")
			if err != nil {
				return fmt.Errorf("%w: %v", ErrNotWritable, err)
			}
			name := f.Name()
			_ = f.Close()
			return os.Remove(filepath.Clean(name))
		},
	}
}

// Run executes all checks concurrently and returns the failures joined
// together. A nil error means every check passed.
func Run(ctx context.Context, checks ...Check) error {
	errs := make([]error, len(checks))

	g, ctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			if err := check.Run(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", check.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
