// Package sanity runs ansible-test sanity checks in collection checkouts.
package sanity

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/azp-tools/matrix/internal/output"
	"github.com/azp-tools/matrix/internal/workspace"
)

// DefaultExecutable is the test runner invoked in each checkout.
const DefaultExecutable = "ansible-test"

// DefaultBranches are the default branches of collection repositories.
var DefaultBranches = []string{"main", "master"}

// Options configures a sanity run.
type Options struct {
	// Executable defaults to DefaultExecutable.
	Executable string

	// Tests restricts the run to the named sanity tests.
	Tests []string

	// Check stops at the first failing checkout.
	Check bool

	Stdout io.Writer
	Stderr io.Writer
}

// Args returns the runner arguments.
func (o Options) Args() []string {
	args := []string{"sanity", "--docker", "-v"}
	for _, t := range o.Tests {
		args = append(args, "--test", t)
	}
	return args
}

// Failure is a checkout whose sanity run failed.
type Failure struct {
	Project workspace.Project
	Err     error
}

// Run runs the sanity tests in each project directory in order. Output is
// framed by "---[ dir ]---" lines.
//
// With Check set the first failure aborts the run. Otherwise failures are
// logged and collected.
func Run(ctx context.Context, projects []workspace.Project, opts Options) ([]Failure, error) {
	executable := opts.Executable
	if executable == "" {
		executable = DefaultExecutable
	}
	if _, err := exec.LookPath(executable); err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", executable, err)
	}

	var failures []Failure
	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			return failures, err
		}

		fmt.Fprintf(opts.Stdout, "---[ %s ]---\n", p.Dir)

		// nolint:gosec
		cmd := exec.CommandContext(ctx, executable, opts.Args()...)
		cmd.Dir = p.Dir
		cmd.Stdout = opts.Stdout
		cmd.Stderr = opts.Stderr
		output.Debug(cmd.String(), "dir", p.Dir)

		err := cmd.Run()

		fmt.Fprintf(opts.Stdout, "---[ %s ]---\n", p.Dir)

		if err != nil {
			if opts.Check {
				return append(failures, Failure{Project: p, Err: err}), fmt.Errorf("%s: %w", p.Ref, err)
			}
			output.ProjectLogger(p.Ref.String()).Warn("sanity tests failed", "err", err)
			failures = append(failures, Failure{Project: p, Err: err})
		}
	}

	return failures, nil
}
