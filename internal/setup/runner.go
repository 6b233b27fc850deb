package setup

import (
	"context"
	"os"
	"os/exec"
)

// CommandRunner abstracts process execution so the bootstrap steps are
// testable without touching the machine.
type CommandRunner interface {
	LookPath(bin string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func NewExecRunner() CommandRunner { return execRunner{} }

func (execRunner) LookPath(bin string) (string, error) {
	return exec.LookPath(bin)
}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
