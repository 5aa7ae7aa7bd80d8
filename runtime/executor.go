package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// ExecConfig configures one tap invocation.
type ExecConfig struct {
	// TapPath is the tap executable (resolved via PATH when relative).
	TapPath string
	// ConfigPath is the tap's JSON config file, passed as --config.
	ConfigPath string
	// CatalogPath is the tap's JSON catalog file, passed as --catalog.
	CatalogPath string
	// StatePath is the prior checkpoint file, passed as --state when set.
	StatePath string
}

// TapResult represents the exit of a tap process.
type TapResult struct {
	// ExitCode is the process exit code. -1 when the process was killed.
	ExitCode int
}

// TapRunner abstracts tap process lifecycle for testing.
type TapRunner interface {
	Start(ctx context.Context) error
	Output() io.Reader
	Wait() (*TapResult, error)
	Kill() error
}

// RunnerFactory creates a TapRunner. Used for test injection.
type RunnerFactory func(config *ExecConfig) TapRunner

// TapProcess manages a real tap subprocess.
type TapProcess struct {
	config *ExecConfig
	cmd    *exec.Cmd
	output io.ReadCloser
}

// NewTapProcess creates a tap process manager.
func NewTapProcess(config *ExecConfig) *TapProcess {
	return &TapProcess{config: config}
}

// Args returns the CLI arguments for the configured invocation.
// --config and --catalog are mandatory; --state only when a checkpoint
// file is being fed back.
func (p *TapProcess) Args() []string {
	args := []string{
		"--config", p.config.ConfigPath,
		"--catalog", p.config.CatalogPath,
	}
	if p.config.StatePath != "" {
		args = append(args, "--state", p.config.StatePath)
	}
	return args
}

// Start launches the tap with stdout and stderr merged into one stream.
// Interleaving across the two streams is best-effort; only line-level
// message integrity matters to the parser.
func (p *TapProcess) Start(ctx context.Context) error {
	p.cmd = exec.CommandContext(ctx, p.config.TapPath, p.Args()...)

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	p.output = stdout

	// Share the stdout pipe's file descriptor so stderr lands in the same
	// captured stream, in the order produced.
	p.cmd.Stderr = p.cmd.Stdout

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start tap: %w", err)
	}
	return nil
}

// Output returns the merged stdout+stderr stream.
func (p *TapProcess) Output() io.Reader {
	return p.output
}

// Wait waits for the tap to exit and returns its exit code.
// Must be called after Start, and only after the output stream is drained:
// exec.Cmd.Wait closes the stdout pipe.
func (p *TapProcess) Wait() (*TapResult, error) {
	if p.cmd == nil {
		return nil, errors.New("tap not started")
	}

	err := p.cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &TapResult{ExitCode: exitErr.ExitCode()}, nil
		}
		return nil, fmt.Errorf("tap wait failed: %w", err)
	}
	return &TapResult{ExitCode: 0}, nil
}

// Kill terminates the tap process.
func (p *TapProcess) Kill() error {
	if p.cmd != nil && p.cmd.Process != nil {
		return p.cmd.Process.Kill()
	}
	return nil
}
