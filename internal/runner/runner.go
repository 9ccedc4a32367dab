// Package runner executes a confirmed command after checking it against the
// configured allow and deny lists.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Dleifnesor/PAW/internal/expander"
	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"
)

var (
	// ErrDisabled is returned when execution is turned off in configuration.
	ErrDisabled = errors.New("execution disabled by configuration")
	// ErrUnfilled is returned for commands that still contain placeholders.
	ErrUnfilled = errors.New("command still has unfilled placeholders")
)

// Runner executes commands with allow/deny checks.
type Runner struct {
	WorkingDir string
	Allowed    []string
	Denied     []string
	Timeout    time.Duration
	Enabled    bool
	Logger     *zap.Logger
}

// Result carries captured output and status code.
type Result struct {
	Argv     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// RunExpansion executes an expanded command. Optional [...] hints are removed
// first; a result with unfilled placeholders is refused.
func (r *Runner) RunExpansion(ctx context.Context, res expander.Result, stdout, stderr io.Writer) (Result, error) {
	if !res.AllFilled {
		return Result{}, fmt.Errorf("%w: %s", ErrUnfilled, strings.Join(res.Missing, " "))
	}
	return r.Run(ctx, expander.StripOptional(res.Command), stdout, stderr)
}

// Run splits line into argv with shell quoting rules and executes it without a
// shell. Output is captured and, when the writers are non-nil, streamed as well.
func (r *Runner) Run(ctx context.Context, line string, stdout, stderr io.Writer) (Result, error) {
	if !r.Enabled {
		return Result{}, ErrDisabled
	}
	argv, err := Split(line)
	if err != nil {
		return Result{}, err
	}
	if err := r.validateCommand(argv[0]); err != nil {
		return Result{Argv: argv}, err
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = 10 * time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if r.WorkingDir != "" {
		cmd.Dir = r.WorkingDir
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = tee(&outBuf, stdout)
	cmd.Stderr = tee(&errBuf, stderr)

	start := time.Now()
	err = cmd.Run()

	res := Result{
		Argv:     argv,
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		Duration: time.Since(start),
		ExitCode: func() int {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return exitErr.ExitCode()
			}
			if err != nil {
				return -1
			}
			return 0
		}(),
	}

	if r.Logger != nil {
		r.Logger.Info("command finished",
			zap.Strings("argv", argv),
			zap.Int("exit_code", res.ExitCode),
			zap.Duration("took", res.Duration),
		)
	}

	if ctx.Err() == context.DeadlineExceeded {
		return res, fmt.Errorf("command timed out after %s", timeout)
	}
	return res, err
}

// Split parses line into argv. Pipes, redirections and command separators are
// rejected because commands run without a shell.
func Split(line string) ([]string, error) {
	p := shellwords.NewParser()
	argv, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}
	if p.Position >= 0 {
		return nil, fmt.Errorf("shell operators are not supported: %q", line)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("command is required")
	}
	return argv, nil
}

func (r *Runner) validateCommand(cmd string) error {
	base := strings.ToLower(filepath.Base(cmd))
	for _, deny := range r.Denied {
		if base == strings.ToLower(deny) {
			return fmt.Errorf("command %q is denied", cmd)
		}
	}
	if len(r.Allowed) > 0 {
		for _, allow := range r.Allowed {
			if base == strings.ToLower(allow) {
				return nil
			}
		}
		return fmt.Errorf("command %q is not in allowlist", cmd)
	}
	return nil
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
