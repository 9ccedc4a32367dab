package runner

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dleifnesor/PAW/internal/expander"
	"github.com/stretchr/testify/require"
)

func TestRunAllowsWhitelisted(t *testing.T) {
	r := &Runner{
		Allowed: []string{"echo"},
		Denied:  []string{"rm"},
		Timeout: 2 * time.Second,
		Enabled: true,
	}

	var out bytes.Buffer
	res, err := r.Run(context.Background(), `echo "hello world"`, &out, nil)
	require.NoError(t, err)
	require.Equal(t, 0, res.ExitCode)
	require.Equal(t, []string{"echo", "hello world"}, res.Argv)
	require.Equal(t, "hello world\n", res.Stdout)
	require.Equal(t, res.Stdout, out.String())
}

func TestRunDenied(t *testing.T) {
	r := &Runner{Denied: []string{"rm"}, Enabled: true}
	_, err := r.Run(context.Background(), "/bin/rm -rf /tmp/nothing", nil, nil)
	require.ErrorContains(t, err, "denied")

	r = &Runner{Allowed: []string{"nmap"}, Enabled: true}
	_, err = r.Run(context.Background(), "echo hi", nil, nil)
	require.ErrorContains(t, err, "allowlist")
}

func TestRunDisabled(t *testing.T) {
	r := &Runner{}
	_, err := r.Run(context.Background(), "echo hi", nil, nil)
	require.ErrorIs(t, err, ErrDisabled)
}

func TestRunExpansion(t *testing.T) {
	r := &Runner{Enabled: true, Allowed: []string{"echo"}}

	_, err := r.RunExpansion(context.Background(), expander.Result{Command: "echo <target>", Missing: []string{"<target>"}}, nil, nil)
	require.True(t, errors.Is(err, ErrUnfilled))

	res, err := r.RunExpansion(context.Background(), expander.Result{Command: "echo [options] 10.0.0.1", AllFilled: true}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1\n", res.Stdout)
}

func TestRunNonZeroExit(t *testing.T) {
	r := &Runner{Enabled: true}
	res, err := r.Run(context.Background(), "false", nil, nil)
	require.Error(t, err)
	require.Equal(t, 1, res.ExitCode)
}

func TestRunTimeout(t *testing.T) {
	r := &Runner{Enabled: true, Timeout: 50 * time.Millisecond}
	_, err := r.Run(context.Background(), "sleep 5", nil, nil)
	require.ErrorContains(t, err, "timed out")
}

func TestSplit(t *testing.T) {
	argv, err := Split(`hydra -l admin -P '/usr/share/word lists/rockyou.txt' ssh://10.0.0.5`)
	require.NoError(t, err)
	require.Equal(t, []string{"hydra", "-l", "admin", "-P", "/usr/share/word lists/rockyou.txt", "ssh://10.0.0.5"}, argv)

	_, err = Split("nmap 10.0.0.1 | tee out.txt")
	require.ErrorContains(t, err, "shell operators")

	_, err = Split(`echo "unterminated`)
	require.Error(t, err)

	_, err = Split("   ")
	require.Error(t, err)
}
