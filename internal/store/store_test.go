package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func nmap() registry.ToolEntry {
	return registry.ToolEntry{
		Name:        "nmap",
		Category:    "Network Scanning",
		Description: "Network exploration tool and port scanner",
		Usage:       "nmap [options] <target>",
		Examples:    []registry.Example{{Description: "Ping sweep", Command: "nmap -sn 10.0.0.0/24"}},
	}
}

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "data", "tools.json"), Options{LockTimeout: 2 * time.Second})
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := newStore(t)
	require.False(t, s.Exists())
	reg, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, reg.Len())
}

func TestUpdatePersistsAndReloads(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(reg *registry.Registry) error {
		return reg.Add(nmap(), false)
	}))
	require.True(t, s.Exists())

	reg, err := s.Load(ctx)
	require.NoError(t, err)
	got, ok := reg.ByName("nmap")
	require.True(t, ok)
	if diff := cmp.Diff(nmap(), got); diff != "" {
		t.Fatalf("reloaded entry differs (-want +got):\n%s", diff)
	}

	var raw []map[string]any
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	require.Equal(t, "nmap [options] <target>", raw[0]["usage"])
}

func TestUpdateCallbackErrorWritesNothing(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, func(reg *registry.Registry) error { return reg.Add(nmap(), false) }))
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	calls := 0
	err = s.Update(ctx, func(reg *registry.Registry) error {
		calls++
		return reg.Add(nmap(), false)
	})
	var dup *registry.DuplicateNameError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, 1, calls)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestCorruptStore(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.Load(ctx)
	var corrupt *CorruptStoreError
	require.True(t, errors.As(err, &corrupt))

	reg, err := s.LoadOrEmpty(ctx)
	require.Error(t, err)
	require.NotNil(t, reg)
	require.Equal(t, 0, reg.Len())

	err = s.Update(ctx, func(reg *registry.Registry) error { return reg.Add(nmap(), false) })
	require.True(t, errors.As(err, &corrupt))

	fresh := registry.New()
	require.NoError(t, fresh.Add(nmap(), false))
	require.NoError(t, s.Reset(ctx, fresh))
	reg, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"nmap"}, reg.Names())
}

func TestEmptyFileLoadsAsEmptyRegistry(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("  \n"), 0o644))

	reg, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, reg.Len())
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	stores := []*FileStore{
		New(path, Options{LockTimeout: 10 * time.Second}),
		New(path, Options{LockTimeout: 10 * time.Second}),
	}

	const perStore = 10
	var wg sync.WaitGroup
	errs := make(chan error, len(stores)*perStore)
	for si, s := range stores {
		for i := 0; i < perStore; i++ {
			wg.Add(1)
			go func(s *FileStore, name string) {
				defer wg.Done()
				errs <- s.Update(context.Background(), func(reg *registry.Registry) error {
					return reg.Add(registry.ToolEntry{Name: name, Category: "Test", Usage: name + " <target>"}, false)
				})
			}(s, fmt.Sprintf("tool-%d-%d", si, i))
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entries, err := Decode(bytes.NewReader(data), FormatJSON)
	require.NoError(t, err)
	require.Len(t, entries, len(stores)*perStore)
}

const (
	helperPathEnv   = "PAW_STORE_HELPER_PATH"
	helperPrefixEnv = "PAW_STORE_HELPER_PREFIX"
	helperUpdates   = 10
)

// TestUpdateHelperProcess runs only inside a child started by
// TestConcurrentUpdatesAcrossProcesses.
func TestUpdateHelperProcess(t *testing.T) {
	path := os.Getenv(helperPathEnv)
	if path == "" {
		t.Skip("helper process only")
	}
	prefix := os.Getenv(helperPrefixEnv)
	s := New(path, Options{LockTimeout: 30 * time.Second})
	for i := 0; i < helperUpdates; i++ {
		name := fmt.Sprintf("%s-%d", prefix, i)
		require.NoError(t, s.Update(context.Background(), func(reg *registry.Registry) error {
			return reg.Add(registry.ToolEntry{Name: name, Category: "Test", Usage: name + " <target>"}, false)
		}))
	}
}

func TestConcurrentUpdatesAcrossProcesses(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns child processes")
	}
	path := filepath.Join(t.TempDir(), "tools.json")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	const children = 3
	cmds := make([]*exec.Cmd, 0, children)
	outputs := make([]*bytes.Buffer, 0, children)
	for i := 0; i < children; i++ {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=^TestUpdateHelperProcess$", "-test.count=1")
		cmd.Env = append(os.Environ(),
			helperPathEnv+"="+path,
			fmt.Sprintf("%s=proc%d", helperPrefixEnv, i),
		)
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out
		require.NoError(t, cmd.Start())
		cmds = append(cmds, cmd)
		outputs = append(outputs, &out)
	}
	for i, cmd := range cmds {
		require.NoError(t, cmd.Wait(), outputs[i].String())
	}

	reg, err := New(path, Options{}).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, children*helperUpdates, reg.Len())
	for i := 0; i < children; i++ {
		for j := 0; j < helperUpdates; j++ {
			_, ok := reg.ByName(fmt.Sprintf("proc%d-%d", i, j))
			require.True(t, ok, "proc%d-%d lost", i, j)
		}
	}
}

func TestLockTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	holder := flock.New(path + ".lock")
	require.NoError(t, holder.Lock())
	defer func() { require.NoError(t, holder.Unlock()) }()

	s := New(path, Options{LockTimeout: 100 * time.Millisecond, Retry: DefaultRetryPolicy(1)})
	err := s.Update(context.Background(), func(reg *registry.Registry) error {
		t.Fatal("callback must not run without the lock")
		return nil
	})
	var timeout *LockTimeoutError
	require.True(t, errors.As(err, &timeout))
	require.Equal(t, 100*time.Millisecond, timeout.Timeout)
	require.False(t, s.Exists())
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := New(filepath.Join(blocker, "tools.json"), Options{})
	err := s.Save(registry.New())
	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	require.True(t, IsRetryable(err))
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	policy := DefaultRetryPolicy(3)
	policy.InitialDelay = time.Millisecond

	calls := 0
	err := retry(context.Background(), policy, nil, func() error {
		calls++
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")
	require.Equal(t, 1, calls)

	calls = 0
	err = retry(context.Background(), policy, nil, func() error {
		calls++
		if calls < 3 {
			return &PersistenceError{Path: "p", Err: errors.New("disk full")}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := DefaultRetryPolicy(5)
	policy.InitialDelay = time.Hour

	err := retry(ctx, policy, func(int, error) { cancel() }, func() error {
		return &LockTimeoutError{Path: "p"}
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCodecFormats(t *testing.T) {
	entries := []registry.ToolEntry{nmap(), {Name: "whois", Category: "Information Gathering", Usage: "whois <domain>"}}

	for _, format := range []Format{FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, entries, format))
		got, err := Decode(&buf, format)
		require.NoError(t, err)
		if diff := cmp.Diff(entries, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", format, diff)
		}
	}

	require.Equal(t, FormatYAML, FormatFromPath("tools.YML"))
	require.Equal(t, FormatJSON, FormatFromPath("tools.txt"))
	_, err := ParseFormat("toml")
	require.Error(t, err)
}

func TestReadFileUsesExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: dirb\n  category: Web Application Analysis\n  common_usage: dirb <url> [wordlist]\n"), 0o644))

	entries, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "dirb <url> [wordlist]", entries[0].Usage)
}
