package cli

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dleifnesor/PAW/internal/catalog"
	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/Dleifnesor/PAW/internal/store"
)

func TestToolsBrowse(t *testing.T) {
	env := newEnv(t, "")
	env.importFixture(t)

	out := env.mustRun(t, "tools", "list")
	require.Contains(t, out, "NAME")
	require.Contains(t, out, "nmap")
	require.Contains(t, out, "hydra")

	out = env.mustRun(t, "tools", "list", "--category", "Password Attacks")
	require.Contains(t, out, "hydra")
	require.NotContains(t, out, "nmap")

	out = env.mustRun(t, "tools", "show", "NMAP")
	require.Contains(t, out, "Usage:       nmap -sS <target>")
	require.Contains(t, out, "$ nmap 192.168.1.1")

	out = env.mustRun(t, "tools", "search", "scanner")
	require.Contains(t, out, "nikto")
	require.Contains(t, out, "nmap")
	require.NotContains(t, out, "hydra")

	out = env.mustRun(t, "tools", "categories")
	require.Equal(t, "Network Scanning\nPassword Attacks\nWeb Application Analysis\n", out)

	_, err := env.run(t, "", "tools", "show", "nmp")
	var nf *registry.NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Contains(t, err.Error(), "did you mean nmap")
}

func TestToolsAddAndRemove(t *testing.T) {
	env := newEnv(t, "")

	out := env.mustRun(t, "tools", "add",
		"--name", "masscan", "--category", "Network Scanning",
		"--description", "Fast port scanner", "--usage", "masscan -p<ports> <target>",
		"--example", "Web ports=masscan -p80,443 10.0.0.0/8")
	require.Contains(t, out, "added masscan")

	_, err := env.run(t, "", "tools", "add", "--name", "MASSCAN", "--category", "x", "--usage", "masscan")
	var dup *registry.DuplicateNameError
	require.True(t, errors.As(err, &dup))

	env.mustRun(t, "tools", "add", "--name", "masscan", "--category", "Port Scanning", "--usage", "masscan <target>", "--overwrite")
	out = env.mustRun(t, "tools", "categories")
	require.Equal(t, "Port Scanning\n", out)

	_, err = env.run(t, "", "tools", "add", "--name", "bad", "--usage", "bad")
	var invalid *registry.InvalidEntryError
	require.True(t, errors.As(err, &invalid))

	_, err = env.run(t, "", "tools", "add", "--name", "x", "--category", "c", "--usage", "x", "--example", "no command")
	require.Error(t, err)

	env.mustRun(t, "tools", "remove", "masscan")
	out = env.mustRun(t, "tools", "list")
	require.Contains(t, out, "no tools found")

	_, err = env.run(t, "", "tools", "remove", "masscan")
	var nf *registry.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestToolsImportDryRunAndYAML(t *testing.T) {
	env := newEnv(t, "")
	path := filepath.Join(env.dir, "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`- name: whois
  category: Information Gathering
  description: Domain lookup
  common_usage: whois <domain>
- name: broken
`), 0o644))

	out := env.mustRun(t, "tools", "import", "--dry-run", path)
	require.Contains(t, out, "would import 1, skipped 1")
	require.NoFileExists(t, env.registryPath())

	out = env.mustRun(t, "tools", "import", path)
	require.Contains(t, out, "imported 1, skipped 1")

	out = env.mustRun(t, "tools", "show", "whois")
	require.Contains(t, out, "whois <domain>")

	out = env.mustRun(t, "tools", "export", "--format", "yaml")
	require.Contains(t, out, "usage: whois <domain>")
	require.NotContains(t, out, "common_usage")
}

func TestToolsImportFromStdin(t *testing.T) {
	env := newEnv(t, "")
	out, err := env.run(t, fixtureTools, "tools", "import", "-")
	require.NoError(t, err, out)
	require.Contains(t, out, "imported 3")

	out, err = env.run(t, fixtureTools, "tools", "import", "-")
	require.NoError(t, err)
	require.Contains(t, out, "imported 0, skipped 3")

	out, err = env.run(t, fixtureTools, "tools", "import", "--overwrite", "-")
	require.NoError(t, err)
	require.Contains(t, out, "imported 3, skipped 0")
}

func TestToolsExportRoundTrip(t *testing.T) {
	env := newEnv(t, "")
	env.importFixture(t)

	dest := filepath.Join(env.dir, "out.yaml")
	out := env.mustRun(t, "tools", "export", dest)
	require.Contains(t, out, "exported 3 tools")

	entries, err := store.ReadFile(dest)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "nmap", entries[0].Name)
	require.Equal(t, "hydra", entries[2].Name)
}

func TestToolsSeedAndReset(t *testing.T) {
	env := newEnv(t, "")
	builtin, err := catalog.Entries()
	require.NoError(t, err)

	env.importFixture(t)
	out := env.mustRun(t, "tools", "seed")
	require.Contains(t, out, "skipped 3")

	out, err = env.run(t, "n\n", "tools", "reset")
	require.NoError(t, err)
	require.Contains(t, out, "registry left unchanged")

	out = env.mustRun(t, "tools", "reset", "--yes")
	require.Contains(t, out, "registry reset with 0 tools")

	out = env.mustRun(t, "tools", "reset", "--yes", "--seed")
	require.Contains(t, out, "registry reset with")

	entries, err := store.ReadFile(env.registryPath())
	require.NoError(t, err)
	require.Len(t, entries, len(builtin))
}

func TestCorruptRegistryRecoversWithReset(t *testing.T) {
	env := newEnv(t, "")
	require.NoError(t, os.WriteFile(env.registryPath(), []byte("{not json"), 0o644))

	out := env.mustRun(t, "tools", "list")
	require.Contains(t, out, "warning:")
	require.Contains(t, out, "no tools found")

	_, err := env.run(t, "", "tools", "add", "--name", "x", "--category", "c", "--usage", "x")
	var corrupt *store.CorruptStoreError
	require.True(t, errors.As(err, &corrupt))

	env.mustRun(t, "tools", "reset", "-y")
	env.mustRun(t, "tools", "add", "--name", "x", "--category", "c", "--usage", "x")
}

func TestSeedOnEmptyConfig(t *testing.T) {
	env := newEnv(t, "")
	require.NoError(t, os.WriteFile(env.configPath, []byte(`registry:
  path: `+env.registryPath()+`
  seed_on_empty: true
output:
  renderer: plain
history:
  enabled: false
`), 0o644))

	out := env.mustRun(t, "tools", "show", "nmap")
	require.Contains(t, out, "{target}")
	require.FileExists(t, env.registryPath())
}

func TestToolsCheck(t *testing.T) {
	env := newEnv(t, "")
	env.importFixture(t)

	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(file string) (string, error) {
		if file == "nmap" {
			return "/usr/bin/nmap", nil
		}
		return "", exec.ErrNotFound
	}

	out := env.mustRun(t, "tools", "check")
	require.Contains(t, out, "nmap: /usr/bin/nmap")
	require.Contains(t, out, "warning: hydra: hydra not found in PATH")
	require.Contains(t, out, "1 of 3 tools installed")
}

func TestExecutable(t *testing.T) {
	require.Equal(t, "msfconsole", executable(registry.ToolEntry{Name: "metasploit", Usage: "msfconsole -q"}))
	require.Equal(t, "wifite", executable(registry.ToolEntry{Name: "wifite", Usage: "<iface>"}))
	require.Equal(t, "tool", executable(registry.ToolEntry{Name: "tool"}))
}
