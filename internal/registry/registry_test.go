package registry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleEntries() []ToolEntry {
	return []ToolEntry{
		{
			Name:        "nmap",
			Category:    "Network Scanning",
			Description: "Network exploration tool and port scanner",
			Usage:       "nmap [options] <target>",
			Examples: []Example{
				{Description: "Basic scan", Command: "nmap 192.168.1.1"},
			},
		},
		{
			Name:        "nikto",
			Category:    "Web Application Analysis",
			Description: "Web server scanner",
			Usage:       "nikto -h <target>",
		},
		{
			Name:        "hydra",
			Category:    "Password Attacks",
			Description: "Parallelized login cracker",
			Usage:       "hydra -l <user> -P <wordlist> <target> <service>",
		},
	}
}

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := FromEntries(sampleEntries())
	require.NoError(t, err)
	return reg
}

func TestAddThenByNameReturnsEntryUnchanged(t *testing.T) {
	reg := New()
	entry := sampleEntries()[0]
	require.NoError(t, reg.Add(entry, false))

	got, ok := reg.ByName(entry.Name)
	require.True(t, ok)
	if diff := cmp.Diff(entry, got); diff != "" {
		t.Fatalf("entry changed (-want +got):\n%s", diff)
	}

	got, ok = reg.ByName("NMAP")
	require.True(t, ok)
	require.Equal(t, "nmap", got.Name)
}

func TestAddKeepsEmptyExamplesDistinctFromNil(t *testing.T) {
	for name, examples := range map[string][]Example{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			reg := New()
			entry := ToolEntry{Name: "amap", Category: "Information Gathering", Usage: "amap <target> <port>", Examples: examples}
			require.NoError(t, reg.Add(entry, false))

			got, ok := reg.ByName("amap")
			require.True(t, ok)
			require.Equal(t, entry, got)
			require.Equal(t, examples == nil, got.Examples == nil)
		})
	}
}

func TestAddDuplicateFailsAndLeavesRegistryUnchanged(t *testing.T) {
	reg := mustRegistry(t)
	before := reg.ExportAll()

	dup := ToolEntry{Name: "NMap", Category: "Other", Description: "x", Usage: "nmap"}
	for i := 0; i < 2; i++ {
		err := reg.Add(dup, false)
		var dupErr *DuplicateNameError
		require.True(t, errors.As(err, &dupErr))
		require.Equal(t, "nmap", dupErr.Name)
		require.Equal(t, before, reg.ExportAll())
	}
	require.Equal(t, []string{"Network Scanning", "Password Attacks", "Web Application Analysis"}, reg.AllCategories())
}

func TestAddOverwriteKeepsPosition(t *testing.T) {
	reg := mustRegistry(t)
	replacement := ToolEntry{Name: "nikto", Category: "Vulnerability Analysis", Description: "updated", Usage: "nikto -host <target>"}
	require.NoError(t, reg.Add(replacement, true))

	require.Equal(t, []string{"nmap", "nikto", "hydra"}, reg.Names())
	got, _ := reg.ByName("nikto")
	require.Equal(t, "updated", got.Description)
	require.Empty(t, reg.ByCategory("Web Application Analysis"))
	require.Len(t, reg.ByCategory("Vulnerability Analysis"), 1)
}

func TestAddRejectsInvalidEntry(t *testing.T) {
	reg := New()
	err := reg.Add(ToolEntry{Name: " ", Usage: "x"}, false)
	var invalid *InvalidEntryError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, []string{"name", "category"}, invalid.Fields)
	require.Equal(t, 0, reg.Len())
}

func TestRemove(t *testing.T) {
	reg := mustRegistry(t)
	require.NoError(t, reg.Remove("HYDRA"))
	require.Equal(t, []string{"nmap", "nikto"}, reg.Names())
	require.NotContains(t, reg.AllCategories(), "Password Attacks")

	err := reg.Remove("nmapp")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "nmapp", nf.Name)
}

func TestNotFoundSuggestsCloseNames(t *testing.T) {
	reg := mustRegistry(t)
	_, err := reg.Get("nmp")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Contains(t, nf.Suggestions, "nmap")
	require.Contains(t, err.Error(), "did you mean")
}

func TestImportBatchSkipsDuplicatesAndInvalid(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Add(sampleEntries()[0], false))

	report := reg.ImportBatch([]ToolEntry{
		sampleEntries()[0],
		sampleEntries()[1],
		{Name: "broken"},
		sampleEntries()[2],
	}, ImportOptions{})

	require.Equal(t, []string{"nikto", "hydra"}, report.Added)
	require.Equal(t, []string{"nmap", "broken"}, report.Skipped)
	require.Len(t, report.Reasons, 2)
	require.Contains(t, report.Reasons[0], "already registered")
	require.Equal(t, []string{"nmap", "nikto", "hydra"}, reg.Names())
}

func TestImportBatchDryRunLeavesRegistry(t *testing.T) {
	reg := New()
	report := reg.ImportBatch(sampleEntries(), ImportOptions{DryRun: true})
	require.Len(t, report.Added, 3)
	require.Equal(t, 0, reg.Len())
}

func TestExportImportRoundTrip(t *testing.T) {
	reg := mustRegistry(t)
	fresh := New()
	report := fresh.ImportBatch(reg.ExportAll(), ImportOptions{})
	require.Empty(t, report.Skipped)
	if diff := cmp.Diff(reg.ExportAll(), fresh.ExportAll()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, reg.AllCategories(), fresh.AllCategories())
}

func TestExportDoesNotAliasRegistry(t *testing.T) {
	reg := mustRegistry(t)
	out := reg.ExportAll()
	out[0].Examples[0].Command = "mutated"
	got, _ := reg.ByName("nmap")
	require.Equal(t, "nmap 192.168.1.1", got.Examples[0].Command)
}

func TestByCategory(t *testing.T) {
	reg := mustRegistry(t)
	require.NoError(t, reg.Add(ToolEntry{Name: "masscan", Category: "Network Scanning", Usage: "masscan <target>"}, false))

	got := reg.ByCategory("Network Scanning")
	require.Len(t, got, 2)
	require.Equal(t, "nmap", got[0].Name)
	require.Equal(t, "masscan", got[1].Name)

	require.NotNil(t, reg.ByCategory("network scanning"))
	require.Empty(t, reg.ByCategory("network scanning"))
}

func TestRebuildIndexMatchesIncrementalIndex(t *testing.T) {
	reg := mustRegistry(t)
	require.NoError(t, reg.Remove("nikto"))
	require.NoError(t, reg.Add(ToolEntry{Name: "sqlmap", Category: "Database Assessment", Usage: "sqlmap -u <url>"}, false))
	incremental := reg.AllCategories()

	reg.RebuildIndex()
	require.Equal(t, incremental, reg.AllCategories())
}

func TestSearch(t *testing.T) {
	reg := mustRegistry(t)

	all := reg.Search("")
	require.Len(t, all, 3)
	require.Equal(t, "hydra", all[0].Name)
	require.Equal(t, "nikto", all[1].Name)
	require.Equal(t, "nmap", all[2].Name)

	require.Equal(t, reg.Search("nmap"), reg.Search("NMAP"))

	hits := reg.Search("scan")
	require.Len(t, hits, 2)
	require.Equal(t, "nikto", hits[0].Name)
	require.Equal(t, "nmap", hits[1].Name)

	hits = reg.Search("nmap")
	require.Len(t, hits, 1)

	hits = reg.Search("target")
	require.Len(t, hits, 3)
	require.Equal(t, "hydra", hits[0].Name)

	require.Empty(t, reg.Search("wireshark"))
}

func TestSearchRanksByMatchedFields(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Add(ToolEntry{Name: "alpha", Category: "c", Description: "wifi helper", Usage: "alpha"}, false))
	require.NoError(t, reg.Add(ToolEntry{Name: "wifite", Category: "c", Description: "wifi auditor", Usage: "wifite -i <iface>"}, false))

	hits := reg.Search("WiFi")
	require.Len(t, hits, 2)
	require.Equal(t, "wifite", hits[0].Name)
	require.Equal(t, "alpha", hits[1].Name)
}

func TestDecodeAcceptsLegacyCommonUsage(t *testing.T) {
	raw := `[{"name":"dmitry","category":"Information Gathering","description":"d","common_usage":"dmitry [options] {target}"}]`
	var entries []ToolEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	require.Equal(t, "dmitry [options] {target}", entries[0].Usage)
	require.Nil(t, entries[0].Examples)

	yml := "- name: whois\n  category: Information Gathering\n  description: lookup\n  common_usage: whois <domain>\n"
	entries = nil
	require.NoError(t, yaml.Unmarshal([]byte(yml), &entries))
	require.Equal(t, "whois <domain>", entries[0].Usage)
}
