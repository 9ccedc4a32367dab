package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/Dleifnesor/PAW/internal/catalog"
	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/Dleifnesor/PAW/internal/render"
	"github.com/Dleifnesor/PAW/internal/store"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// NewToolsCmd groups the registry management commands.
func NewToolsCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tools",
		Aliases: []string{"tool"},
		Short:   "Browse and manage the tool registry",
	}
	cmd.AddCommand(
		newToolsListCmd(opts),
		newToolsShowCmd(opts),
		newToolsSearchCmd(opts),
		newToolsCategoriesCmd(opts),
		newToolsAddCmd(opts),
		newToolsRemoveCmd(opts),
		newToolsImportCmd(opts),
		newToolsExportCmd(opts),
		newToolsSeedCmd(opts),
		newToolsResetCmd(opts),
		newToolsCheckCmd(opts),
	)
	return cmd
}

// readOnly runs fn against the loaded registry.
func readOnly(opts *Options, fn func(a *app, reg *registry.Registry) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.close()
		reg, err := a.registry(cmd.Context())
		if err != nil {
			return err
		}
		return fn(a, reg)
	}
}

func newToolsListCmd(opts *Options) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		Args:  cobra.NoArgs,
		RunE: readOnly(opts, func(a *app, reg *registry.Registry) error {
			if category != "" {
				return a.out.Tools(reg.ByCategory(category))
			}
			return a.out.Tools(reg.ExportAll())
		}),
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only tools in this category (exact label)")
	return cmd
}

func newToolsShowCmd(opts *Options) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one tool with its usage and examples",
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			name = args[0]
		},
		RunE: readOnly(opts, func(a *app, reg *registry.Registry) error {
			entry, err := reg.Get(name)
			if err != nil {
				return err
			}
			return a.out.Tool(entry)
		}),
	}
	return cmd
}

func newToolsSearchCmd(opts *Options) *cobra.Command {
	var keyword string
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search tool names, descriptions and usage",
		Args:  cobra.MaximumNArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				keyword = args[0]
			}
		},
		RunE: readOnly(opts, func(a *app, reg *registry.Registry) error {
			return a.out.Tools(reg.Search(keyword))
		}),
	}
}

func newToolsCategoriesCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories in use",
		Args:  cobra.NoArgs,
		RunE: readOnly(opts, func(a *app, reg *registry.Registry) error {
			return a.out.Categories(reg.AllCategories())
		}),
	}
}

func newToolsAddCmd(opts *Options) *cobra.Command {
	var entry registry.ToolEntry
	var examples []string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a tool",
		Example: `  paw tools add --name masscan --category "Network Scanning" \
    --description "Fast port scanner" --usage "masscan -p<ports> <target>" \
    --example "Scan web ports=masscan -p80,443 10.0.0.0/8"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range examples {
				ex, err := parseExample(raw)
				if err != nil {
					return err
				}
				entry.Examples = append(entry.Examples, ex)
			}
			if err := entry.Validate(); err != nil {
				return err
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()
			err = a.store.Update(cmd.Context(), func(reg *registry.Registry) error {
				return reg.Add(entry, overwrite)
			})
			if err != nil {
				return err
			}
			return a.out.Notice(render.LevelSuccess, fmt.Sprintf("added %s", entry.Name))
		},
	}

	f := cmd.Flags()
	f.StringVar(&entry.Name, "name", "", "Tool name (unique, case-insensitive)")
	f.StringVar(&entry.Category, "category", "", "Category label")
	f.StringVar(&entry.Description, "description", "", "One-line description")
	f.StringVar(&entry.Usage, "usage", "", "Usage template, e.g. \"nikto -h <target>\"")
	f.StringArrayVar(&examples, "example", nil, "Example as \"description=command\" (repeatable)")
	f.BoolVar(&overwrite, "overwrite", false, "Replace an existing tool with the same name")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("usage")
	return cmd
}

func parseExample(raw string) (registry.Example, error) {
	desc, command, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(command) == "" {
		return registry.Example{}, fmt.Errorf("example %q must look like \"description=command\"", raw)
	}
	return registry.Example{Description: strings.TrimSpace(desc), Command: strings.TrimSpace(command)}, nil
}

func newToolsRemoveCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>...",
		Aliases: []string{"rm"},
		Short:   "Remove tools from the registry",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()
			err = a.store.Update(cmd.Context(), func(reg *registry.Registry) error {
				for _, name := range args {
					if err := reg.Remove(name); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			return a.out.Notice(render.LevelSuccess, fmt.Sprintf("removed %s", strings.Join(args, ", ")))
		},
	}
}

func newToolsImportCmd(opts *Options) *cobra.Command {
	var format string
	var importOpts registry.ImportOptions

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import tools from a JSON or YAML file",
		Long:  "Import tools from a JSON or YAML list. Entries that are invalid or already registered are skipped and reported; use --overwrite to replace existing tools and --dry-run to preview.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readEntries(cmd.InOrStdin(), args[0], format)
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			var report registry.ImportReport
			if importOpts.DryRun {
				reg, err := a.store.Load(cmd.Context())
				if err != nil {
					return err
				}
				report = reg.ImportBatch(entries, importOpts)
			} else {
				err = a.store.Update(cmd.Context(), func(reg *registry.Registry) error {
					report = reg.ImportBatch(entries, importOpts)
					return nil
				})
				if err != nil {
					return err
				}
			}
			return a.out.ImportReport(report, importOpts.DryRun)
		},
	}

	f := cmd.Flags()
	f.StringVar(&format, "format", "", "Input format: json or yaml (default from file extension)")
	f.BoolVar(&importOpts.Overwrite, "overwrite", false, "Replace tools that are already registered")
	f.BoolVar(&importOpts.DryRun, "dry-run", false, "Report what would be imported without saving")
	return cmd
}

func readEntries(stdin io.Reader, path, format string) ([]registry.ToolEntry, error) {
	if path == "-" {
		f, err := store.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		entries, err := store.Decode(stdin, f)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return entries, nil
	}
	if format == "" {
		entries, err := store.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return entries, nil
	}
	f, err := store.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer file.Close()
	entries, err := store.Decode(file, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return entries, nil
}

func newToolsExportCmd(opts *Options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write every registered tool as JSON or YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			reg, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}

			f := store.FormatJSON
			switch {
			case format != "":
				if f, err = store.ParseFormat(format); err != nil {
					return err
				}
			case len(args) == 1:
				f = store.FormatFromPath(args[0])
			}

			if len(args) == 0 || args[0] == "-" {
				return store.Encode(cmd.OutOrStdout(), reg.ExportAll(), f)
			}
			var buf bytes.Buffer
			if err := store.Encode(&buf, reg.ExportAll(), f); err != nil {
				return err
			}
			if err := renameio.WriteFile(args[0], buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			return a.out.Notice(render.LevelSuccess, fmt.Sprintf("exported %d tools to %s", reg.Len(), args[0]))
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or yaml (default json, or from file extension)")
	return cmd
}

func newToolsSeedCmd(opts *Options) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add the built-in catalogue of common Kali tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.Entries()
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			var report registry.ImportReport
			err = a.store.Update(cmd.Context(), func(reg *registry.Registry) error {
				report = reg.ImportBatch(entries, registry.ImportOptions{Overwrite: overwrite})
				return nil
			})
			if err != nil {
				return err
			}
			return a.out.ImportReport(report, false)
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace registered tools with the built-in definitions")
	return cmd
}

func newToolsResetCmd(opts *Options) *cobra.Command {
	var seed, yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the registry with an empty one or the built-in catalogue",
		Long:  "Replace the registry file without reading it. This is also the way to recover from a corrupt registry.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "reset "+a.store.Path())
				if err != nil {
					return err
				}
				if !ok {
					return a.out.Notice(render.LevelInfo, "registry left unchanged")
				}
			}

			reg := registry.New()
			if seed {
				if reg, err = catalog.Registry(); err != nil {
					return err
				}
			}
			if err := a.store.Reset(cmd.Context(), reg); err != nil {
				return err
			}
			return a.out.Notice(render.LevelSuccess, fmt.Sprintf("registry reset with %d tools", reg.Len()))
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Fill the new registry with the built-in catalogue")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newToolsCheckCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report which registered tools are installed on this machine",
		Args:  cobra.NoArgs,
		RunE: readOnly(opts, func(a *app, reg *registry.Registry) error {
			var missing int
			for _, e := range reg.ExportAll() {
				bin := executable(e)
				path, err := lookPath(bin)
				if err != nil {
					missing++
					if nerr := a.out.Notice(render.LevelWarn, fmt.Sprintf("%s: %s not found in PATH", e.Name, bin)); nerr != nil {
						return nerr
					}
					continue
				}
				if err := a.out.Notice(render.LevelSuccess, fmt.Sprintf("%s: %s", e.Name, path)); err != nil {
					return err
				}
			}
			summary := fmt.Sprintf("%d of %d tools installed", reg.Len()-missing, reg.Len())
			if missing > 0 {
				return a.out.Notice(render.LevelWarn, summary)
			}
			return a.out.Notice(render.LevelSuccess, summary)
		}),
	}
}

// executable is the program a tool's usage invokes, falling back to its name.
func executable(e registry.ToolEntry) string {
	if fields := strings.Fields(e.Usage); len(fields) > 0 && !strings.ContainsAny(fields[0], "<>{}[]") {
		return fields[0]
	}
	return e.Name
}
