package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Dleifnesor/PAW/internal/explain"
	"github.com/Dleifnesor/PAW/internal/history"
	"github.com/Dleifnesor/PAW/internal/llm/configbuilder"
	"github.com/Dleifnesor/PAW/internal/render"
	"github.com/Dleifnesor/PAW/internal/resolver"
	"github.com/Dleifnesor/PAW/internal/rpc"
	"github.com/Dleifnesor/PAW/internal/rpc/suggest"
	"github.com/Dleifnesor/PAW/internal/runner"
)

const daemonTimeout = 10 * time.Second

type askOptions struct {
	tool      string
	limit     int
	explain   bool
	noExplain bool
	run       bool
	yes       bool
	daemon    bool
}

// NewAskCmd resolves a request to a tool and prints the filled-in command.
func NewAskCmd(opts *Options) *cobra.Command {
	ao := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask \"<request>\"",
		Short: "Pick the best tool for a request and fill in its command line",
		Example: `  paw ask "scan the network 192.168.1.0/24 for open ports"
  paw ask --tool hydra "brute force ssh on 10.0.0.5 as admin with /usr/share/wordlists/rockyou.txt"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()
			return a.ask(cmd, prompt, ao)
		},
	}

	f := cmd.Flags()
	f.StringVar(&ao.tool, "tool", "", "Skip resolution and expand this tool")
	f.IntVarP(&ao.limit, "limit", "n", 0, "Number of candidate tools to list (default resolver.top_k)")
	f.BoolVar(&ao.explain, "explain", false, "Ask the configured model to explain the command")
	f.BoolVar(&ao.noExplain, "no-explain", false, "Skip the explanation even when explain.enabled is set")
	f.BoolVar(&ao.run, "run", false, "Execute the command after confirmation")
	f.BoolVarP(&ao.yes, "yes", "y", false, "Do not ask for confirmation with --run")
	f.BoolVar(&ao.daemon, "daemon", false, "Ask a running pawd instead of the local registry")
	cmd.MarkFlagsMutuallyExclusive("tool", "daemon")
	cmd.MarkFlagsMutuallyExclusive("explain", "no-explain")
	return cmd
}

func (a *app) ask(cmd *cobra.Command, prompt string, ao *askOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	suggestions, err := a.suggest(ctx, prompt, ao)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		return a.out.Notice(render.LevelWarn, "no registered tool matches that request; try 'paw tools search <keyword>'")
	}

	if ao.tool == "" {
		matches := make([]resolver.Match, 0, len(suggestions))
		for _, s := range suggestions {
			matches = append(matches, s.Match)
		}
		if err := a.out.Matches(matches); err != nil {
			return err
		}
	}

	best := suggestions[0]
	if err := a.out.Command(best.Expansion); err != nil {
		return err
	}

	if ao.explain || (a.cfg.Explain.Enabled && !ao.noExplain) {
		a.explain(ctx, prompt, best)
	}

	entry := history.Entry{
		Prompt:    prompt,
		Tool:      best.Entry.Name,
		Command:   best.Expansion.Command,
		AllFilled: best.Expansion.AllFilled,
	}
	defer func() { a.record(entry) }()

	if !ao.run {
		return nil
	}
	if !ao.yes {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), best.Expansion.Command)
		if err != nil {
			return err
		}
		if !ok {
			return a.out.Notice(render.LevelInfo, "not executed")
		}
	}

	r := &runner.Runner{
		WorkingDir: a.cfg.Runner.WorkingDir,
		Allowed:    a.cfg.Runner.AllowedCommands,
		Denied:     a.cfg.Runner.DeniedCommands,
		Timeout:    time.Duration(a.cfg.Runner.TimeoutSeconds) * time.Second,
		Enabled:    a.cfg.Runner.Enabled,
		Logger:     a.logger,
	}
	res, err := r.RunExpansion(ctx, best.Expansion, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if errors.Is(err, runner.ErrDisabled) {
		return fmt.Errorf("%w (set runner.enabled: true to allow --run)", err)
	}
	if len(res.Argv) > 0 && !errors.Is(err, runner.ErrUnfilled) {
		exit := res.ExitCode
		entry.Executed = true
		entry.ExitCode = &exit
	}
	return err
}

func (a *app) suggest(ctx context.Context, prompt string, ao *askOptions) ([]rpc.Suggestion, error) {
	if ao.daemon {
		ctx, cancel := context.WithTimeout(ctx, daemonTimeout)
		defer cancel()
		resp, err := suggest.NewClient(a.cfg.Server.Addr, nil).Suggest(ctx, rpc.SuggestRequest{Prompt: prompt, Limit: ao.limit})
		if err != nil {
			return nil, fmt.Errorf("ask daemon at %s: %w", a.cfg.Server.Addr, err)
		}
		return resp.Suggestions, nil
	}

	reg, err := a.registry(ctx)
	if err != nil {
		return nil, err
	}
	svc := a.service(reg)

	if ao.tool != "" {
		entry, res, err := svc.Expand(ao.tool, prompt)
		if err != nil {
			return nil, err
		}
		return []rpc.Suggestion{{Match: resolver.Match{Name: entry.Name}, Entry: entry, Expansion: res}}, nil
	}

	resp, err := svc.Suggest(ctx, rpc.SuggestRequest{Prompt: prompt, Limit: ao.limit})
	if err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// explain prints the model's explanation. Failures are reported but never
// fail the command.
func (a *app) explain(ctx context.Context, prompt string, s rpc.Suggestion) {
	if len(a.cfg.Models) == 0 {
		_ = a.out.Notice(render.LevelWarn, "no models configured; skipping explanation")
		return
	}
	models, err := configbuilder.BuildRegistryFromConfig(a.cfg)
	if err != nil {
		_ = a.out.Notice(render.LevelWarn, fmt.Sprintf("explanation unavailable: %v", err))
		return
	}
	text, err := explain.New(models, a.cfg.Explain.Model, a.cfg.Explain.MaxTokens, a.logger).Explain(ctx, explain.Request{
		Prompt:    prompt,
		Entry:     s.Entry,
		Expansion: s.Expansion,
	})
	if err != nil {
		_ = a.out.Notice(render.LevelWarn, fmt.Sprintf("explanation unavailable: %v", err))
		return
	}
	_ = a.out.Explanation(text)
}

func (a *app) record(e history.Entry) {
	log := a.history()
	if log == nil {
		return
	}
	if _, err := log.Append(e); err != nil {
		a.logger.Warn("write history", zap.String("path", log.Path()), zap.Error(err))
	}
}

// confirm asks on w and reads a yes/no answer from r. Anything but y or yes is a no.
func confirm(r io.Reader, w io.Writer, command string) (bool, error) {
	fmt.Fprintf(w, "Run %q? [y/N] ", command)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
