package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/tds-go/internal/config"
	"github.com/satishbabariya/tds-go/internal/ui"
	"github.com/satishbabariya/tds-go/internal/watch"
	"github.com/satishbabariya/tds-go/pkg/client"
)

type execOptions struct {
	file  string
	raw   []string
	watch bool
}

// NewExecCommand creates the exec command.
func NewExecCommand(global *globalOptions) *cobra.Command {
	opts := &execOptions{}

	cmd := &cobra.Command{
		Use:   "exec [query]",
		Short: "Execute a command and print every result",
		Long: `Exec binds the -p parameters into the query, sends it as one command
and prints every row set, return status, update count and message it
produces. The query comes from the argument or from --file.`,
		Example: `  tds exec "select title, price from titles where type = :type" -p type=business
  tds exec -f report.sql --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), global, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "read the query from a file")
	flags.StringArrayVarP(&opts.raw, "param", "p", nil, "parameter as value or name=value (repeatable)")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "rerun when --file changes")

	return cmd
}

func runExec(ctx context.Context, global *globalOptions, opts *execOptions, args []string) error {
	if opts.watch && opts.file == "" {
		return errors.New("--watch requires --file")
	}
	if (len(args) == 0) == (opts.file == "") {
		return errors.New("pass either a query argument or --file")
	}
	p, err := parseParams(opts.raw)
	if err != nil {
		return err
	}

	cfg, err := global.load()
	if err != nil {
		return err
	}
	conn, err := global.connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	query := func() (string, error) {
		if opts.file == "" {
			return args[0], nil
		}
		b, err := afero.ReadFile(config.AppFs, opts.file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", opts.file, err)
		}
		return string(b), nil
	}
	run := func() error {
		text, err := query()
		if err != nil {
			return err
		}
		return execute(ctx, conn, p, text)
	}

	if !opts.watch {
		return run()
	}

	w, err := watch.NewWatcher(opts.file, run, watch.WithErrorHandler(func(err error) {
		ui.PrintError("%v", err)
	}))
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		return err
	}
	ui.PrintSuccess("Watching %s for changes... (Press Ctrl+C to stop)", opts.file)
	<-ctx.Done()
	ui.PrintInfo("Stopping watch mode...")
	return nil
}

// execute runs text once and renders the outcome. Server diagnostics of a
// failed command are printed before the error is returned.
func execute(ctx context.Context, conn *client.Connection, p *params, text string) error {
	st, err := p.bind(text)
	if err != nil {
		return err
	}
	rs, err := conn.ExecuteStatement(ctx, st)
	if err != nil {
		var execErr *client.ExecutionError
		if errors.As(err, &execErr) && len(execErr.Messages) > 0 {
			printMessages(execErr.Messages)
		}
		return err
	}
	return render(rs)
}
