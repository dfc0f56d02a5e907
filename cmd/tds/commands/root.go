// Package commands implements CLI commands.
package commands

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/tds-go/internal/config"
	"github.com/satishbabariya/tds-go/internal/debug"
	"github.com/satishbabariya/tds-go/internal/version"
	"github.com/satishbabariya/tds-go/pkg/client"
)

type globalOptions struct {
	configFile  string
	url         string
	debug       bool
	askPassword bool
}

// askPassword prompts on the terminal. Tests replace it.
var askPassword = func() (string, error) {
	var password string
	err := survey.AskOne(&survey.Password{Message: "Password:"}, &password)
	return password, err
}

// NewRootCommand creates the tds command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "tds",
		Short:         "Run parameterized SQL through the tds client",
		Long:          "tds compiles query templates, binds parameters as SQL literals and prints every result a command returns.",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				debug.Init(true)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is .tds.yaml in ., $HOME or $HOME/.config/tds)")
	flags.StringVar(&opts.url, "url", "", "connection URL, overrides the config file")
	flags.BoolVar(&opts.debug, "debug", false, "log protocol activity to stderr")
	flags.BoolVar(&opts.askPassword, "ask-password", false, "prompt for the password")

	cmd.AddCommand(NewCompileCommand())
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.url != "" {
		cfg.URL = o.url
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if cfg.Debug {
		debug.Init(true)
	}
	if o.askPassword {
		password, err := askPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		cfg.Password = password
	}
	return cfg, nil
}

func (o *globalOptions) connect(ctx context.Context, cfg *config.Config) (*client.Connection, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	if o.askPassword {
		// A URL carries its own password; the prompt wins.
		opts = append(opts, client.WithPassword(cfg.Password))
	}
	opts = append(opts, client.WithLogger(debug.Logger()))
	if debug.Enabled() {
		opts = append(opts, client.WithMiddleware(client.LogMiddleware(debug.Logger())))
	}
	return client.Open(ctx, opts...)
}
