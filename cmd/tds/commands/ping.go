package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/tds-go/internal/config"
	"github.com/satishbabariya/tds-go/internal/ui"
)

// NewPingCommand creates the ping command.
func NewPingCommand(global *globalOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}

			spinner, _ := ui.PrintSpinner("Connecting...")
			conn, err := global.connect(cmd.Context(), cfg)
			if err != nil {
				if spinner != nil {
					spinner.Fail(err.Error())
				}
				return err
			}
			defer conn.Close()

			ok := conn.IsConnected(cmd.Context())
			db, dbErr := conn.DBName(cmd.Context())
			if spinner != nil {
				spinner.Stop()
			}
			if !ok {
				return errors.New("server did not answer")
			}
			if dbErr != nil {
				return dbErr
			}
			ui.PrintSuccess("Connected to %s (database %s)", conn.Config().Provider, db)

			if save {
				path, err := config.Save(cfg)
				if err != nil {
					return err
				}
				ui.PrintSuccess("Saved connection settings to %s", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "save the working settings, without the password, to $HOME/.config/tds")

	return cmd
}
