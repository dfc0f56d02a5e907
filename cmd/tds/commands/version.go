package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/tds-go/internal/ui"
	"github.com/satishbabariya/tds-go/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintBox("tds", version.Get().FullString())
		},
	}
}
