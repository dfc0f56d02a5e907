package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/tds-go/internal/ui"
	"github.com/satishbabariya/tds-go/pkg/client"
)

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	var (
		raw      []string
		markdown bool
	)

	cmd := &cobra.Command{
		Use:   "compile <query>",
		Short: "Show the placeholders of a query and the SQL it generates",
		Long: `Compile splits a query template into literal text and placeholders,
binds the -p parameters and prints the SQL that would be sent. Nothing is
sent to a server. Unbound placeholders render as null.`,
		Example: `  tds compile "select * from titles where price > ? and type = :type" -p 10.5 -p type=business`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseParams(raw)
			if err != nil {
				return err
			}
			st, err := p.bind(args[0])
			if err != nil {
				return err
			}
			sql, err := st.SQL()
			if err != nil {
				return err
			}
			if markdown {
				return ui.PrintMarkdown(compileReport(st, sql))
			}

			ui.PrintSection("Placeholders")
			if err := ui.PrintTable([]string{"#", "name", "bound"}, placeholderRows(st)); err != nil {
				return err
			}
			ui.PrintSection("SQL")
			ui.PrintCodeBlock(sql)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&raw, "param", "p", nil, "parameter as value or name=value (repeatable)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render the report as markdown")

	return cmd
}

func placeholderRows(st *client.Statement) [][]string {
	names := st.Query().Names
	rows := make([][]string, len(names))
	for i, name := range names {
		if name == "" {
			name = "?"
		} else {
			name = ":" + name
		}
		bound := "no"
		if st.IsSet(i) {
			bound = "yes"
		}
		rows[i] = []string{fmt.Sprint(i + 1), name, bound}
	}
	return rows
}

func compileReport(st *client.Statement, sql string) string {
	var b strings.Builder
	b.WriteString("# Query\n\n")
	fmt.Fprintf(&b, "%d placeholders\n\n", st.ParamCount())
	if st.ParamCount() > 0 {
		b.WriteString("| # | name | bound |\n|---|---|---|\n")
		for _, r := range placeholderRows(st) {
			fmt.Fprintf(&b, "| %s | `%s` | %s |\n", r[0], r[1], r[2])
		}
		b.WriteString("\n")
	}
	b.WriteString("## SQL\n\n```sql\n")
	b.WriteString(sql)
	b.WriteString("\n```\n")
	return b.String()
}
