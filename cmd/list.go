package cmd

import (
	"slices"
	"strings"

	"github.com/idptools/loopscan/pkg/analyze"
	"github.com/idptools/loopscan/pkg/parser"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <item>",
		Short: "List parsers or event fields",
		Args:  cobra.NoArgs,
		RunE:  showHelp,
	}
	cmd.AddCommand(listParsersCmd(), listFieldsCmd())
	return cmd
}

func listParsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parsers",
		Short: "List available log parsers",
		Args:  cobra.NoArgs,
	}
	var all bool
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include aliases and parsers that need extra setup")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		table := analyze.NewTable(cmd.OutOrStdout())
		table.Header("Name", "Description")

		parsers := parser.All()
		slices.SortFunc(parsers, func(a, b parser.ParserMeta) int {
			return strings.Compare(a.Name, b.Name)
		})
		for _, p := range parsers {
			if p.Hidden && !all {
				continue
			}
			if err := table.Append([]string{p.Name, p.Description}); err != nil {
				return err
			}
		}
		return table.Render()
	}
	return cmd
}

var fieldDescriptions = map[string]string{
	"agent":   "User agent (aliases: browser, useragent)",
	"bytes":   "Response size in bytes (alias: size)",
	"client":  "Client address",
	"id":      "Client address and user agent",
	"method":  "HTTP method",
	"referer": "Referer header",
	"request": "Request path, normalized by the parser (alias: path)",
	"server":  "Virtual host, when the log has one",
	"status":  "Response status (alias: response)",
}

func listFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List event fields usable with --where and --compare",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := analyze.NewTable(cmd.OutOrStdout())
			table.Header("Field", "Description")
			for _, name := range parser.FieldNames() {
				if err := table.Append([]string{name, fieldDescriptions[name]}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}
