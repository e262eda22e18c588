package cmd

import (
	"github.com/spf13/cobra"
)

func showHelp(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "loopscan",
		Short: "Find redirect loops and repeated requests in web server access logs",
		Args:  cobra.NoArgs,
		RunE:  showHelp,
	}
	rootCmd.AddCommand(
		loopsCmd(),
		devicesCmd(),
		grepCmd(),
		listCmd(),
	)
	return rootCmd
}
