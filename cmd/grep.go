package cmd

import (
	"fmt"

	"github.com/idptools/loopscan/pkg/grep"
	"github.com/idptools/loopscan/pkg/util"
	"github.com/spf13/cobra"
)

func grepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grep <filename>...",
		Short: "Print log lines whose parsed fields match the filter",
		Args:  cobra.MinimumNArgs(1),
	}
	config := grep.DefaultConfig()
	config.InstallFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		filenames, err := util.ExpandGlobs(args)
		if err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "Using log files:", filenames)
		}
		cmd.SilenceUsage = true

		g, err := grep.New(config, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		for _, filename := range filenames {
			if err := g.GrepFile(filename); err != nil {
				return fmt.Errorf("%s: %w", filename, err)
			}
		}
		return nil
	}
	return cmd
}
