package cmd

import (
	"errors"

	"github.com/idptools/loopscan/pkg/analyze"
	"github.com/spf13/cobra"
)

func devicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices <filename>...",
		Short: "Report clients seen with more than one user agent",
		Args:  cobra.MinimumNArgs(1),
	}
	config := analyze.DefaultConfig()
	config.InstallFlags(cmd.Flags())
	var opts runOptions
	opts.install(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a, finish, err := loadAll(cmd, args, config, &opts)
		if err != nil {
			return err
		}
		err = a.PrintDevices(cmd.OutOrStdout())
		return errors.Join(err, finish())
	}
	return cmd
}
