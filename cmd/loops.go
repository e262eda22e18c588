package cmd

import (
	"errors"
	"fmt"

	"github.com/idptools/loopscan/pkg/analyze"
	"github.com/idptools/loopscan/pkg/util"
	"github.com/spf13/cobra"
)

type runOptions struct {
	configFile string
	cpuProfile string
}

func (o *runOptions) install(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configFile, "config", "", "YAML file with default settings")
	cmd.Flags().StringVar(&o.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
}

// loadAll builds an analyzer from config and the command line and feeds it
// every file named by args, in order. The returned finish stops profiling
// and closes the analyzer.
func loadAll(cmd *cobra.Command, args []string, config analyze.AnalyzerConfig, opts *runOptions) (a *analyze.Analyzer, finish func() error, err error) {
	if opts.configFile != "" {
		fc, err := analyze.LoadConfigFile(opts.configFile)
		if err != nil {
			return nil, nil, err
		}
		if err := config.ApplyFile(fc, cmd.Flags().Changed); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", opts.configFile, err)
		}
	}
	filenames, err := util.ExpandGlobs(args)
	if err != nil {
		return nil, nil, err
	}
	cmd.SilenceUsage = true

	a, err = analyze.NewAnalyzer(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	a.SetLogOutput(cmd.ErrOrStderr())

	stop := func() error { return nil }
	if opts.cpuProfile != "" {
		stop, err = util.StartCPUProfile(opts.cpuProfile)
		if err != nil {
			return nil, nil, errors.Join(err, a.Close())
		}
	}
	finish = func() error {
		return errors.Join(stop(), a.Close())
	}
	for _, filename := range filenames {
		if err := a.Load(filename); err != nil {
			return nil, nil, errors.Join(err, finish())
		}
	}
	return a, finish, nil
}

func loopsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loops <filename>...",
		Short: "Report runs of identical consecutive requests per client",
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
		err = a.PrintLoops(cmd.OutOrStdout())
		return errors.Join(err, finish())
	}
	return cmd
}
