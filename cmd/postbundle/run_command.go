package main

import (
	"github.com/spf13/cobra"

	"postbundle/internal/config"
	"postbundle/internal/errs"
	"postbundle/internal/journal"
	"postbundle/internal/logging"
	"postbundle/internal/runner"
)

func newRunCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one bundle assembly run",
		Long: "Acquires the single-instance run lock, samples a balanced media " +
			"batch, rotates the caption bank, and materializes one timestamped " +
			"bundle directory. A held lock or insufficient media is a benign " +
			"skip and exits zero.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			opts := []runner.Option{}
			store, err := journal.Open(cfg)
			if err != nil {
				logger.Warn("run journal unavailable", logging.Error(err))
			} else {
				defer store.Close()
				opts = append(opts, runner.WithJournal(store))
			}

			_, runErr := runner.New(cfg, logger, opts...).Run(cmd.Context())
			if runErr != nil && !errs.IsSkip(runErr) {
				return runErr
			}
			return nil
		},
	}
}
