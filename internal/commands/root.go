package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenbacks-app/greenbacks/internal/buildinfo"
	"github.com/greenbacks-app/greenbacks/internal/logger"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	repo     string
	json     bool
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "greenbacks",
		Short:   "Classify household transactions and chart where the money goes",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log := logger.NewConsole(cmd.ErrOrStderr(), opts.logLevel)
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.repo, "repo", "C", ".", "workspace directory")
	flags.BoolVar(&opts.json, "json", false, "print results as JSON")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (defaults to log_level in greenbacks.yaml)")

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(opts),
		newFilterCommand(opts),
		newReportCommand(opts),
	)

	return rootCmd
}
