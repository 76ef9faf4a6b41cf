package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/partforge/pkg/logging"
)

var (
	verbosity     int
	force         bool
	projectDir    string
	packageMirror string
	targetArch    string

	rootCmd = &cobra.Command{
		Use:   "partforge",
		Short: rootShort,
		Long:  rootLong,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	initTemplateFormatting()

	// Verbosity flag for logging
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	// Force flag
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "Re-run the named step even if already completed")

	// Project location and fetch configuration
	rootCmd.PersistentFlags().StringVar(&projectDir, "project-dir", ".", "Project directory containing partforge.toml")
	rootCmd.PersistentFlags().StringVar(&packageMirror, "package-mirror", "", "Local mirror directory to fetch stage packages from")
	rootCmd.PersistentFlags().StringVar(&targetArch, "target-arch", "", "Target architecture hint passed to drivers that support it")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(stripCmd)
	rootCmd.AddCommand(cleanCmd)
}
