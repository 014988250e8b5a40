// Package commands provides the CLI commands for the lyra tool.
package commands

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "lyra",
	Short: "Lyra language compiler",
	Long: `Lyra is a small statically-typed query language.

This tool provides:
  - Compilation of a Lyra source tree into binary modules (lyra compile)
  - Version information (lyra version)

Flags can also be set through LYRA_* environment variables, e.g.
LYRA_SRC and LYRA_OUT for the compile command.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func init() {
	viper.SetEnvPrefix("LYRA")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	cobra.OnInitialize(func() {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
	})

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(versionCmd)
}
