package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"martianoff/lyra/internal/bootstrap"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a Lyra source tree into binary modules",
	Long: `Compile every package under a source directory into binary
modules, one .lc file per package, mirroring the package layout.

Examples:
  lyra compile --src ./stdlib --out ./build/stdlib
  lyra compile --src ./stdlib --out ./build/stdlib --vectorize`,
	Args: cobra.NoArgs,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().String("src", "", "Source directory to compile")
	compileCmd.Flags().String("out", "", "Output directory for compiled modules")
	compileCmd.Flags().Bool("vectorize", false, "Attach vectorized function forms")
	compileCmd.Flags().Bool("no-prelude", false, "Analyze without implicit preludes")
	viper.BindPFlag("src", compileCmd.Flags().Lookup("src"))
	viper.BindPFlag("out", compileCmd.Flags().Lookup("out"))
	viper.BindPFlag("vectorize", compileCmd.Flags().Lookup("vectorize"))
	viper.BindPFlag("no-prelude", compileCmd.Flags().Lookup("no-prelude"))
}

func runCompile(cmd *cobra.Command, args []string) error {
	src := viper.GetString("src")
	out := viper.GetString("out")
	if src == "" || out == "" {
		return fmt.Errorf("both --src and --out are required")
	}

	config := bootstrap.DefaultConfig()
	if viper.GetBool("no-prelude") {
		config.UsePrelude = false
	}
	db := bootstrap.NewDatabase(config)

	log.Info("compiling", "src", src, "out", out)
	start := time.Now()
	if err := bootstrap.CompileStdlib(db, src, out, viper.GetBool("vectorize")); err != nil {
		return err
	}
	log.Info("done", "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
