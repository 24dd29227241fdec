package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "scenepool",
		Short: "scenepool - scene instance pooling",
		Long: `scenepool recycles scene instances (entity trees built from catalog templates)
instead of recreating them. The CLI manages template catalogs and runs
repeatable workloads against a pool.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	root.PersistentFlags().String("catalog", "", "Path to the template catalog (overrides catalog.path)")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	bindFlag(v, "catalog.path", root.PersistentFlags().Lookup("catalog"))
	bindFlag(v, "logging.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scenepool v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(newConfigCommand())
	root.AddCommand(newCatalogCommand(v))
	root.AddCommand(newSimulateCommand(v))

	return root
}
