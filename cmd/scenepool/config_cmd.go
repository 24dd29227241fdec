package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/scenepool/pkg/config"
	"github.com/ajitpratap0/scenepool/pkg/errors"
)

const defaultConfigPath = "scenepool.yaml"

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrorTypeFile, "config already exists, use --force to overwrite").
					WithDetail("path", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote default configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	checkCmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", path)
			fmt.Fprintf(out, "catalog:        %s\n", cfg.Catalog.Path)
			fmt.Fprintf(out, "max preload:    %d\n", cfg.Pool.MaxPreloadCount)
			fmt.Fprintf(out, "warm-up:        %d instances over %d templates\n",
				cfg.Pool.WarmupTotal(), len(cfg.Pool.Warmup))
			fmt.Fprintf(out, "metrics:        %t (%s)\n", cfg.Metrics.Enabled, cfg.Metrics.Address)
			fmt.Fprintf(out, "tracing:        %t\n", cfg.Tracing.Enabled)
			return nil
		},
	}

	cmd.AddCommand(initCmd, checkCmd)
	return cmd
}
