package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/scenepool/pkg/catalog"
	"github.com/ajitpratap0/scenepool/pkg/errors"
)

func newCatalogCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage template catalogs",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample catalog",
		Long: `Write a sample catalog to path, or to the configured catalog path.
The format and compression follow the file name, e.g. catalog.json.zst.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, v)
			if err != nil {
				return err
			}
			path := cfg.Catalog.Path
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrorTypeFile, "catalog already exists, use --force to overwrite").
					WithDetail("path", path)
			}
			c := catalog.Sample()
			if err := catalog.Save(path, c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d templates to %s\n", len(c.Templates), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing catalog")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the templates of the configured catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, v)
			if err != nil {
				return err
			}
			c, err := catalog.Open(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range c.Names() {
				t, _ := c.Lookup(name)
				fmt.Fprintf(out, "%-24s tag=%-8s nodes=%-3d preload=%d\n", name, t.Tag, t.Size(), t.Preload)
			}
			return nil
		},
	}

	cmd.AddCommand(initCmd, listCmd)
	return cmd
}
