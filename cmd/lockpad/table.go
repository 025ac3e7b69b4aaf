package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/lockpad/internal/config"
	"github.com/dropDatabas3/lockpad/internal/store/backend"
)

func newTableCmd(load func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{Use: "table", Short: "Administra la tabla de entidades"}

	create := &cobra.Command{
		Use:   "create",
		Short: "Crea la tabla si no existe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			b, err := backend.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			if err := b.CreateTable(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "table %q ready (%s)\n", cfg.Storage.Table, b.Driver())
			return nil
		},
	}

	var yes bool
	wipe := &cobra.Command{
		Use:   "wipe",
		Short: "Borra todos los items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to wipe without --yes")
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			b, err := backend.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			if err := b.Wipe(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "table %q wiped (%s)\n", cfg.Storage.Table, b.Driver())
			return nil
		},
	}
	wipe.Flags().BoolVar(&yes, "yes", false, "Confirma el borrado")

	cmd.AddCommand(create, wipe)
	return cmd
}
