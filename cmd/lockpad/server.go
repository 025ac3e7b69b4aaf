package main

import (
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/lockpad/internal/app"
	"github.com/dropDatabas3/lockpad/internal/config"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
)

func newServerCmd(load func() (*config.Config, error)) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Levanta el API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := app.New(ctx, cfg)
			if err != nil {
				logger.L().Error("startup failed", logger.Err(err))
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.L().Warn("close failed", logger.Err(err))
				}
			}()
			return a.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "host:port (default server.addr, 0.0.0.0:5000)")
	return cmd
}
