// Command lockpad corre el servidor de autorización y sus tareas de
// mantenimiento (claves, tabla).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/lockpad/internal/config"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
)

func main() {
	// .env opcional; el entorno real tiene prioridad
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "lockpad",
		Short:         "Servidor de credenciales y tokens RS256",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("LOCKPAD_CONFIG"), "Ruta al YAML de configuración (env LOCKPAD_CONFIG)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "lockpad"})
		return cfg, nil
	}

	root.AddCommand(
		newServerCmd(load),
		newKeyCmd(),
		newTableCmd(load),
	)
	return root
}
