package main

import (
	"fmt"
	"os"

	"github.com/shenikar/safe_route_system/internal/config"
	"github.com/shenikar/safe_route_system/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app хранит конфигурацию и логгер, загружаемые перед запуском любой команды
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

// @title Safe Route System API
// @version 1.0
// @description Hazard reports validated by user reputation and routes planned around confirmed hazards.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "safe-route",
		Short: "Hazard reports and safe route planning service",
		// Конфигурация загружается после разбора аргументов, поэтому --help работает без окружения
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			a.log = logger.New(cfg.LogLevel)
			return nil
		},
		// Без подкоманды запускается сервер
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		serveCommand(a),
		migrateCommand(a),
		tokenCommand(a),
	)

	return rootCmd
}
