// cmd/vacancyctl/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vacancy-workers/internal/bootstrap"
	"vacancy-workers/internal/common/config"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/observability"
	"vacancy-workers/pkg/registry"
)

var rootCmd = &cobra.Command{
	Use:           "vacancyctl",
	Short:         "vacancyctl - rental vacancy workflow and application screening",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, metrics and the pending-review sweep",
	RunE:  runServe,
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the Zeebe job workers",
	RunE:  runWorker,
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the activity registry",
}

var registryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the activity registry as JSON",
	RunE:  runRegistryExport,
}

var configFlag string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to a config file (defaults to configs/config.yaml)")
	registryCmd.AddCommand(registryExportCmd)
	rootCmd.AddCommand(serveCmd, workerCmd, vacancyCmd, applicationsCmd, registryCmd, demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.LoadFromFile(configFlag)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bootstrap.RunServer(ctx, cfg, newLogger(cfg))
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	return bootstrap.RunWorkers(ctx, cfg, newLogger(cfg), obs)
}

func runRegistryExport(cmd *cobra.Command, args []string) error {
	path := ""
	if configFlag != "" {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.Vacancy.RegistryPath
	}
	reg, err := registry.LoadOrDefault(path)
	if err != nil {
		return err
	}
	return registry.Export(cmd.OutOrStdout(), reg)
}
