package cmd

import (
	"fmt"
	"os"

	"genfity-report-service/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the configuration shared by every subcommand.
type app struct {
	envFile string
	v       *viper.Viper
}

func (a *app) config() config.Config {
	return config.FromViper(a.v)
}

// loadEnv reads the dotenv file. The default .env is optional; an explicit
// --config file must exist.
func (a *app) loadEnv(cmd *cobra.Command, _ []string) error {
	if a.envFile == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(a.envFile); err != nil {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:               "genfity-reports",
		Short:             "Merchant reporting and analytics for Genfity restaurants",
		Long:              `genfity-reports serves per-merchant sales reports, dashboards and revenue anomaly detection over the Genfity order database, and renders the same reports offline from exported order files.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadEnv,
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "config", "", "env file to load (default is .env when present)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("env", "", "application environment (development, production)")
	_ = a.v.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("APP_ENV", rootCmd.PersistentFlags().Lookup("env"))

	rootCmd.AddCommand(newServeCmd(a), newReportCmd(a))
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
