package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-reportform/internal/logging"
	"github.com/goliatone/go-reportform/pkg/config"
)

type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "reportform",
		Short:         "Lung cancer analysis report form, report API and terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newAPICmd(opts),
		newAllCmd(opts),
		newGenerateCmd(opts),
		newAnalyzeCmd(opts),
		newSchemaCmd(opts),
	)
	return rootCmd
}

// setup loads configuration and builds the root logger. Logs go to stderr so
// command output on stdout stays clean.
func (o *rootOptions) setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, zerolog.Nop(), err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}
