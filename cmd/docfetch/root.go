package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-docfetch/internal/config"
	"github.com/alnah/go-docfetch/internal/logger"
)

// ErrUsage marks invalid flags or arguments.
var ErrUsage = errors.New("invalid usage")

// newRootCmd assembles the command tree. The persistent pre-run resolves
// configuration (file, then .env and DOCFETCH_* variables) into env.Config.
func newRootCmd(env *Environment) *cobra.Command {
	var common commonFlags

	root := &cobra.Command{
		Use:   "docfetch",
		Short: "Download financial documents as PDF",
		Long: `docfetch saves earnings call transcripts and earnings releases as PDF.

Direct PDF links are fetched with a Chrome-like HTTP client and fall back to a
real browser session when the site refuses plain clients. Other pages are
rendered in headless Chrome and printed to PDF.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// doctor loads the config itself and tolerates a broken one.
			if cmd.Name() == "version" || cmd.Name() == "doctor" {
				return nil
			}
			cfg, err := resolveConfig(env, &common, cmd.Flags().Changed("env-file"))
			if err != nil {
				return err
			}
			env.Config = cfg
			return nil
		},
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	addCommonFlags(root.PersistentFlags(), &common)

	root.AddCommand(
		newDownloadCmd(env, &common),
		newServeCmd(env, &common),
		newDoctorCmd(env, &common),
		newVersionCmd(env),
	)
	return root
}

// resolveConfig loads the config file and applies environment overrides.
// A missing default .env is fine; an explicit --env-file must exist.
func resolveConfig(env *Environment, common *commonFlags, envFileExplicit bool) (*config.Config, error) {
	if common.envFile != "" {
		if err := godotenv.Load(common.envFile); err != nil && (envFileExplicit || !errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("%w: loading %s: %v", ErrUsage, common.envFile, err)
		}
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	configName := common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}

	var (
		cfg *config.Config
		err error
	)
	if configName != "" {
		cfg, err = config.LoadConfig(configName)
	} else {
		var wd string
		wd, err = env.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		cfg, err = config.LoadDefault(wd)
	}
	if err != nil {
		return nil, err
	}

	applyEnvConfig(envCfg, cfg)
	if common.verbose {
		cfg.Logging.Level = "debug"
	}
	if common.logLevel != "" {
		cfg.Logging.Level = common.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the command logger writing to env.Stderr.
func newLogger(env *Environment) (*zap.Logger, error) {
	if env.Stderr == os.Stderr {
		return logger.New(env.Config.Logging.Level, env.Config.Logging.Format)
	}
	return logger.NewWriter(env.Stderr, env.Config.Logging.Level)
}
