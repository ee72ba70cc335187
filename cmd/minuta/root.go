package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/minuta/internal/config"
	"github.com/JonMunkholm/minuta/internal/core"
	"github.com/JonMunkholm/minuta/internal/docx"
	"github.com/JonMunkholm/minuta/internal/logging"
	"github.com/JonMunkholm/minuta/internal/sheet"
)

type rootOptions struct {
	envFile  string
	logLevel string
	aliases  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "minuta",
		Short:         "Fill portaria templates from a spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load environment from this file before reading configuration")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.aliases, "aliases", "", "YAML alias vocabulary, overrides ALIASES_FILE")

	cmd.AddCommand(newGenerateCmd(opts), newColumnsCmd(opts))

	cmd.SetErr(os.Stderr)
	return cmd
}

// service builds a core.Service from the environment and the persistent flags.
func (o *rootOptions) service(cmd *cobra.Command) (*core.Service, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.aliases != "" {
		cfg.Generate.AliasesFile = o.aliases
	}
	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	return core.NewService(cfg, sheet.NewDecoder(), docx.NewCodec())
}

// reportedError marks an error already printed by report.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// report prints err the way an operator should read it.
func report(cmd *cobra.Command, err error) error {
	if core.IsUserFacing(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), core.FormatUserError(err))
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
	}
	return reportedError{err}
}
