package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/piwi3910/maskroute/internal/model"
	"github.com/piwi3910/maskroute/internal/project"
	"github.com/spf13/cobra"
)

// app carries the state every subcommand shares once the root command has
// parsed its persistent flags.
type app struct {
	configPath   string
	profilesPath string
	logLevel     string
	logFormat    string

	cfg      model.AppConfig
	profiles []model.RuleProfile
	log      *slog.Logger
	out      io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "maskroute",
		Short: "Escape routing, path finding and design rule checks for mask layouts",
		Long: `maskroute builds escape traces for rectangular pad arrays, routes
connections around obstacles on a grid and validates the result against
per-layer minimum feature size and spacing rules.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", project.DefaultConfigPath(),
		"configuration file (.yaml or .json)")
	root.PersistentFlags().StringVar(&a.profilesPath, "profiles", project.DefaultProfilesPath(),
		"custom rule profile file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info",
		"log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text",
		"log format: text or json")

	root.AddCommand(
		newEscapeCmd(a),
		newRouteCmd(a),
		newDRCCmd(a),
		newCompareCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.out = cmd.OutOrStdout()

	logger, err := newLogger(cmd.ErrOrStderr(), a.logLevel, a.logFormat)
	if err != nil {
		return err
	}
	a.log = logger
	slog.SetDefault(logger)

	cfg, err := project.LoadAppConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	profiles, err := project.LoadCustomProfiles(a.profilesPath)
	if err != nil {
		return fmt.Errorf("failed to load rule profiles: %w", err)
	}
	a.profiles = profiles

	a.log.Debug("configuration loaded",
		"config", a.configPath,
		"profiles", len(a.profiles))
	return nil
}

// newLogger builds the process logger from the --log-level and --log-format
// flags.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: want text or json", format)
	}
}

// rememberLayout records path in the recent list when a config file is in
// use. A missing config file is left alone.
func (a *app) rememberLayout(path string) {
	if _, err := os.Stat(a.configPath); errors.Is(err, os.ErrNotExist) {
		return
	}
	project.AddRecentLayout(&a.cfg, path)
	if err := project.SaveAppConfig(a.configPath, a.cfg); err != nil {
		a.log.Warn("could not update recent layouts", "error", err)
	}
}
