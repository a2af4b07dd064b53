package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/piwi3910/maskroute/internal/model"
	"github.com/piwi3910/maskroute/internal/project"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the maskroute configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
			}
			if err := project.SaveAppConfig(a.configPath, model.DefaultAppConfig()); err != nil {
				return err
			}
			printOK(a.out, "wrote %s", a.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and the selected rule profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.cfg.Validate()
			if len(a.cfg.DRC.Rules) == 0 {
				_, perr := project.FindProfile(a.cfg.DRC.Profile, a.profiles)
				err = errors.Join(err, perr)
			}
			if err != nil {
				return err
			}
			printOK(a.out, "%s is valid", a.configPath)
			return nil
		},
	}

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "List built-in and custom rule profiles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			list := func(p model.RuleProfile, kind string) {
				marker := " "
				if p.Name == a.cfg.DRC.Profile {
					marker = "*"
				}
				fmt.Fprintf(a.out, "%s %-24s %-8s %s\n", marker, p.Name, kind, p.Description)
				for _, r := range p.Rules {
					printMuted(a.out, "    %-10s feature %.3f µm, spacing %.3f µm", r.Layer, r.MinFeatureSize, r.MinSpacing)
				}
			}
			for _, p := range model.RuleProfiles {
				list(p, "built-in")
			}
			for _, p := range a.profiles {
				list(p, "custom")
			}
		},
	}

	var profileFile string
	backupCmd := &cobra.Command{
		Use:   "backup <file.json>",
		Short: "Export the configuration and custom profiles to one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := project.ExportAllData(args[0], a.cfg, a.profiles); err != nil {
				return err
			}
			printOK(a.out, "wrote %s", args[0])
			return nil
		},
	}

	restoreCmd := &cobra.Command{
		Use:   "restore <file.json>",
		Short: "Restore the configuration and custom profiles from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := backup.Config.Validate(); err != nil {
				return fmt.Errorf("backup holds an invalid configuration: %w", err)
			}
			if err := project.SaveAppConfig(a.configPath, backup.Config); err != nil {
				return err
			}
			if err := project.SaveCustomProfiles(a.profilesPath, backup.Profiles); err != nil {
				return fmt.Errorf("failed to save rule profiles: %w", err)
			}
			printOK(a.out, "restored %s (%d custom profile(s)) from backup of %s",
				a.configPath, len(backup.Profiles), backup.CreatedAt)
			return nil
		},
	}

	importProfileCmd := &cobra.Command{
		Use:   "import-profile <file>",
		Short: "Add a shared rule profile to the custom profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.ImportProfile(args[0])
			if err != nil {
				return err
			}
			profiles := []model.RuleProfile{p}
			for _, existing := range a.profiles {
				if existing.Name != p.Name {
					profiles = append(profiles, existing)
				}
			}
			if err := project.SaveCustomProfiles(a.profilesPath, profiles); err != nil {
				return err
			}
			printOK(a.out, "imported profile %q", p.Name)
			return nil
		},
	}

	exportProfileCmd := &cobra.Command{
		Use:   "export-profile <name>",
		Short: "Write one rule profile to a file for sharing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.FindProfile(args[0], a.profiles)
			if err != nil {
				return err
			}
			if err := project.ExportProfile(profileFile, p); err != nil {
				return err
			}
			printOK(a.out, "wrote %s", profileFile)
			return nil
		},
	}
	exportProfileCmd.Flags().StringVarP(&profileFile, "file", "f", "profile.yaml", "destination file (.yaml or .json)")

	cmd.AddCommand(initCmd, showCmd, validateCmd, profilesCmd, backupCmd, restoreCmd, importProfileCmd, exportProfileCmd)
	return cmd
}
