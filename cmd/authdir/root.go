// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/authdir/authdir/internal/config"
)

// configFlag names the persistent flag holding the config file path.
const configFlag = "config"

// NewRootCmd creates the root command for the authdir CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authdir",
		Short: "AuthDir - an in-process user directory",
		Long: `AuthDir keeps a directory of registered users with login sessions,
a single reserved administrator and admin-only user listing.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String(configFlag, "", "config file path")
	config.RegisterFlags(flags)

	cmd.AddCommand(NewConsoleCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// loadConfig resolves the effective configuration for cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path, cmd.Flags())
}

// NewConfigCmd creates the config subcommand.
func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
