package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/techwm-project/techwm/cmd/util"
	"github.com/techwm-project/techwm/pkg/config"
	"github.com/techwm-project/techwm/pkg/config/types"
)

func NewCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Interact with the TechWM configuration",
	}
	configCmd.AddCommand(newShowCmd())
	configCmd.AddCommand(newDefaultCmd())
	configCmd.AddCommand(newInitCmd())
	return configCmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the configuration in effect, after files, environment and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeYAML(cmd, util.GetConfig(cmd.Context()))
		},
	}
}

func newDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Show the default configuration for the repo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeYAML(cmd, config.Default(util.GetRepoPath(cmd.Context())))
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the repo, unless a config file is already there",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repoPath := util.GetRepoPath(cmd.Context())
			if _, err := config.Init(repoPath); err != nil {
				return fmt.Errorf("failed to initialize config in %s: %w", repoPath, err)
			}
			cmd.Printf("Config written to %s\n", filepath.Join(repoPath, config.FileName))
			return nil
		},
	}
}

func writeYAML(cmd *cobra.Command, cfg types.TechwmConfig) error {
	cfgbytes, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	cmd.Println(string(cfgbytes))
	return nil
}
