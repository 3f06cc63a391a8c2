package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanstack/qclean/internal/config"
)

var configInitPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage qclean configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configInitPath); err == nil {
			return fmt.Errorf("config file already exists: %s", configInitPath)
		}
		if err := config.WriteDefault(configInitPath); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", configInitPath)
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "qclean.yaml", "where to write the config file")
	configCmd.AddCommand(configInitCmd)
}
