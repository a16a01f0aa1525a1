package cmd

import (
	"github.com/spf13/cobra"
	"video-portal/config"
)

func Root(config *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "video-portal",
		Short: "demo video portal backend",
	}
	rootCmd.AddCommand(server(config), migrate(config), consume(config))
	return rootCmd
}
