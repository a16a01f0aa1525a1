package cmd

import (
	"github.com/spf13/cobra"
	"video-portal/config"
	server2 "video-portal/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start http server and watch event consumer",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunHttp(config)
		},
	}
}

func consume(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "consume watch events from rabbitmq",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunConsumer(config)
		},
	}
}

func migrate(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "migrate the database schema and seed admins",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server2.RunMigrate(config)
		},
	}
}
