package main

import (
	"os"

	"github.com/patientmesh/mesh/services/api-gateway/internal/app/bootstrap"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:          "api-gateway",
		Short:        "Edge router that authenticates and forwards requests",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/default.yaml", "path to the service config file")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "api",
		Short: "Serve the gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runtime, err := bootstrap.NewRuntime(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			return runtime.RunAPI(cmd.Context())
		},
	})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
