package main

import (
	"os"

	"github.com/patientmesh/mesh/services/auth-service/internal/app/bootstrap"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:          "auth-service",
		Short:        "Login and token validation API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/default.yaml", "path to the service config file")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "api",
		Short: "Serve the auth HTTP API",
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
