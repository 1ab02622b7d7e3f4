package main

import (
	"os"

	"github.com/patientmesh/mesh/services/analytics-service/internal/app/bootstrap"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:          "analytics-service",
		Short:        "Consumes patient events",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/default.yaml", "path to the service config file")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "worker",
		Short: "Run the patient event consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runtime, err := bootstrap.NewRuntime(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			return runtime.RunWorker(cmd.Context())
		},
	})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
