package cli

import (
	"github.com/spf13/cobra"

	"github.com/graphbase-io/graphbase/internal/logger"
	"github.com/graphbase-io/graphbase/pkg/graphbase"
)

// Global configuration variables
var (
	configFile    string
	serviceConfig *ServiceConfig
	debug         bool
	verbose       bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "graphbase",
		Short: "Graphbase - hosted GraphQL database CLI",
		Long: `Graphbase is the command-line client for the hosted GraphQL database
service. It manages service definitions, deploys datamodels, seeds data,
and introspects existing relational databases into SDL datamodels.`,
		Version: graphbase.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Configure(debug, verbose)

			var err error
			serviceConfig, err = LoadServiceConfig(configFile)
			if err != nil {
				logger.Config().Warn("failed to load service definition: %v", err)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "service definition file (default: graphbase.yml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(introspectCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// config returns the loaded service definition, or an empty one with
// defaults so flag-only invocations still work.
func config() *ServiceConfig {
	if serviceConfig != nil {
		return serviceConfig
	}
	cfg := &ServiceConfig{}
	cfg.Stage = "dev"
	cfg.Datamodel = "datamodel.graphql"
	cfg.Database.Driver = "postgres"
	return cfg
}
