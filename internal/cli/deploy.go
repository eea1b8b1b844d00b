package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/graphbase-io/graphbase/internal/client"
	"github.com/graphbase-io/graphbase/internal/introspect"
)

var (
	deployFromDB bool
	deployDryRun bool
	deployForce  bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the datamodel to the configured service stage",
	Long: `Reads the service definition and pushes the datamodel to the cluster's
management API. With --from-db the datamodel is produced by introspecting
the configured database instead of reading the datamodel file.`,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().BoolVar(&deployFromDB, "from-db", false, "Introspect the configured database instead of reading the datamodel file")
	deployCmd.Flags().BoolVar(&deployDryRun, "dry-run", false, "Report the migration steps without applying them")
	deployCmd.Flags().BoolVar(&deployForce, "force", false, "Apply destructive changes without being asked")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := config()
	if err := requireService(cfg); err != nil {
		return err
	}

	var sdl string
	if deployFromDB {
		if cfg.Database.URL == "" {
			return fmt.Errorf("--from-db requires database.url in graphbase.yml")
		}
		result, err := introspect.IntrospectDatabase(ctx, cfg.Database.Driver, cfg.Database.URL, cfg.Database.Schema)
		if err != nil {
			return fmt.Errorf("failed to introspect database: %w", err)
		}
		sdl = result.SDL
	} else {
		data, err := os.ReadFile(cfg.Datamodel)
		if err != nil {
			return fmt.Errorf("failed to read datamodel %s: %w", cfg.Datamodel, err)
		}
		sdl = string(data)
	}

	api := client.New(cfg.Cluster.Endpoint, cfg.Cluster.Secret)
	payload, err := api.Deploy(ctx, client.DeployInput{
		Service:   cfg.Service,
		Stage:     cfg.Stage,
		DataModel: sdl,
		DryRun:    deployDryRun,
		Force:     deployForce,
	})
	if err != nil {
		return err
	}

	if len(payload.Errors) > 0 {
		for _, e := range payload.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e.Description)
		}
		return fmt.Errorf("deploy rejected with %d schema errors", len(payload.Errors))
	}
	for _, w := range payload.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Description)
	}

	if len(payload.Migration.Steps) == 0 {
		fmt.Printf("Service %s@%s is up to date\n", cfg.Service, cfg.Stage)
		return nil
	}

	verb := "Applied"
	if deployDryRun {
		verb = "Planned"
	}
	fmt.Printf("%s %d changes to %s@%s:\n", verb, len(payload.Migration.Steps), cfg.Service, cfg.Stage)
	for _, step := range payload.Migration.Steps {
		fmt.Printf("  %s %s", step.Type, step.Name)
		if step.Description != "" {
			fmt.Printf(" (%s)", step.Description)
		}
		fmt.Println()
	}

	return nil
}

func requireService(cfg *ServiceConfig) error {
	if cfg.Service == "" {
		return fmt.Errorf("no service configured; run 'graphbase init' first")
	}
	if cfg.Cluster.Endpoint == "" {
		return fmt.Errorf("no cluster endpoint configured in graphbase.yml")
	}
	if cfg.Cluster.Secret == "" {
		return fmt.Errorf("no cluster secret configured; set GRAPHBASE_CLUSTER_SECRET")
	}
	return nil
}
