package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/graphbase-io/graphbase/internal/client"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the configured service stage from the cluster",
	Long: `Removes the service stage and all of its data from the cluster. This is
irreversible, so --force is required.`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Confirm deletion of the service stage and its data")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := config()
	if err := requireService(cfg); err != nil {
		return err
	}

	if !deleteForce {
		return fmt.Errorf("deleting %s@%s destroys all of its data; re-run with --force to confirm", cfg.Service, cfg.Stage)
	}

	api := client.New(cfg.Cluster.Endpoint, cfg.Cluster.Secret)
	if err := api.Delete(ctx, cfg.Service, cfg.Stage); err != nil {
		return err
	}

	fmt.Printf("Deleted service %s@%s\n", cfg.Service, cfg.Stage)
	return nil
}
