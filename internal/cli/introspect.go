package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/graphbase-io/graphbase/internal/introspect"
	"github.com/graphbase-io/graphbase/internal/logger"
)

var (
	introspectDBURL  string
	introspectDriver string
	introspectSchema string
	introspectOutput string
)

var introspectCmd = &cobra.Command{
	Use:   "introspect",
	Short: "Introspect a relational database into an SDL datamodel",
	Long: `Connects to a live relational database, discovers tables, columns, keys
and relations, and emits the equivalent SDL datamodel.

Junction tables holding nothing but two foreign keys are collapsed into
many-to-many relation fields; every other foreign key becomes an inline
relation field with a matching back-reference.`,
	RunE: runIntrospect,
}

func init() {
	introspectCmd.Flags().StringVarP(&introspectDBURL, "database", "d", "", "Database connection URL (default: from graphbase.yml)")
	introspectCmd.Flags().StringVar(&introspectDriver, "driver", "", "Database driver: postgres, mysql (default: from graphbase.yml)")
	introspectCmd.Flags().StringVarP(&introspectSchema, "schema", "s", "", "Database schema to introspect")
	introspectCmd.Flags().StringVarP(&introspectOutput, "output", "o", "", "Output file (default: stdout)")
}

func runIntrospect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := config()
	dbURL := introspectDBURL
	if dbURL == "" {
		dbURL = cfg.Database.URL
	}
	if dbURL == "" {
		return fmt.Errorf("no database URL configured; pass --database or set database.url in graphbase.yml")
	}
	driver := introspectDriver
	if driver == "" {
		driver = cfg.Database.Driver
	}
	schema := introspectSchema
	if schema == "" {
		schema = cfg.Database.Schema
	}

	result, err := introspect.IntrospectDatabase(ctx, driver, dbURL, schema)
	if errors.Is(err, introspect.ErrEmptySchema) {
		return fmt.Errorf("nothing to introspect: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to introspect database: %w", err)
	}

	for _, w := range result.Warnings {
		logger.CLI().Warn("%s: %s", w.Table, w.Message)
	}

	if introspectOutput != "" {
		if err := os.WriteFile(introspectOutput, []byte(result.SDL), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Datamodel written to %s (%d tables)\n", introspectOutput, result.TableCount)
		return nil
	}

	fmt.Print(result.SDL)
	fmt.Fprintf(os.Stderr, "\nIntrospected %d tables\n", result.TableCount)
	return nil
}
