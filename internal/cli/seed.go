package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/graphbase-io/graphbase/internal/client"
	"github.com/graphbase-io/graphbase/internal/logger"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import seed records into the service stage",
	Long: `Reads a YAML file mapping type names to lists of records and imports them
through the management API. The seed file defaults to seed.file in
graphbase.yml.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed file (default: seed.file from graphbase.yml)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := config()
	if err := requireService(cfg); err != nil {
		return err
	}

	path := seedFile
	if path == "" {
		path = cfg.Seed.File
	}
	if path == "" {
		return fmt.Errorf("no seed file configured; pass --file or set seed.file in graphbase.yml")
	}

	records, err := loadSeedFile(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("seed file %s contains no records", path)
	}

	total := 0
	for name, rows := range records {
		logger.CLI().Debug("seeding %d %s records", len(rows), name)
		total += len(rows)
	}

	api := client.New(cfg.Cluster.Endpoint, cfg.Cluster.Secret)
	count, err := api.Seed(ctx, client.SeedInput{
		Service: cfg.Service,
		Stage:   cfg.Stage,
		Records: records,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d of %d records into %s@%s\n", count, total, cfg.Service, cfg.Stage)
	return nil
}

// loadSeedFile parses a YAML document of the form:
//
//	User:
//	  - name: Alice
//	    age: 30
//
// Scalar values are coerced to strings; the engine casts them against the
// deployed datamodel.
func loadSeedFile(path string) (map[string][]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var raw map[string][]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	records := make(map[string][]map[string]string, len(raw))
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rows := make([]map[string]string, 0, len(raw[name]))
		for i, row := range raw[name] {
			rec := make(map[string]string, len(row))
			for field, value := range row {
				s, err := cast.ToStringE(value)
				if err != nil {
					return nil, fmt.Errorf("seed record %s[%d].%s has a non-scalar value", name, i, field)
				}
				rec[field] = s
			}
			rows = append(rows, rec)
		}
		records[name] = rows
	}

	return records, nil
}
