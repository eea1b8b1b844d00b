package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServiceConfig represents the graphbase.yml service definition.
type ServiceConfig struct {
	Service string `yaml:"service"`
	Stage   string `yaml:"stage"`

	Cluster struct {
		Endpoint string `yaml:"endpoint"`
		Secret   string `yaml:"secret"`
	} `yaml:"cluster"`

	Datamodel string `yaml:"datamodel"`

	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
		Schema string `yaml:"schema"`
	} `yaml:"database"`

	Seed struct {
		File string `yaml:"file"`
	} `yaml:"seed"`
}

// LoadServiceConfig reads the service definition. With an empty path the
// conventional locations are probed; a missing definition is not an error
// so commands can decide whether they need one.
func LoadServiceConfig(path string) (*ServiceConfig, error) {
	if path == "" {
		locations := []string{"graphbase.yml", "graphbase.yaml", ".graphbase.yml", ".graphbase.yaml"}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service definition: %w", err)
	}

	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse service definition: %w", err)
	}

	if config.Stage == "" {
		config.Stage = "dev"
	}
	if config.Datamodel == "" {
		config.Datamodel = "datamodel.graphql"
	}
	if config.Database.Driver == "" {
		config.Database.Driver = "postgres"
	}
	if config.Cluster.Secret == "" {
		config.Cluster.Secret = os.Getenv("GRAPHBASE_CLUSTER_SECRET")
	}

	return &config, nil
}

// SaveServiceConfig writes a service definition to path (graphbase.yml by
// default).
func SaveServiceConfig(config *ServiceConfig, path string) error {
	if path == "" {
		path = "graphbase.yml"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal service definition: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write service definition: %w", err)
	}

	return nil
}
