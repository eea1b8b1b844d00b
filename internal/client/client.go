// Package client talks to the hosted service's management API. Every call
// is a GraphQL mutation over HTTP authorized by a signed service token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/graphbase-io/graphbase/internal/logger"
)

// Client is a management-API client bound to one cluster endpoint.
type Client struct {
	endpoint string
	secret   string
	http     *http.Client
}

// New builds a client for the given cluster endpoint. The secret signs the
// per-request service tokens.
func New(endpoint, secret string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		secret:   secret,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// SchemaError is a datamodel problem reported by the remote deploy engine.
type SchemaError struct {
	Description string `json:"description"`
}

// MigrationStep is one applied change in a remote migration.
type MigrationStep struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DeployInput describes a deploy request.
type DeployInput struct {
	Service   string `json:"name"`
	Stage     string `json:"stage"`
	DataModel string `json:"types"`
	DryRun    bool   `json:"dryRun"`
	Force     bool   `json:"force"`
}

// DeployPayload is the deploy mutation result.
type DeployPayload struct {
	Errors    []SchemaError `json:"errors"`
	Warnings  []SchemaError `json:"warnings"`
	Migration struct {
		Steps []MigrationStep `json:"steps"`
	} `json:"migration"`
}

const deployMutation = `mutation Deploy($input: DeployInput!) {
  deploy(input: $input) {
    errors { description }
    warnings { description }
    migration { steps { type name description } }
  }
}`

// Deploy pushes a datamodel to the service stage and returns the remote
// migration summary. Schema errors reported by the engine do not fail the
// call; callers inspect the payload.
func (c *Client) Deploy(ctx context.Context, input DeployInput) (*DeployPayload, error) {
	var out struct {
		Deploy DeployPayload `json:"deploy"`
	}
	vars := map[string]interface{}{"input": input}
	if err := c.do(ctx, input.Service, input.Stage, deployMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("deploy failed: %w", err)
	}
	return &out.Deploy, nil
}

const deleteMutation = `mutation Delete($input: DeleteServiceInput!) {
  deleteService(input: $input) { id }
}`

// Delete removes a service stage from the cluster.
func (c *Client) Delete(ctx context.Context, service, stage string) error {
	vars := map[string]interface{}{
		"input": map[string]interface{}{"name": service, "stage": stage},
	}
	if err := c.do(ctx, service, stage, deleteMutation, vars, nil); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// SeedInput describes a seed request: records per type name.
type SeedInput struct {
	Service string                         `json:"name"`
	Stage   string                         `json:"stage"`
	Records map[string][]map[string]string `json:"records"`
}

const seedMutation = `mutation Seed($input: SeedInput!) {
  seed(input: $input) { count }
}`

// Seed imports records into the service stage and returns how many were
// written.
func (c *Client) Seed(ctx context.Context, input SeedInput) (int, error) {
	var out struct {
		Seed struct {
			Count int `json:"count"`
		} `json:"seed"`
	}
	vars := map[string]interface{}{"input": input}
	if err := c.do(ctx, input.Service, input.Stage, seedMutation, vars, &out); err != nil {
		return 0, fmt.Errorf("seed failed: %w", err)
	}
	return out.Seed.Count, nil
}

func (c *Client) do(ctx context.Context, service, stage, query string, variables map[string]interface{}, out interface{}) error {
	token, err := SignToken(c.secret, service, stage, DefaultTokenTTL)
	if err != nil {
		return err
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/management", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	logger.Client().Debug("POST %s/management (%s@%s)", c.endpoint, service, stage)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("management API returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var gr graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gr.Errors) > 0 {
		messages := make([]string, len(gr.Errors))
		for i, e := range gr.Errors {
			messages[i] = e.Message
		}
		return fmt.Errorf("management API error: %s", strings.Join(messages, "; "))
	}

	if out != nil {
		if err := json.Unmarshal(gr.Data, out); err != nil {
			return fmt.Errorf("failed to decode payload: %w", err)
		}
	}
	return nil
}
