package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDeploy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/management", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		auth := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(auth, "Bearer "))
		claims, err := VerifyToken(strings.TrimPrefix(auth, "Bearer "), "secret")
		require.NoError(t, err)
		assert.Equal(t, "blog", claims.Service)
		assert.Equal(t, "prod", claims.Stage)

		var req struct {
			Query     string `json:"query"`
			Variables struct {
				Input DeployInput `json:"input"`
			} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "deploy(input: $input)")
		assert.Equal(t, "blog", req.Variables.Input.Service)
		assert.Equal(t, "type User {\n  id: ID! @id\n}\n", req.Variables.Input.DataModel)
		assert.True(t, req.Variables.Input.DryRun)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"deploy": {
			"errors": [],
			"warnings": [{"description": "column rename assumed"}],
			"migration": {"steps": [{"type": "CreateType", "name": "User"}]}
		}}}`))
	}))
	defer server.Close()

	c := New(server.URL, "secret")
	payload, err := c.Deploy(context.Background(), DeployInput{
		Service:   "blog",
		Stage:     "prod",
		DataModel: "type User {\n  id: ID! @id\n}\n",
		DryRun:    true,
	})
	require.NoError(t, err)

	assert.Empty(t, payload.Errors)
	require.Len(t, payload.Warnings, 1)
	assert.Equal(t, "column rename assumed", payload.Warnings[0].Description)
	require.Len(t, payload.Migration.Steps, 1)
	assert.Equal(t, "CreateType", payload.Migration.Steps[0].Type)
	assert.Equal(t, "User", payload.Migration.Steps[0].Name)
}

func TestClientGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors": [{"message": "service not found"}, {"message": "token expired"}]}`))
	}))
	defer server.Close()

	c := New(server.URL, "secret")
	err := c.Delete(context.Background(), "blog", "prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service not found")
	assert.Contains(t, err.Error(), "token expired")
}

func TestClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(server.URL, "secret")
	_, err := c.Deploy(context.Background(), DeployInput{Service: "blog", Stage: "prod"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestClientSeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				Input SeedInput `json:"input"`
			} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Alice", req.Variables.Input.Records["User"][0]["name"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"seed": {"count": 2}}}`))
	}))
	defer server.Close()

	c := New(server.URL, "secret")
	count, err := c.Seed(context.Background(), SeedInput{
		Service: "blog",
		Stage:   "dev",
		Records: map[string][]map[string]string{
			"User": {{"name": "Alice"}, {"name": "Bob"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestClientTrimsEndpointSlash(t *testing.T) {
	c := New("https://api.example.com/", "secret")
	assert.Equal(t, "https://api.example.com", c.endpoint)
}
