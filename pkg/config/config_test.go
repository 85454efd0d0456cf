package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())

	options, err := config.Graph.Options()
	require.NoError(t, err)
	assert.Equal(t, 250.0, options.MaxTransferDistance)
	assert.Equal(t, 2, options.MinTransferTime)
	assert.Equal(t, 60, options.MaxTransferTime)
	assert.Equal(t, 32, options.TieCandidates)
	assert.True(t, options.RejectBeyondHorizon)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
graph:
  timezone: Europe/London
  min_transfer_time: PT5M
  max_transfer_time: PT20M
  reject_beyond_horizon: false
query:
  max_results: 5
`), 0o644)
	require.NoError(t, err)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/London", config.Graph.Timezone)
	assert.Equal(t, 250.0, config.Graph.MaxTransferDistance)
	assert.False(t, config.Graph.RejectBeyondHorizon)
	assert.Equal(t, 5, config.Query.MaxResults)
	assert.Equal(t, 4.0, config.Query.AccessSpeed)

	options, err := config.Graph.Options()
	require.NoError(t, err)
	assert.Equal(t, 5, options.MinTransferTime)
	assert.Equal(t, 20, options.MaxTransferTime)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero transfer distance", func(c *Config) { c.Graph.MaxTransferDistance = 0 }},
		{"inverted transfer window", func(c *Config) { c.Graph.MinTransferTime = "PT30M"; c.Graph.MaxTransferTime = "PT10M" }},
		{"sub-minute transfer window", func(c *Config) { c.Graph.MinTransferTime = "PT5M10S"; c.Graph.MaxTransferTime = "PT5M50S" }},
		{"sub-minute min transfer", func(c *Config) { c.Graph.MinTransferTime = "PT90S" }},
		{"bad duration", func(c *Config) { c.Query.Timeout = "ten seconds" }},
		{"unknown timezone", func(c *Config) { c.Graph.Timezone = "Mars/Olympus" }},
		{"no results", func(c *Config) { c.Query.MaxResults = 0 }},
		{"no listen", func(c *Config) { c.Server.Listen = "" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := Default()
			test.modify(&config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestApplyEnvironment(t *testing.T) {
	config := Default()

	err := config.ApplyEnvironment(map[string]string{
		"JOURNEYGRAPH_LISTEN":                ":9000",
		"JOURNEYGRAPH_MAX_TRANSFER_DISTANCE": "400",
	})
	require.NoError(t, err)
	assert.Equal(t, ":9000", config.Server.Listen)
	assert.Equal(t, 400.0, config.Graph.MaxTransferDistance)

	err = config.ApplyEnvironment(map[string]string{"JOURNEYGRAPH_MAX_RESULTS": "many"})
	assert.Error(t, err)
}

func TestMergeKeepsUnsetFields(t *testing.T) {
	config := Default()

	err := config.Merge(Config{
		Graph: GraphConfig{MaxTransferTime: "PT30M"},
		Query: QueryConfig{AccessSpeed: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, "PT30M", config.Graph.MaxTransferTime)
	assert.Equal(t, "PT2M", config.Graph.MinTransferTime)
	assert.Equal(t, 5.0, config.Query.AccessSpeed)
	assert.Equal(t, 250.0, config.Query.MaxAccessDistance)
	assert.Equal(t, ":8080", config.Server.Listen)
}

func TestGraphEnd(t *testing.T) {
	graph := Default().Graph
	begin := time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC)

	end, err := graph.End(begin)
	require.NoError(t, err)
	assert.Equal(t, begin.Add(24*time.Hour), end)

	graph.Horizon = ""
	end, err = graph.End(begin)
	require.NoError(t, err)
	assert.True(t, end.IsZero())
}

func TestParseDuration(t *testing.T) {
	duration, err := ParseDuration("PT1H30M")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, duration)

	_, err = ParseDuration("90 minutes")
	assert.Error(t, err)
}
