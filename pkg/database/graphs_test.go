package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeygraph/pkg/ctdf"
	"github.com/travigo/journeygraph/pkg/journeygraph"
	"go.mongodb.org/mongo-driver/bson"
)

func TestGraphRecordEncoding(t *testing.T) {
	begin := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	graph := journeygraph.NewGraph(begin, begin.Add(24*time.Hour), journeygraph.DefaultOptions())

	version := ctdf.DatasetVersion{Dataset: "example-gtfs", Hash: "abc123", LastModified: begin}
	record := newGraphRecord("example", graph, version)

	encoded, err := bson.Marshal(record)
	require.NoError(t, err)

	var decoded GraphRecord
	require.NoError(t, bson.Unmarshal(encoded, &decoded))

	assert.Equal(t, "example", decoded.Name)
	assert.Equal(t, "abc123", decoded.DatasetVersion.Hash)
	assert.True(t, decoded.Summary.Begin.Equal(begin))
	assert.Zero(t, decoded.Summary.Vertices)
}

func TestOpenGraphFileVersion(t *testing.T) {
	begin := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "graph.bson")

	first := journeygraph.NewGraph(begin, begin.Add(24*time.Hour), journeygraph.DefaultOptions())
	require.NoError(t, first.SaveFile(path))

	_, record, err := OpenGraph(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, path, record.DatasetVersion.Dataset)
	assert.Len(t, record.DatasetVersion.Hash, 64)
	assert.False(t, record.DatasetVersion.LastModified.IsZero())

	_, reopened, err := OpenGraph(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, record.DatasetVersion.Hash, reopened.DatasetVersion.Hash)

	// a rebuilt snapshot gets a new version
	rebuilt := journeygraph.NewGraph(begin, begin.Add(48*time.Hour), journeygraph.DefaultOptions())
	require.NoError(t, rebuilt.SaveFile(path))

	graph, changed, err := OpenGraph(context.Background(), path, "")
	require.NoError(t, err)
	assert.NotEqual(t, record.DatasetVersion.Hash, changed.DatasetVersion.Hash)
	assert.True(t, graph.End().Equal(begin.Add(48*time.Hour)))
}
