package database

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"

	"github.com/travigo/journeygraph/pkg/ctdf"
	"github.com/travigo/journeygraph/pkg/journeygraph"
)

// OpenGraph loads a graph from a snapshot file when file is set, otherwise
// from the snapshot stored in MongoDB under name. Connects to MongoDB on
// demand.
func OpenGraph(ctx context.Context, file string, name string) (*journeygraph.Graph, *GraphRecord, error) {
	if file != "" {
		return openGraphFile(file)
	}

	if name == "" {
		return nil, nil, errors.New("a graph file or stored graph name is required")
	}

	if MongoGlobalInstance == nil {
		if err := Connect(ctx); err != nil {
			return nil, nil, err
		}
	}

	return LoadGraph(ctx, name)
}

// openGraphFile versions a file-backed graph by the hash of the snapshot so
// a rebuilt file never shares plan cache entries with the previous one
func openGraphFile(path string) (*journeygraph.Graph, *GraphRecord, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	graph, err := journeygraph.ReadSnapshot(bytes.NewReader(contents))
	if err != nil {
		return nil, nil, err
	}

	hash := sha256.Sum256(contents)
	version := ctdf.DatasetVersion{
		Dataset: path,
		Hash:    hex.EncodeToString(hash[:]),
	}

	record := newGraphRecord(path, graph, version)
	if info, err := os.Stat(path); err == nil {
		record.DatasetVersion.LastModified = info.ModTime()
		record.CreationDateTime = info.ModTime()
	}

	return graph, record, nil
}
