package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const graphsCollection = "graphs"
const graphsBucket = "graphsnapshots"

func createIndexes(ctx context.Context) error {
	graphsIndex := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "datasetversion.dataset", Value: 1}},
		},
	}

	_, err := GetCollection(graphsCollection).Indexes().CreateMany(ctx, graphsIndex, options.CreateIndexes())
	return err
}
