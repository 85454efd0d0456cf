package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var MongoGlobalInstance *MongoInstance

const defaultMongoConnectionString = "mongodb://localhost:27017/"
const defaultMongoDatabase = "journeygraph"

func Connect(ctx context.Context) error {
	connectionString := defaultMongoConnectionString
	dbName := defaultMongoDatabase

	env := util.GetEnvironmentVariables()

	if env["JOURNEYGRAPH_MONGODB_CONNECTION"] != "" {
		connectionString = env["JOURNEYGRAPH_MONGODB_CONNECTION"]
	}

	if env["JOURNEYGRAPH_MONGODB_DATABASE"] != "" {
		dbName = env["JOURNEYGRAPH_MONGODB_DATABASE"]
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	retry := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), connectCtx)
	err = backoff.RetryNotify(func() error {
		return client.Ping(connectCtx, nil)
	}, retry, func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("wait", wait.String()).Msg("MongoDB not reachable yet")
	})
	if err != nil {
		return err
	}

	MongoGlobalInstance = &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}

	if err := createIndexes(ctx); err != nil {
		return err
	}

	log.Info().Str("database", dbName).Msg("Connected to MongoDB")

	return nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}

func Disconnect(ctx context.Context) error {
	if MongoGlobalInstance == nil {
		return nil
	}
	return MongoGlobalInstance.Client.Disconnect(ctx)
}
