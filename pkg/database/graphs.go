package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/ctdf"
	"github.com/travigo/journeygraph/pkg/journeygraph"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrGraphNotFound = errors.New("graph not found")

// GraphRecord describes a stored graph snapshot
type GraphRecord struct {
	Name           string               `bson:"name" json:"name" groups:"basic"`
	SnapshotID     primitive.ObjectID   `bson:"snapshotid" json:"-"`
	DatasetVersion ctdf.DatasetVersion  `bson:"datasetversion" json:"dataset_version" groups:"basic"`
	Summary        journeygraph.Summary `bson:"summary" json:"summary" groups:"basic"`

	CreationDateTime time.Time `bson:"creationdatetime" json:"creation_datetime" groups:"basic"`
}

func newGraphRecord(name string, graph *journeygraph.Graph, version ctdf.DatasetVersion) *GraphRecord {
	return &GraphRecord{
		Name:             name,
		DatasetVersion:   version,
		Summary:          graph.Summary(),
		CreationDateTime: time.Now(),
	}
}

func bucket() (*gridfs.Bucket, error) {
	return gridfs.NewBucket(MongoGlobalInstance.Database, options.GridFSBucket().SetName(graphsBucket))
}

// SaveGraph stores a snapshot of the graph in GridFS under name, replacing any
// earlier snapshot with the same name.
func SaveGraph(ctx context.Context, name string, graph *journeygraph.Graph, version ctdf.DatasetVersion) (*GraphRecord, error) {
	startTime := time.Now()

	var buffer bytes.Buffer
	if err := graph.WriteSnapshot(&buffer); err != nil {
		return nil, err
	}
	size := buffer.Len()

	snapshots, err := bucket()
	if err != nil {
		return nil, err
	}

	snapshotID, err := snapshots.UploadFromStream(name, &buffer, options.GridFSUpload().SetMetadata(version))
	if err != nil {
		return nil, err
	}

	record := newGraphRecord(name, graph, version)
	record.SnapshotID = snapshotID

	bsonRep, _ := bson.Marshal(bson.M{"$set": record})
	_, err = GetCollection(graphsCollection).UpdateOne(ctx, bson.M{"name": name}, bsonRep, options.Update().SetUpsert(true))
	if err != nil {
		return nil, err
	}

	if err := deleteOldSnapshots(ctx, snapshots, name, snapshotID); err != nil {
		log.Error().Err(err).Str("name", name).Msg("Failed to remove old graph snapshots")
	}

	log.Info().
		Str("name", name).
		Int("bytes", size).
		Str("Length", time.Since(startTime).String()).
		Msg("Saved graph snapshot")

	return record, nil
}

func deleteOldSnapshots(ctx context.Context, snapshots *gridfs.Bucket, name string, keep primitive.ObjectID) error {
	cursor, err := snapshots.FindContext(ctx, bson.M{"filename": name, "_id": bson.M{"$ne": keep}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var file struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			return err
		}

		if err := snapshots.DeleteContext(ctx, file.ID); err != nil {
			return err
		}
	}

	return cursor.Err()
}

func GetGraphRecord(ctx context.Context, name string) (*GraphRecord, error) {
	var record GraphRecord
	err := GetCollection(graphsCollection).FindOne(ctx, bson.M{"name": name}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	} else if err != nil {
		return nil, err
	}

	return &record, nil
}

// LoadGraph restores the latest snapshot stored under name
func LoadGraph(ctx context.Context, name string) (*journeygraph.Graph, *GraphRecord, error) {
	startTime := time.Now()

	record, err := GetGraphRecord(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	snapshots, err := bucket()
	if err != nil {
		return nil, nil, err
	}

	stream, err := snapshots.OpenDownloadStream(record.SnapshotID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, nil, fmt.Errorf("%w: snapshot for %s", ErrGraphNotFound, name)
	} else if err != nil {
		return nil, nil, err
	}
	defer stream.Close()

	graph, err := journeygraph.ReadSnapshot(stream)
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Str("name", name).
		Int("vertices", graph.VertexCount()).
		Str("Length", time.Since(startTime).String()).
		Msg("Loaded graph snapshot")

	return graph, record, nil
}

// ListGraphs returns every stored graph record ordered by name
func ListGraphs(ctx context.Context) ([]*GraphRecord, error) {
	cursor, err := GetCollection(graphsCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}

	records := []*GraphRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}
