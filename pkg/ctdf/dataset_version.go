package ctdf

import "time"

// DatasetVersion describes the feed a stored graph was built from
type DatasetVersion struct {
	Dataset      string    `bson:"dataset" json:"dataset" groups:"basic"`
	Hash         string    `bson:"hash" json:"hash" groups:"basic"`
	LastModified time.Time `bson:"lastmodified" json:"last_modified" groups:"basic"`
}
