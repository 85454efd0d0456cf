package manager

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/dataimporter/datasets"
	"gopkg.in/yaml.v3"
)

var ErrDatasetNotFound = errors.New("dataset could not be found")

// GetRegisteredDataSets reads every datasource yaml file under directory.
// A file may hold several datasources as separate yaml documents.
func GetRegisteredDataSets(directory string) ([]datasets.DataSet, error) {
	var registeredDatasets []datasets.DataSet

	err := filepath.Walk(directory,
		func(path string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fileInfo.IsDir() || filepath.Ext(path) != ".yaml" {
				return nil
			}

			log.Debug().Str("path", path).Msg("Loading datasources file")

			datasourceYaml, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			decoder := yaml.NewDecoder(bytes.NewReader(datasourceYaml))

			for {
				var datasource datasets.DataSource
				err := decoder.Decode(&datasource)
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				for _, dataset := range datasource.Datasets {
					dataset.Identifier = fmt.Sprintf("%s-%s", datasource.Identifier, dataset.Identifier)
					dataset.DataSourceRef = datasource.Identifier
					dataset.Provider = datasource.Provider

					if datasource.SourceAuthentication != nil && dataset.SourceAuthentication.Header == nil && dataset.SourceAuthentication.Query == nil {
						dataset.SourceAuthentication = *datasource.SourceAuthentication
					}

					registeredDatasets = append(registeredDatasets, dataset)
				}
			}

			return nil
		})
	if err != nil {
		return nil, err
	}

	return registeredDatasets, nil
}

func GetDataset(directory string, identifier string) (datasets.DataSet, error) {
	registered, err := GetRegisteredDataSets(directory)
	if err != nil {
		return datasets.DataSet{}, err
	}

	for _, dataset := range registered {
		if dataset.Identifier == identifier {
			return dataset, nil
		}
	}

	return datasets.DataSet{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, identifier)
}
