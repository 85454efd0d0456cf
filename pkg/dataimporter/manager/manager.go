package manager

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/ctdf"
	"github.com/travigo/journeygraph/pkg/dataimporter/datasets"
	"github.com/travigo/journeygraph/pkg/dataimporter/formats"
	"github.com/travigo/journeygraph/pkg/dataimporter/formats/gtfs"
	"github.com/travigo/journeygraph/pkg/dataimporter/formats/tripsjson"
	"github.com/travigo/journeygraph/pkg/util"
)

func NewFormat(format datasets.DataSetFormat) (formats.Format, error) {
	switch format {
	case datasets.DataSetFormatGTFSSchedule:
		return &gtfs.Schedule{}, nil
	case datasets.DataSetFormatTripsJSON:
		return &tripsjson.Timetable{}, nil
	default:
		return nil, fmt.Errorf("unrecognised format %s", format)
	}
}

// LoadDataset downloads (when the source is a URL) and parses a dataset into
// trips. The returned version identifies the exact file contents.
func LoadDataset(ctx context.Context, dataset datasets.DataSet, location *time.Location) ([][]ctdf.TripRecord, ctdf.DatasetVersion, error) {
	startTime := time.Now()
	version := ctdf.DatasetVersion{Dataset: dataset.Identifier}

	format, err := NewFormat(dataset.Format)
	if err != nil {
		return nil, version, err
	}

	if location == nil {
		location = time.UTC
	}
	if dataset.Timezone != "" {
		location, err = time.LoadLocation(dataset.Timezone)
		if err != nil {
			return nil, version, err
		}
	}

	options := formats.ConvertOptions{Location: location}
	if dataset.ServiceDate != "" {
		options.ServiceDate, err = time.ParseInLocation(time.DateOnly, dataset.ServiceDate, location)
		if err != nil {
			return nil, version, fmt.Errorf("invalid service date: %w", err)
		}
	}

	source := dataset.Source
	if isValidUrl(dataset.Source) {
		tempFile, lastModified, err := tempDownloadFile(ctx, dataset.Source, dataset.SourceAuthentication)
		if err != nil {
			return nil, version, err
		}
		defer os.Remove(tempFile)

		source = tempFile
		version.LastModified = lastModified
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, version, err
	}
	defer file.Close()

	if version.LastModified.IsZero() {
		if info, err := file.Stat(); err == nil {
			version.LastModified = info.ModTime()
		}
	}

	hash := sha256.New()
	if err := format.ParseFile(io.TeeReader(file, hash)); err != nil {
		return nil, version, err
	}
	// Parsers may stop before EOF
	if _, err := io.Copy(hash, file); err != nil {
		return nil, version, err
	}
	version.Hash = hex.EncodeToString(hash.Sum(nil))

	trips, err := format.Trips(options)
	if err != nil {
		return nil, version, err
	}

	log.Info().
		Str("dataset", dataset.Identifier).
		Str("hash", version.Hash).
		Int("trips", len(trips)).
		Str("Length", time.Since(startTime).String()).
		Msg("Loaded dataset")

	return trips, version, nil
}

func isValidUrl(toTest string) bool {
	_, err := url.ParseRequestURI(toTest)
	if err != nil {
		return false
	}

	u, err := url.Parse(toTest)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}

func tempDownloadFile(ctx context.Context, source string, authentication datasets.SourceAuthentication) (string, time.Time, error) {
	env := util.GetEnvironmentVariables()

	sourceURL, err := url.Parse(source)
	if err != nil {
		return "", time.Time{}, err
	}

	// Authentication values name environment variables so secrets stay out of the yaml
	query := sourceURL.Query()
	for key, variable := range authentication.Query {
		query.Set(key, env[variable])
	}
	sourceURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL.String(), nil)
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("User-Agent", "curl/7.54.1")
	for key, variable := range authentication.Header {
		req.Header.Set(key, env[variable])
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("download %s: unexpected status %s", sourceURL.Redacted(), resp.Status)
	}

	fileExtension := filepath.Ext(sourceURL.Path)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		fileExtension = filepath.Ext(params["filename"])
	}

	tmpFile, err := os.CreateTemp(os.TempDir(), "journeygraph-data-importer-*"+fileExtension)
	if err != nil {
		return "", time.Time{}, err
	}
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		os.Remove(tmpFile.Name())
		return "", time.Time{}, err
	}

	lastModified, err := http.ParseTime(resp.Header.Get("Last-Modified"))
	if err != nil {
		lastModified = time.Now()
	}

	log.Debug().Str("source", sourceURL.Redacted()).Str("file", tmpFile.Name()).Msg("Downloaded dataset")

	return tmpFile.Name(), lastModified, nil
}
