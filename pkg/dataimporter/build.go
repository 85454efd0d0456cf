package dataimporter

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/config"
	"github.com/travigo/journeygraph/pkg/ctdf"
	"github.com/travigo/journeygraph/pkg/dataimporter/datasets"
	"github.com/travigo/journeygraph/pkg/dataimporter/manager"
	"github.com/travigo/journeygraph/pkg/journeygraph"
)

type BuildRequest struct {
	Dataset datasets.DataSet
	// Begin of the graph, zero starts at midnight of the first trip
	Begin time.Time
	// Filter replaces the dataset filter when set
	Filter string
}

type BuildResult struct {
	Graph   *journeygraph.Graph
	Report  journeygraph.BuildReport
	Version ctdf.DatasetVersion
	Window  Window

	Filtered      int
	OutsideWindow int
}

// Build loads a dataset and turns it into a journey graph
func Build(ctx context.Context, cfg config.Config, request BuildRequest) (*BuildResult, error) {
	location, err := cfg.Graph.Location()
	if err != nil {
		return nil, err
	}
	options, err := cfg.Graph.Options()
	if err != nil {
		return nil, err
	}

	expression := request.Dataset.Filter
	if request.Filter != "" {
		expression = request.Filter
	}
	var filter *TripFilter
	if expression != "" {
		if filter, err = NewTripFilter(expression); err != nil {
			return nil, err
		}
	}

	trips, version, err := manager.LoadDataset(ctx, request.Dataset, location)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{Version: version}

	loaded := len(trips)
	if trips, err = filter.Apply(trips); err != nil {
		return nil, err
	}
	result.Filtered = loaded - len(trips)

	if request.Begin.IsZero() {
		result.Window, err = WindowFor(trips, location, cfg.Graph.End)
	} else {
		result.Window, err = NewWindow(request.Begin, cfg.Graph.End)
	}
	if err != nil {
		return nil, err
	}
	result.OutsideWindow = result.Window.Apply(&trips)

	log.Info().
		Str("dataset", request.Dataset.Identifier).
		Time("begin", result.Window.Begin).
		Time("end", result.Window.End).
		Int("filtered", result.Filtered).
		Int("outside", result.OutsideWindow).
		Int("trips", len(trips)).
		Msg("Building graph")

	result.Graph, result.Report, err = journeygraph.BuildGraph(result.Window.Begin, result.Window.End, trips, options)
	if err != nil {
		return nil, err
	}

	return result, nil
}
