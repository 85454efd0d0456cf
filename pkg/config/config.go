package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/journeygraph/pkg/journeygraph"
	"github.com/travigo/journeygraph/pkg/util"
	"gopkg.in/yaml.v3"

	_ "time/tzdata"
)

const environmentPrefix = "JOURNEYGRAPH_"

var durationReference = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func Default() Config {
	return Config{
		Graph: GraphConfig{
			Timezone:            "UTC",
			Horizon:             "P1D",
			MaxTransferDistance: 250,
			MinTransferTime:     "PT2M",
			MaxTransferTime:     "PT60M",
			TieCandidates:       32,
			RejectBeyondHorizon: true,
		},
		Query: QueryConfig{
			MaxResults:        3,
			MaxAccessDistance: 250,
			AccessSpeed:       4,
			Timeout:           "PT10S",
			CacheExpiration:   "PT5M",
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
		Datasources: "data/datasources/",
	}
}

// Load reads a YAML config on top of the defaults, applies environment
// overrides and validates the result. An empty path only uses defaults.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}

		log.Debug().Str("path", path).Msg("Loaded config file")
	}

	if err := config.ApplyEnvironment(util.GetEnvironmentVariables()); err != nil {
		return Config{}, err
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// ApplyEnvironment overrides settings from JOURNEYGRAPH_* variables
func (c *Config) ApplyEnvironment(env map[string]string) error {
	if value := env[environmentPrefix+"LISTEN"]; value != "" {
		c.Server.Listen = value
	}
	if value := env[environmentPrefix+"TIMEZONE"]; value != "" {
		c.Graph.Timezone = value
	}
	if value := env[environmentPrefix+"DATASOURCES"]; value != "" {
		c.Datasources = value
	}
	if value := env[environmentPrefix+"MAX_TRANSFER_DISTANCE"]; value != "" {
		distance, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_TRANSFER_DISTANCE: %w", environmentPrefix, err)
		}
		c.Graph.MaxTransferDistance = distance
	}
	if value := env[environmentPrefix+"MAX_RESULTS"]; value != "" {
		results, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%sMAX_RESULTS: %w", environmentPrefix, err)
		}
		c.Query.MaxResults = results
	}

	return nil
}

// Merge copies every non-empty field of overrides into the config
func (c *Config) Merge(overrides Config) error {
	return copier.CopyWithOption(c, overrides, copier.Option{IgnoreEmpty: true, DeepCopy: true})
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if _, err := c.Graph.Location(); err != nil {
		return err
	}
	if _, err := c.Graph.Options(); err != nil {
		return err
	}
	if c.Graph.Horizon != "" {
		if _, err := ParseDuration(c.Graph.Horizon); err != nil {
			return err
		}
	}
	if _, err := c.Query.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Query.CacheExpirationDuration(); err != nil {
		return err
	}

	return nil
}

// ParseDuration converts an ISO8601 duration to a time.Duration. Calendar
// units are measured from a fixed reference date.
func ParseDuration(value string) (time.Duration, error) {
	duration, err := iso8601.ParseISO8601(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}

	return duration.Shift(durationReference).Sub(durationReference), nil
}

// wholeMinutes parses a duration that the graph can represent, which only
// counts whole minutes
func wholeMinutes(value string) (int, error) {
	duration, err := ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if duration%time.Minute != 0 {
		return 0, fmt.Errorf("duration %s is not a whole number of minutes", value)
	}

	return int(duration / time.Minute), nil
}

func (g GraphConfig) Location() (*time.Location, error) {
	return time.LoadLocation(g.Timezone)
}

// Options converts the config into graph options
func (g GraphConfig) Options() (journeygraph.Options, error) {
	minTransfer, err := wholeMinutes(g.MinTransferTime)
	if err != nil {
		return journeygraph.Options{}, err
	}
	maxTransfer, err := wholeMinutes(g.MaxTransferTime)
	if err != nil {
		return journeygraph.Options{}, err
	}
	if minTransfer >= maxTransfer {
		return journeygraph.Options{}, fmt.Errorf("min transfer time %s must be below max transfer time %s", g.MinTransferTime, g.MaxTransferTime)
	}

	return journeygraph.Options{
		MaxTransferDistance: g.MaxTransferDistance,
		MinTransferTime:     minTransfer,
		MaxTransferTime:     maxTransfer,
		TieCandidates:       g.TieCandidates,
		RejectBeyondHorizon: g.RejectBeyondHorizon,
	}, nil
}

// End returns the graph end for a given begin, or the zero time without a horizon
func (g GraphConfig) End(begin time.Time) (time.Time, error) {
	if g.Horizon == "" {
		return time.Time{}, nil
	}

	horizon, err := iso8601.ParseISO8601(g.Horizon)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid horizon %q: %w", g.Horizon, err)
	}

	return horizon.Shift(begin), nil
}

func (q QueryConfig) TimeoutDuration() (time.Duration, error) {
	return ParseDuration(q.Timeout)
}

func (q QueryConfig) CacheExpirationDuration() (time.Duration, error) {
	return ParseDuration(q.CacheExpiration)
}
