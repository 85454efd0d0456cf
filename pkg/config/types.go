package config

// GraphConfig controls how the time-expanded graph is built. Durations are
// ISO8601 strings such as PT5M.
type GraphConfig struct {
	Timezone string `yaml:"timezone"`
	// Horizon is added to the graph begin to give its end, empty for no end
	Horizon string `yaml:"horizon"`

	MaxTransferDistance float64 `yaml:"max_transfer_distance" validate:"gt=0"`
	MinTransferTime     string  `yaml:"min_transfer_time" validate:"required"`
	MaxTransferTime     string  `yaml:"max_transfer_time" validate:"required"`

	TieCandidates       int  `yaml:"tie_candidates" validate:"gte=1"`
	RejectBeyondHorizon bool `yaml:"reject_beyond_horizon"`
}

// QueryConfig holds the defaults applied to journey planning requests
type QueryConfig struct {
	MaxResults        int     `yaml:"max_results" validate:"gte=1,lte=100"`
	MaxAccessDistance float64 `yaml:"max_access_distance" validate:"gt=0"`
	// AccessSpeed is the walking speed in km/h
	AccessSpeed float64 `yaml:"access_speed" validate:"gt=0"`

	Timeout         string `yaml:"timeout" validate:"required"`
	CacheExpiration string `yaml:"cache_expiration" validate:"required"`
}

type ServerConfig struct {
	Listen string `yaml:"listen" validate:"required"`
}

type Config struct {
	Graph  GraphConfig  `yaml:"graph" validate:"required"`
	Query  QueryConfig  `yaml:"query" validate:"required"`
	Server ServerConfig `yaml:"server" validate:"required"`

	// Datasources is the directory holding dataset definition files
	Datasources string `yaml:"datasources"`
}
