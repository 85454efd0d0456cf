package datasets

type DataSet struct {
	Identifier    string
	DataSourceRef string `json:"-"`
	Format        DataSetFormat

	Provider Provider

	Source               string
	SourceAuthentication SourceAuthentication `json:"-" yaml:"sourceauthentication"`

	// Timezone the timetable times are given in, defaults to the graph timezone
	Timezone string
	// ServiceDate picks the GTFS service day as YYYY-MM-DD, empty for the busiest day
	ServiceDate string `yaml:"servicedate"`
	// Filter is an optional trip filter expression
	Filter string
}

type SourceAuthentication struct {
	Query  map[string]string
	Header map[string]string
}

type DataSetFormat string

const (
	DataSetFormatGTFSSchedule DataSetFormat = "gtfs-schedule"
	DataSetFormatTripsJSON    DataSetFormat = "trips-json"
)

type Provider struct {
	Name    string
	Website string
}
