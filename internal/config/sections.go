package config

// IngestConfig configures spreadsheet extraction.
type IngestConfig struct {
	// Marker is the first province name, used to find where data starts.
	Marker   string         `yaml:"marker"`
	ScanRows int            `yaml:"scan_rows"`
	Sources  []SourceConfig `yaml:"sources"`
}

// SourceConfig is one raw export. Columns overrides positional column
// indexes for the marital and dependency extractors.
type SourceConfig struct {
	Kind    string         `yaml:"kind"` // household, marital, dependency, median_age, population
	Path    string         `yaml:"path"`
	Sheet   string         `yaml:"sheet,omitempty"`
	Year    string         `yaml:"year,omitempty"`
	Output  string         `yaml:"output"`
	Columns map[string]int `yaml:"columns,omitempty"`
}

// MergeConfig joins validated CSVs into the feature table.
type MergeConfig struct {
	Inputs  []MergeInput `yaml:"inputs"`
	How     string       `yaml:"how"` // inner or outer
	Columns []string     `yaml:"columns"`
	Output  string       `yaml:"output"`
}

type MergeInput struct {
	Path   string            `yaml:"path"`
	Rename map[string]string `yaml:"rename,omitempty"`
	// LatestYear renames the newest 20xx column to this name.
	LatestYear string `yaml:"latest_year,omitempty"`
}

// LabelRule names a cluster when its mean of Feature is above (">") or
// below ("<") Threshold. Within one feature the first matching rule wins.
type LabelRule struct {
	Feature   string  `yaml:"feature"`
	Op        string  `yaml:"op"`
	Threshold float64 `yaml:"threshold"`
	Label     string  `yaml:"label"`
}

// ReportConfig configures report outputs.
type ReportConfig struct {
	Title       string      `yaml:"title"`
	TextTitle   string      `yaml:"text_title"`
	Markdown    string      `yaml:"markdown"`
	Text        string      `yaml:"text"`
	Workbook    string      `yaml:"workbook"`
	Assignments string      `yaml:"assignments"`
	Rules       []LabelRule `yaml:"rules"`
}

type ScatterConfig struct {
	X string `yaml:"x"`
	Y string `yaml:"y"`
	// LabelAbove labels points whose Y exceeds this value.
	LabelAbove *float64 `yaml:"label_above,omitempty"`
}

// ChartsConfig configures the PDF chart report.
type ChartsConfig struct {
	Output     string          `yaml:"output"`
	Rankings   []string        `yaml:"rankings"`
	TopN       int             `yaml:"top_n"`
	Histograms []string        `yaml:"histograms"`
	Bins       int             `yaml:"bins"`
	Scatter    []ScatterConfig `yaml:"scatter"`
}

// MapConfig configures the choropleth map.
type MapConfig struct {
	GeoJSON      []string          `yaml:"geojson"`
	NameProperty string            `yaml:"name_property"`
	Aliases      map[string]string `yaml:"aliases"`
	Colors       []string          `yaml:"colors"`
	Tooltip      []string          `yaml:"tooltip"`
	Center       [2]float64        `yaml:"center"`
	Zoom         int               `yaml:"zoom"`
	Timeout      string            `yaml:"timeout"`
	HTML         string            `yaml:"html"`
	GeoJSONOut   string            `yaml:"geojson_out"`
	ChartsHTML   string            `yaml:"charts_html"`
}
