package config

// Config is the full service configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Headings     HeadingsConfig     `mapstructure:"headings" yaml:"headings"`
	ReadingOrder ReadingOrderConfig `mapstructure:"reading_order" yaml:"reading_order"`
	Tables       TablesConfig       `mapstructure:"tables" yaml:"tables"`
	Layout       LayoutConfig       `mapstructure:"layout" yaml:"layout"`
	Fetch        FetchConfig        `mapstructure:"fetch" yaml:"fetch"`
	Remote       RemoteConfig       `mapstructure:"remote" yaml:"remote"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// HeadingsConfig tunes the heading classifier. Ratios compare span font
// sizes against the document average.
type HeadingsConfig struct {
	H1Ratio       float64 `mapstructure:"h1_ratio" yaml:"h1_ratio"`
	H2Ratio       float64 `mapstructure:"h2_ratio" yaml:"h2_ratio"`
	H3Ratio       float64 `mapstructure:"h3_ratio" yaml:"h3_ratio"`
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	MaxTitleLen   int     `mapstructure:"max_title_len" yaml:"max_title_len"`
}

// ReadingOrderConfig tunes block ordering.
type ReadingOrderConfig struct {
	ColumnEps    float64 `mapstructure:"column_eps" yaml:"column_eps"`
	HeaderMargin float64 `mapstructure:"header_margin" yaml:"header_margin"`
	FooterMargin float64 `mapstructure:"footer_margin" yaml:"footer_margin"`
}

// TablesConfig holds the grid engine URL and accuracy floors.
type TablesConfig struct {
	GridURL            string  `mapstructure:"grid_url" yaml:"grid_url"`
	LatticeMinAccuracy float64 `mapstructure:"lattice_min_accuracy" yaml:"lattice_min_accuracy"`
	StreamMinAccuracy  float64 `mapstructure:"stream_min_accuracy" yaml:"stream_min_accuracy"`
}

// LayoutConfig holds the layout detector URL.
type LayoutConfig struct {
	DetectorURL string `mapstructure:"detector_url" yaml:"detector_url"`
}

// FetchConfig bounds document downloads.
type FetchConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// RemoteConfig holds the remote multimodal parser settings.
type RemoteConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	Model   string `mapstructure:"model" yaml:"model"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Headings: HeadingsConfig{
			H1Ratio:       1.8,
			H2Ratio:       1.4,
			H3Ratio:       1.2,
			MinConfidence: 0.6,
			MaxTitleLen:   200,
		},
		ReadingOrder: ReadingOrderConfig{
			ColumnEps:    50,
			HeaderMargin: 50,
			FooterMargin: 50,
		},
		Tables: TablesConfig{
			LatticeMinAccuracy: 0.5,
			StreamMinAccuracy:  0.4,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 300,
		},
		Remote: RemoteConfig{
			APIKey: "${OPENAI_API_KEY}",
			Model:  "gpt-4o-mini",
		},
	}
}
