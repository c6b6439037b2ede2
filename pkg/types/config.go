package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "channel-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// YouTubeConfig holds settings for the YouTube Data API client.
type YouTubeConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the YouTube Data API v3 key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Endpoint overrides the API base URL (default https://youtube.googleapis.com/).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// RequestsPerSecond caps outgoing API calls (default 5). Zero disables the limiter.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DiscoveryConfig holds settings for the discovery loop.
type DiscoveryConfig struct {
	// TargetCount is the default number of matches wanted (default 20).
	TargetCount int `json:"target_count" yaml:"target_count"`

	// MaxPageDepth bounds the number of search pages per run (default 15).
	MaxPageDepth int `json:"max_page_depth" yaml:"max_page_depth"`

	// PageDelay is the pause between search pages (default 1s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// Ordering is the default search ordering.
	Ordering Ordering `json:"ordering,omitempty" yaml:"ordering,omitempty"`
}

// OutputFormat selects how a run's records are printed.
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputCSV   OutputFormat = "csv"
)

// ExportConfig holds settings for result output.
type ExportConfig struct {
	// Format selects the stdout rendering: table, json, or csv.
	Format OutputFormat `json:"format" yaml:"format"`

	// CSVDir is the directory CSV files are written to (default ".").
	CSVDir string `json:"csv_dir" yaml:"csv_dir"`
}

// HistoryConfig holds settings for the run history database.
type HistoryConfig struct {
	// Dir contains history.db (default ~/.local/share/channel-scout).
	Dir string `json:"dir" yaml:"dir"`

	// Disabled skips recording runs.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// ScoutConfig groups all component configurations.
type ScoutConfig struct {
	YouTube   YouTubeConfig   `json:"youtube" yaml:"youtube"`
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Export    ExportConfig    `json:"export" yaml:"export"`
	History   HistoryConfig   `json:"history" yaml:"history"`
}
