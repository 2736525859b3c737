package domain

import (
	"path/filepath"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Staging      StagingConfig      `mapstructure:"staging"`
	Pipeline     PipelineConfig     `mapstructure:"pipeline"`
	Acquire      AcquireConfig      `mapstructure:"acquire"`
	Extractor    ExtractorConfig    `mapstructure:"extractor"`
	Relay        RelayConfig        `mapstructure:"relay"`
	History      HistoryConfig      `mapstructure:"history"`
	Worker       WorkerConfig       `mapstructure:"worker"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StagingConfig contains scratch-storage configuration. Incoming holds
// artifacts between acquisition and delivery; Completed is where delivery
// collaborators move accepted files.
type StagingConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

func (c StagingConfig) IncomingDir() string  { return filepath.Join(c.BaseDir, "incoming") }
func (c StagingConfig) CompletedDir() string { return filepath.Join(c.BaseDir, "completed") }
func (c StagingConfig) LogsDir() string      { return filepath.Join(c.BaseDir, "logs") }

// PipelineConfig contains the global pipeline budgets.
type PipelineConfig struct {
	// SizeLimit is the global artifact ceiling in bytes.
	SizeLimit int64 `mapstructure:"size_limit"`
	// RequestTimeout is the whole-pipeline deadline per request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// StrategyTimeout bounds each individual resolution strategy.
	StrategyTimeout time.Duration `mapstructure:"strategy_timeout"`
	// WorkerLimit bounds how many requests run network I/O concurrently.
	WorkerLimit int `mapstructure:"worker_limit"`
	// StreamLimit is the size band below which delivery should stream.
	StreamLimit int64 `mapstructure:"stream_limit"`
}

// AcquireConfig contains per-method retry budgets.
type AcquireConfig struct {
	DirectAttempts    int           `mapstructure:"direct_attempts"`
	DirectDelay       time.Duration `mapstructure:"direct_delay"`
	ExtractorAttempts int           `mapstructure:"extractor_attempts"`
	ExtractorDelay    time.Duration `mapstructure:"extractor_delay"`
	RelayAttempts     int           `mapstructure:"relay_attempts"`
	RelayDelay        time.Duration `mapstructure:"relay_delay"`
}

// ExtractorConfig contains generic-extractor (yt-dlp) configuration. The
// cookie file is passed through opaquely; its absence degrades success
// rate but is never fatal.
type ExtractorConfig struct {
	Binary     string `mapstructure:"binary"`
	CookieFile string `mapstructure:"cookie_file"`
}

// RelayEndpoint is one third-party relay service that maps a page URL to
// a direct media URL.
type RelayEndpoint struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Method   string `mapstructure:"method"`
	ParamKey string `mapstructure:"param_key"`
}

// RelayConfig contains the ordered relay service table.
type RelayConfig struct {
	Endpoints []RelayEndpoint `mapstructure:"endpoints"`
}

// HistoryConfig contains request-history persistence configuration
type HistoryConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// WorkerConfig contains queue worker configuration
type WorkerConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	AutoStart     bool          `mapstructure:"auto_start"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send, log
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Staging: StagingConfig{
			BaseDir: "$HOME/.media-grab",
		},
		Pipeline: PipelineConfig{
			SizeLimit:       1000 * 1024 * 1024,
			RequestTimeout:  300 * time.Second,
			StrategyTimeout: 20 * time.Second,
			WorkerLimit:     4,
			StreamLimit:     10 * 1024 * 1024,
		},
		Acquire: AcquireConfig{
			DirectAttempts:    3,
			DirectDelay:       2 * time.Second,
			ExtractorAttempts: 3,
			ExtractorDelay:    5 * time.Second,
			RelayAttempts:     2,
			RelayDelay:        3 * time.Second,
		},
		Extractor: ExtractorConfig{
			Binary:     "yt-dlp",
			CookieFile: "",
		},
		Relay: RelayConfig{
			Endpoints: []RelayEndpoint{
				{Name: "savefrom", URL: "https://savefrom.net/api/convert", Method: "POST", ParamKey: "url"},
				{Name: "aio-dl", URL: "https://www.instagramonlinedownloader.com/wp-json/aio-dl/video-data/", Method: "POST", ParamKey: "url"},
				{Name: "instadownloader", URL: "https://api.instadownloader.co/api/download", Method: "POST", ParamKey: "url"},
			},
		},
		History: HistoryConfig{
			DatabasePath: "$HOME/.media-grab/history.db",
		},
		Worker: WorkerConfig{
			CheckInterval: 5 * time.Second,
			AutoStart:     true,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "log",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
