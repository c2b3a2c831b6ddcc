package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Template sources
	SourceDir = "dir"
	SourceS3  = "s3"

	// Default values
	DefaultPort          = 5000
	DefaultHost          = "0.0.0.0"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultTemplatesDir  = "assets"
	DefaultOutputDir     = "output"
	DefaultMaxBodyMB     = 16
	DefaultMaxTemplateMB = 50
	DefaultTrelloURL     = "https://api.trello.com/1/cards"
	DefaultTrelloRate    = 5.0
	DefaultEnvFile       = ".env"

	envPrefix = "RTA"
)

// ErrVersionRequested is returned when --version is passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the RTA filler
type Config struct {
	// Server configuration
	Mode        string // "server" or "stdio"
	Host        string
	Port        int
	CORSOrigins []string
	MaxBodyMB   int64

	// Template configuration
	TemplateSource string // "dir" or "s3"
	TemplatesDir   string
	MaxTemplateMB  int64
	Preload        bool
	S3Bucket       string
	S3Prefix       string
	S3Region       string
	S3Endpoint     string

	// Output directory for documents filled through MCP tools
	OutputDir string

	// Task board
	TrelloKey    string
	TrelloToken  string
	TrelloListID string
	TrelloURL    string
	TrelloRate   float64

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:           ModeServer,
		Host:           DefaultHost,
		Port:           DefaultPort,
		CORSOrigins:    []string{"*"},
		MaxBodyMB:      DefaultMaxBodyMB,
		TemplateSource: SourceDir,
		TemplatesDir:   DefaultTemplatesDir,
		MaxTemplateMB:  DefaultMaxTemplateMB,
		Preload:        true,
		OutputDir:      DefaultOutputDir,
		TrelloURL:      DefaultTrelloURL,
		TrelloRate:     DefaultTrelloRate,
		Version:        "1.0.0",
		ServerName:     "rta-filler",
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

// LoadFromFlags parses the process command line and environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[0], os.Args[1:])
}

// Load builds a configuration from defaults, the .env file, the environment
// and args, in increasing order of precedence.
func Load(program string, args []string) (*Config, error) {
	cfg := DefaultConfig()

	if err := checkVersionFlag(args); err != nil {
		return nil, err
	}

	if err := loadEnvFile(envFileFrom(args)); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	fs := pflag.NewFlagSet(program, pflag.ContinueOnError)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs, program, os.Stderr)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	populateConfigFromViper(v, cfg)

	if cfg.TemplatesDir != "" {
		if expandedPath, err := filepath.Abs(cfg.TemplatesDir); err == nil {
			cfg.TemplatesDir = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads KEY=value pairs into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// envFileFrom finds --env-file before flags are parsed, since the file feeds the defaults.
func envFileFrom(args []string) string {
	for i, arg := range args {
		if v, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return v
		}
		if arg == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv(envPrefix + "_ENV_FILE"); v != "" {
		return v
	}
	return DefaultEnvFile
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Unprefixed names used by existing deployments
	_ = v.BindEnv("port", envPrefix+"_PORT", "PORT")
	_ = v.BindEnv("max-body-mb", envPrefix+"_MAX_BODY_MB", "UPLOAD_MAX_MB")
	_ = v.BindEnv("trello-key", envPrefix+"_TRELLO_KEY", "TRELLO_KEY")
	_ = v.BindEnv("trello-token", envPrefix+"_TRELLO_TOKEN", "TRELLO_TOKEN")
	_ = v.BindEnv("trello-list", envPrefix+"_TRELLO_LIST", "TRELLO_ID_LIST")
	_ = v.BindEnv("trello-url", envPrefix+"_TRELLO_URL", "TRELLO_URL")

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("cors-origins", cfg.CORSOrigins)
	v.SetDefault("max-body-mb", cfg.MaxBodyMB)
	v.SetDefault("template-source", cfg.TemplateSource)
	v.SetDefault("templates-dir", cfg.TemplatesDir)
	v.SetDefault("max-template-mb", cfg.MaxTemplateMB)
	v.SetDefault("preload", cfg.Preload)
	v.SetDefault("output-dir", cfg.OutputDir)
	v.SetDefault("trello-url", cfg.TrelloURL)
	v.SetDefault("trello-rate", cfg.TrelloRate)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("logformat", cfg.LogFormat)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("mode", cfg.Mode, "Run mode: 'server' for the HTTP API, 'stdio' for MCP standard I/O")
	fs.String("host", cfg.Host, "Server host address (server mode only)")
	fs.Int("port", cfg.Port, "Server port (server mode only)")
	fs.StringSlice("cors-origins", cfg.CORSOrigins, "Allowed CORS origins (server mode only)")
	fs.Int64("max-body-mb", cfg.MaxBodyMB, "Maximum request body size in MB")
	fs.String("template-source", cfg.TemplateSource, "Template storage: 'dir' or 's3'")
	fs.String("templates-dir", cfg.TemplatesDir, "Directory containing the RTA templates")
	fs.Int64("max-template-mb", cfg.MaxTemplateMB, "Maximum template size in MB")
	fs.Bool("preload", cfg.Preload, "Load and verify every template at startup")
	fs.String("s3-bucket", "", "S3 bucket holding the templates")
	fs.String("s3-prefix", "", "Key prefix of the templates in the bucket")
	fs.String("s3-region", "", "S3 region")
	fs.String("s3-endpoint", "", "Custom endpoint for S3-compatible storage")
	fs.String("output-dir", cfg.OutputDir, "Directory receiving documents filled through MCP tools")
	fs.String("trello-key", "", "Task board API key")
	fs.String("trello-token", "", "Task board API token")
	fs.String("trello-list", "", "Task board list receiving new cards")
	fs.String("trello-url", cfg.TrelloURL, "Task board cards endpoint")
	fs.Float64("trello-rate", cfg.TrelloRate, "Maximum task board requests per second")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("logformat", cfg.LogFormat, "Log format (console, json)")
	fs.String("env-file", DefaultEnvFile, "Environment file loaded before reading the environment")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "env-file" {
			return
		}
		_ = v.BindPFlag(f.Name, f)
	})
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet, program string, w io.Writer) {
	fs.Usage = func() {
		fmt.Fprintf(w, "Usage of %s:\n", program)
		fmt.Fprintf(w, "\nRTA Filler - fills insurance RTA PDF forms over HTTP or MCP\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.SetOutput(w)
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  %s                                          # HTTP API on :5000, templates in ./assets\n", program)
		fmt.Fprintf(w, "  %s --templates-dir=/srv/rta --port=8080     # custom template directory and port\n", program)
		fmt.Fprintf(w, "  %s --mode=stdio --output-dir=/tmp/rta       # MCP tools over stdio\n", program)
		fmt.Fprintf(w, "  %s --template-source=s3 --s3-bucket=forms   # templates from S3\n", program)
		fmt.Fprintf(w, "\nEnvironment Variables:\n")
		fmt.Fprintf(w, "  RTA_<FLAG>        Any flag, upper-cased with '-' as '_' (RTA_TEMPLATES_DIR)\n")
		fmt.Fprintf(w, "  PORT              Server port\n")
		fmt.Fprintf(w, "  UPLOAD_MAX_MB     Maximum request body size in MB\n")
		fmt.Fprintf(w, "  TRELLO_KEY        Task board API key\n")
		fmt.Fprintf(w, "  TRELLO_TOKEN      Task board API token\n")
		fmt.Fprintf(w, "  TRELLO_ID_LIST    Task board list id\n")
		fmt.Fprintf(w, "  TRELLO_URL        Task board cards endpoint\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) error {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.CORSOrigins = v.GetStringSlice("cors-origins")
	cfg.MaxBodyMB = v.GetInt64("max-body-mb")
	cfg.TemplateSource = v.GetString("template-source")
	cfg.TemplatesDir = v.GetString("templates-dir")
	cfg.MaxTemplateMB = v.GetInt64("max-template-mb")
	cfg.Preload = v.GetBool("preload")
	cfg.S3Bucket = v.GetString("s3-bucket")
	cfg.S3Prefix = v.GetString("s3-prefix")
	cfg.S3Region = v.GetString("s3-region")
	cfg.S3Endpoint = v.GetString("s3-endpoint")
	cfg.OutputDir = v.GetString("output-dir")
	cfg.TrelloKey = v.GetString("trello-key")
	cfg.TrelloToken = v.GetString("trello-token")
	cfg.TrelloListID = v.GetString("trello-list")
	cfg.TrelloURL = v.GetString("trello-url")
	cfg.TrelloRate = v.GetFloat64("trello-rate")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.LogFormat = v.GetString("logformat")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	switch c.TemplateSource {
	case SourceDir:
		if c.TemplatesDir == "" {
			return errors.New("templates directory cannot be empty")
		}
	case SourceS3:
		if c.S3Bucket == "" {
			return errors.New("s3 template source requires a bucket")
		}
	default:
		return fmt.Errorf("invalid template source: %s (must be one of: dir, s3)", c.TemplateSource)
	}

	if c.MaxBodyMB <= 0 {
		return errors.New("maximum body size must be positive")
	}

	if c.MaxTemplateMB <= 0 {
		return errors.New("maximum template size must be positive")
	}

	if c.TrelloRate <= 0 {
		return errors.New("task board rate must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be one of: console, json)", c.LogFormat)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxBodyBytes returns the request body limit in bytes
func (c *Config) MaxBodyBytes() int64 {
	return c.MaxBodyMB * 1024 * 1024
}

// MaxTemplateBytes returns the template size limit in bytes
func (c *Config) MaxTemplateBytes() int64 {
	return c.MaxTemplateMB * 1024 * 1024
}

// TrelloConfigured reports whether task board credentials are present
func (c *Config) TrelloConfigured() bool {
	return c.TrelloKey != "" && c.TrelloToken != "" && c.TrelloListID != ""
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration with credentials redacted
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, TemplateSource: %s, TemplatesDir: %s, "+
		"S3Bucket: %s, OutputDir: %s, LogLevel: %s, MaxBodyMB: %d, Trello: %s}",
		c.Mode, c.Host, c.Port, c.TemplateSource, c.TemplatesDir,
		c.S3Bucket, c.OutputDir, c.LogLevel, c.MaxBodyMB, redacted(c.TrelloConfigured()))
}

func redacted(configured bool) string {
	if configured {
		return "configured"
	}
	return "unset"
}

// IsServerMode returns true if the process serves the HTTP API
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the process serves MCP over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
