// Package config provides configuration management for splitflow.
// Configuration is loaded from environment variables with sensible defaults;
// a .env file in the working directory is honoured when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort     = 4000
	DefaultLogLevel = "info"
	DefaultDataDir  = ".splitflow"

	// Environment variable names
	EnvPort     = "SPLITFLOW_PORT"
	EnvLogLevel = "SPLITFLOW_LOG_LEVEL"
	EnvDataDir  = "SPLITFLOW_DATA_DIR"

	EnvMaxUploadBytes = "SPLITFLOW_MAX_UPLOAD_BYTES"
	EnvMaxActiveJobs  = "SPLITFLOW_MAX_ACTIVE_JOBS"
	EnvJobTimeoutS    = "SPLITFLOW_JOB_TIMEOUT_S"
	EnvBundleZip      = "SPLITFLOW_BUNDLE_ZIP"

	EnvFFmpegPath  = "SPLITFLOW_FFMPEG"
	EnvFFprobePath = "SPLITFLOW_FFPROBE"

	// Optional S3 publishing of finished parts
	EnvS3Endpoint  = "SPLITFLOW_S3_ENDPOINT"
	EnvS3AccessKey = "SPLITFLOW_S3_ACCESS_KEY"
	EnvS3SecretKey = "SPLITFLOW_S3_SECRET_KEY"
	EnvS3Bucket    = "SPLITFLOW_S3_BUCKET"

	// Optional redis-backed rate limiting of submissions
	EnvRedisAddr      = "SPLITFLOW_REDIS_ADDR"
	EnvRateLimit      = "SPLITFLOW_RATE_LIMIT"
	EnvRateWindowSecs = "SPLITFLOW_RATE_WINDOW_S"

	// Database filename
	DBFilename = "splitflow.db"

	// Uploads up to tens of gigabytes are expected (full-length movies).
	DefaultMaxUploadBytes = 50 * 1024 * 1024 * 1024 // 50GB

	DefaultMaxActiveJobs = 2
	DefaultJobTimeoutS   = 4 * 60 * 60 // splitting a movie can take hours

	DefaultRateLimit      = 10
	DefaultRateWindowSecs = 60
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	UploadsDir() string
	OutputDir() string
	MaxUploadBytes() int64
	MaxActiveJobs() int
	JobTimeout() time.Duration
	BundleZip() bool
	FFmpegPath() string
	FFprobePath() string
	S3Endpoint() string
	S3AccessKey() string
	S3SecretKey() string
	S3Bucket() string
	RedisAddr() string
	RateLimit() int
	RateWindow() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port           int
	logLevel       string
	dataDir        string
	maxUploadBytes int64
	maxActiveJobs  int
	jobTimeoutS    int
	bundleZip      bool

	ffmpegPath  string
	ffprobePath string

	s3Endpoint  string
	s3AccessKey string
	s3SecretKey string
	s3Bucket    string

	redisAddr      string
	rateLimit      int
	rateWindowSecs int
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	// Missing .env is fine; env vars and defaults still apply.
	_ = godotenv.Load()

	cfg := &EnvConfig{
		port:           DefaultPort,
		logLevel:       DefaultLogLevel,
		dataDir:        defaultDataDir(),
		maxUploadBytes: DefaultMaxUploadBytes,
		maxActiveJobs:  DefaultMaxActiveJobs,
		jobTimeoutS:    DefaultJobTimeoutS,
		bundleZip:      true,
		rateLimit:      DefaultRateLimit,
		rateWindowSecs: DefaultRateWindowSecs,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if mb := os.Getenv(EnvMaxUploadBytes); mb != "" {
		n, err := strconv.ParseInt(mb, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvMaxUploadBytes)
		}
		cfg.maxUploadBytes = n
	}

	if mj := os.Getenv(EnvMaxActiveJobs); mj != "" {
		n, err := strconv.Atoi(mj)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvMaxActiveJobs)
		}
		cfg.maxActiveJobs = n
	}

	if jt := os.Getenv(EnvJobTimeoutS); jt != "" {
		n, err := strconv.Atoi(jt)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvJobTimeoutS)
		}
		cfg.jobTimeoutS = n
	}

	if bz := os.Getenv(EnvBundleZip); bz != "" {
		v, err := strconv.ParseBool(bz)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvBundleZip, err)
		}
		cfg.bundleZip = v
	}

	cfg.ffmpegPath = os.Getenv(EnvFFmpegPath)
	cfg.ffprobePath = os.Getenv(EnvFFprobePath)

	cfg.s3Endpoint = os.Getenv(EnvS3Endpoint)
	cfg.s3AccessKey = os.Getenv(EnvS3AccessKey)
	cfg.s3SecretKey = os.Getenv(EnvS3SecretKey)
	cfg.s3Bucket = os.Getenv(EnvS3Bucket)

	cfg.redisAddr = os.Getenv(EnvRedisAddr)

	if rl := os.Getenv(EnvRateLimit); rl != "" {
		n, err := strconv.Atoi(rl)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvRateLimit)
		}
		cfg.rateLimit = n
	}

	if rw := os.Getenv(EnvRateWindowSecs); rw != "" {
		n, err := strconv.Atoi(rw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvRateWindowSecs)
		}
		cfg.rateWindowSecs = n
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite history database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// UploadsDir returns the directory uploaded sources are spooled to
func (c *EnvConfig) UploadsDir() string {
	return filepath.Join(c.dataDir, "uploads")
}

// OutputDir returns the directory produced clips and zips are written to
func (c *EnvConfig) OutputDir() string {
	return filepath.Join(c.dataDir, "output")
}

// MaxUploadBytes returns the maximum accepted upload size in bytes
func (c *EnvConfig) MaxUploadBytes() int64 {
	return c.maxUploadBytes
}

// MaxActiveJobs returns the cap on concurrently processing split jobs
func (c *EnvConfig) MaxActiveJobs() int {
	return c.maxActiveJobs
}

// JobTimeout returns the limit on a single job's processing phase
func (c *EnvConfig) JobTimeout() time.Duration {
	return time.Duration(c.jobTimeoutS) * time.Second
}

// BundleZip reports whether finished parts are bundled into a zip
func (c *EnvConfig) BundleZip() bool {
	return c.bundleZip
}

func (c *EnvConfig) FFmpegPath() string  { return c.ffmpegPath }
func (c *EnvConfig) FFprobePath() string { return c.ffprobePath }

func (c *EnvConfig) S3Endpoint() string  { return c.s3Endpoint }
func (c *EnvConfig) S3AccessKey() string { return c.s3AccessKey }
func (c *EnvConfig) S3SecretKey() string { return c.s3SecretKey }
func (c *EnvConfig) S3Bucket() string    { return c.s3Bucket }

func (c *EnvConfig) RedisAddr() string { return c.redisAddr }
func (c *EnvConfig) RateLimit() int    { return c.rateLimit }

func (c *EnvConfig) RateWindow() time.Duration {
	return time.Duration(c.rateWindowSecs) * time.Second
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
