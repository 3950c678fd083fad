package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/rss-pull.db" description:"Path to the sqlite database file"`

	// Application configuration
	FeedsDir          string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://feeds.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for feed loading"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Downloads
	CacheMaxAge    time.Duration `long:"cache-max-age" env:"CACHE_MAX_AGE" default:"2h" description:"How long downloaded documents are served from cache"`
	ConnectTimeout time.Duration `long:"connect-timeout" env:"CONNECT_TIMEOUT" default:"15s" description:"Timeout for establishing connections"`
	ReadTimeout    time.Duration `long:"read-timeout" env:"READ_TIMEOUT" default:"45s" description:"Timeout for waiting on response headers"`
	ClearCache     bool          `long:"clear-cache" description:"Drop cached downloads on startup"`
	RedisAddr      string        `long:"redis-addr" env:"REDIS_ADDR" description:"Keep cached downloads in Redis instead of the database (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Pull/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// ErrHelp is returned when --help was requested and printed.
var ErrHelp = errors.New("help requested")

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be positive, got %d", raw.WorkerCount)
	}
	if raw.SchedulerInterval < 1 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %d", raw.SchedulerInterval)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		FeedsDir:          raw.FeedsDir,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		CacheMaxAge:       raw.CacheMaxAge,
		ConnectTimeout:    raw.ConnectTimeout,
		ReadTimeout:       raw.ReadTimeout,
		ClearCache:        raw.ClearCache,
		RedisAddr:         raw.RedisAddr,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
