// Package config provides functionality for managing configuration options
// for the client using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends accepted by Options.Store.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ID strategies accepted by Options.IDStrategy.
const (
	IDSequence = "sequence"
	IDUUID     = "uuid"
)

// Options holds the configuration values for the application.
type Options struct {
	// Store selects where the session is persisted: file, memory or redis.
	Store string `json:"store"`
	// StorePath is the session file used by the file store.
	StorePath string `json:"store_path"`
	// RedisAddr is the address of the Redis server used by the redis store.
	RedisAddr string `json:"redis_addr"`
	// SessionTTLSeconds expires the persisted session in Redis; 0 keeps it forever.
	SessionTTLSeconds int `json:"session_ttl_seconds"`

	// DatabaseDSN switches the task dataset to PostgreSQL when set.
	DatabaseDSN string `json:"database_dsn"`
	// CredentialsPath overrides the embedded credential table.
	CredentialsPath string `json:"credentials_path"`
	// TasksPath overrides the embedded seed tasks.
	TasksPath string `json:"tasks_path"`

	// LatencyScale multiplies the simulated latency; 0 disables it.
	LatencyScale float64 `json:"latency_scale"`
	// IDStrategy selects how new task IDs are generated: sequence or uuid.
	IDStrategy string `json:"id_strategy"`
	// StrictTokens makes the backend accept only issued tokens.
	StrictTokens bool `json:"strict_tokens"`
	// RefreshSeconds refetches tasks periodically; 0 disables it.
	RefreshSeconds int `json:"refresh_seconds"`

	// LogLevel is the zap log level.
	LogLevel string `json:"log_level"`
	// LogFile receives logs instead of stderr when set.
	LogFile string `json:"log_file"`

	// Config is the path to the config file.
	Config string `json:"-"`
	// Version asks the binary to print build information and exit.
	Version bool `json:"-"`
}

// RefreshInterval returns RefreshSeconds as a duration.
func (o *Options) RefreshInterval() time.Duration {
	return time.Duration(o.RefreshSeconds) * time.Second
}

// SessionTTL returns SessionTTLSeconds as a duration.
func (o *Options) SessionTTL() time.Duration {
	return time.Duration(o.SessionTTLSeconds) * time.Second
}

// Parse reads configuration from args (without the program name), then the
// config file, then the environment. Flags given explicitly on the command
// line win over the config file; environment variables win over both.
func Parse(args []string) (*Options, error) {
	options := &Options{}
	fs := flag.NewFlagSet("gophtasks", flag.ContinueOnError)

	fs.StringVar(&options.Store, "store", StoreFile, "session store: file | memory | redis")
	fs.StringVar(&options.StorePath, "store-path", "session.json", "session file for the file store")
	fs.StringVar(&options.RedisAddr, "redis", "localhost:6379", "redis address for the redis store")
	fs.IntVar(&options.SessionTTLSeconds, "session-ttl", 0, "redis session expiry in seconds (0 = none)")
	fs.StringVar(&options.DatabaseDSN, "d", "", "postgres DSN for the task dataset (empty = in-memory)")
	fs.StringVar(&options.CredentialsPath, "credentials", "", "credential table JSON (empty = built-in)")
	fs.StringVar(&options.TasksPath, "tasks", "", "seed tasks JSON (empty = built-in)")
	fs.Float64Var(&options.LatencyScale, "latency", 1, "simulated latency multiplier (0 disables)")
	fs.StringVar(&options.IDStrategy, "ids", IDSequence, "task id strategy: sequence | uuid")
	fs.BoolVar(&options.StrictTokens, "strict", false, "accept only tokens issued at login")
	fs.IntVar(&options.RefreshSeconds, "refresh", 0, "auto refresh interval in seconds (0 disables)")
	fs.StringVar(&options.LogLevel, "log-level", "warn", "log level")
	fs.StringVar(&options.LogFile, "log-file", "", "write logs to this file instead of stderr")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.BoolVar(&options.Version, "version", false, "show build version and date")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		data, err := os.ReadFile(options.Config)
		switch {
		case err == nil:
			explicit := make(map[string]bool)
			fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
			fromFile := *options
			if err := json.Unmarshal(data, &fromFile); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
			mergeFile(options, &fromFile, explicit)
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("error while reading config file: %w", err)
		}
	}

	if err := applyEnv(options); err != nil {
		return nil, err
	}
	if err := options.validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// mergeFile copies values from the config file unless the flag was set explicitly.
func mergeFile(dst, file *Options, explicit map[string]bool) {
	set := func(flagName string, apply func()) {
		if !explicit[flagName] {
			apply()
		}
	}
	set("store", func() { dst.Store = file.Store })
	set("store-path", func() { dst.StorePath = file.StorePath })
	set("redis", func() { dst.RedisAddr = file.RedisAddr })
	set("session-ttl", func() { dst.SessionTTLSeconds = file.SessionTTLSeconds })
	set("d", func() { dst.DatabaseDSN = file.DatabaseDSN })
	set("credentials", func() { dst.CredentialsPath = file.CredentialsPath })
	set("tasks", func() { dst.TasksPath = file.TasksPath })
	set("latency", func() { dst.LatencyScale = file.LatencyScale })
	set("ids", func() { dst.IDStrategy = file.IDStrategy })
	set("strict", func() { dst.StrictTokens = file.StrictTokens })
	set("refresh", func() { dst.RefreshSeconds = file.RefreshSeconds })
	set("log-level", func() { dst.LogLevel = file.LogLevel })
	set("log-file", func() { dst.LogFile = file.LogFile })
}

func applyEnv(o *Options) error {
	if v := os.Getenv("TASKS_STORE"); v != "" {
		o.Store = v
	}
	if v := os.Getenv("TASKS_STORE_PATH"); v != "" {
		o.StorePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		o.RedisAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		o.DatabaseDSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}
	if v := os.Getenv("TASKS_LATENCY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TASKS_LATENCY %q: %w", v, err)
		}
		o.LatencyScale = f
	}
	return nil
}

func (o *Options) validate() error {
	switch o.Store {
	case StoreFile, StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q", o.Store)
	}
	switch o.IDStrategy {
	case IDSequence, IDUUID:
	default:
		return fmt.Errorf("unknown id strategy %q", o.IDStrategy)
	}
	if o.LatencyScale < 0 {
		return fmt.Errorf("latency scale must not be negative, got %v", o.LatencyScale)
	}
	if o.RefreshSeconds < 0 || o.SessionTTLSeconds < 0 {
		return errors.New("refresh and session ttl must not be negative")
	}
	return nil
}
