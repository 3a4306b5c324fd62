// Package config loads runtime settings from flags and JUNKFACTORY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"junkfactory/pkg/log"
	"junkfactory/pkg/zerofill"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "JUNKFACTORY"

// Flag names, also the viper keys.
const (
	FlagLogLevel       = "log-level"
	FlagLogFormat      = "log-format"
	FlagPollInterval   = "poll-interval"
	FlagChunkSize      = "chunk-size"
	FlagBurstSize      = "burst-size"
	FlagListen         = "listen"
	FlagServer         = "server"
	FlagRetryMax       = "retry-max"
	FlagRetryWaitMin   = "retry-wait-min"
	FlagRetryWaitMax   = "retry-wait-max"
	FlagRequestTimeout = "request-timeout"
	FlagHistoryLimit   = "history-limit"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds every tunable of the CLI and the server.
type Config struct {
	LogLevel       string
	LogFormat      string
	PollInterval   time.Duration
	ChunkSize      datasize.ByteSize
	BurstSize      datasize.ByteSize
	Listen         string
	ServerURL      string
	RetryMax       int
	RetryWaitMin   time.Duration
	RetryWaitMax   time.Duration
	RequestTimeout time.Duration
	HistoryLimit   int
}

// Default returns the built in settings.
func Default() Config {
	return Config{
		LogLevel:       "info",
		LogFormat:      log.FormatConsole,
		PollInterval:   100 * time.Millisecond,
		ChunkSize:      zerofill.DefaultChunkSize,
		BurstSize:      zerofill.DefaultBurstSize,
		Listen:         ":8080",
		ServerURL:      "http://127.0.0.1:8080",
		RetryMax:       3,
		RetryWaitMin:   100 * time.Millisecond,
		RetryWaitMax:   2 * time.Second,
		RequestTimeout: 10 * time.Second,
		HistoryLimit:   20,
	}
}

// BindFlags registers every setting on flags with its default value.
func BindFlags(flags *pflag.FlagSet) {
	def := Default()
	flags.String(FlagLogLevel, def.LogLevel, "log level: debug, info, warn or error")
	flags.String(FlagLogFormat, def.LogFormat, "log format: console or json")
	flags.Duration(FlagPollInterval, def.PollInterval, "progress polling interval")
	flags.String(FlagChunkSize, def.ChunkSize.String(), "streamed write step, e.g. 1MB")
	flags.String(FlagBurstSize, def.BurstSize.String(), "largest single write, e.g. 64KB")
	flags.String(FlagListen, def.Listen, "address the control surface listens on")
	flags.String(FlagServer, def.ServerURL, "control surface URL used by remote commands")
	flags.Int(FlagRetryMax, def.RetryMax, "retries on connection errors")
	flags.Duration(FlagRetryWaitMin, def.RetryWaitMin, "minimum wait between retries")
	flags.Duration(FlagRetryWaitMax, def.RetryWaitMax, "maximum wait between retries")
	flags.Duration(FlagRequestTimeout, def.RequestTimeout, "timeout of a single API call")
	flags.Int(FlagHistoryLimit, def.HistoryLimit, "default number of journal entries returned")
}

// Load reads flags and environment variables, flags set on the command line winning.
func Load(flags *pflag.FlagSet) (Config, error) {
	parser := viper.NewWithOptions(viper.EnvKeyReplacer(strings.NewReplacer("-", "_")))
	parser.SetEnvPrefix(EnvPrefix)
	if err := parser.BindPFlags(flags); err != nil {
		return Config{}, err
	}
	parser.AutomaticEnv()

	cfg := Config{
		LogLevel:       parser.GetString(FlagLogLevel),
		LogFormat:      parser.GetString(FlagLogFormat),
		PollInterval:   parser.GetDuration(FlagPollInterval),
		Listen:         parser.GetString(FlagListen),
		ServerURL:      parser.GetString(FlagServer),
		RetryMax:       parser.GetInt(FlagRetryMax),
		RetryWaitMin:   parser.GetDuration(FlagRetryWaitMin),
		RetryWaitMax:   parser.GetDuration(FlagRetryWaitMax),
		RequestTimeout: parser.GetDuration(FlagRequestTimeout),
		HistoryLimit:   parser.GetInt(FlagHistoryLimit),
	}

	var err error
	if cfg.ChunkSize, err = parseSize(FlagChunkSize, parser.GetString(FlagChunkSize)); err != nil {
		return Config{}, err
	}
	if cfg.BurstSize, err = parseSize(FlagBurstSize, parser.GetString(FlagBurstSize)); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseSize(name, value string) (datasize.ByteSize, error) {
	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrInvalidConfig, name, value, err)
	}
	return size, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, FlagPollInterval)
	case c.ChunkSize == 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, FlagChunkSize)
	case c.BurstSize == 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, FlagBurstSize)
	case c.BurstSize > c.ChunkSize:
		return fmt.Errorf("%w: %s must not exceed %s", ErrInvalidConfig, FlagBurstSize, FlagChunkSize)
	case c.BurstSize.Bytes() > zerofill.MaxBurstSize:
		return fmt.Errorf("%w: %s must not exceed %s", ErrInvalidConfig, FlagBurstSize,
			datasize.ByteSize(zerofill.MaxBurstSize))
	case c.RetryMax < 0:
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, FlagRetryMax)
	case c.RetryWaitMin > c.RetryWaitMax:
		return fmt.Errorf("%w: %s must not exceed %s", ErrInvalidConfig, FlagRetryWaitMin, FlagRetryWaitMax)
	case c.HistoryLimit <= 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, FlagHistoryLimit)
	}
	return nil
}

// ApplyLogging configures the process logger.
func (c Config) ApplyLogging() error {
	return log.Configure(c.LogLevel, c.LogFormat)
}

// WriterOptions returns the zero fill settings.
func (c Config) WriterOptions() []zerofill.Option {
	return []zerofill.Option{
		zerofill.WithChunkSize(int64(c.ChunkSize.Bytes())), //nolint:gosec // validated size
		zerofill.WithBurstSize(int(c.BurstSize.Bytes())),   //nolint:gosec // validated size
	}
}
