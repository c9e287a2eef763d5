package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gowool/whoops"
	"github.com/gowool/whoops/server"
)

const envPrefix = "WHOOPSD"

type config struct {
	// DetectTerminal renders plain text reports when stdout is a terminal.
	DetectTerminal bool          `mapstructure:"detect_terminal"`
	Log            logConfig     `mapstructure:"log"`
	Server         server.Config `mapstructure:"server"`
	Whoops         whoops.Config `mapstructure:"whoops"`
}

type logConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c logConfig) level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("whoopsd", pflag.ContinueOnError)

	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("env-file", ".env", "dotenv file loaded into the environment")
	flags.Bool("detect_terminal", false, "render plain text reports when stdout is a terminal")

	flags.String("log.level", "info", "log level (debug, info, warn, error)")
	flags.String("log.format", "json", "log format (text, json)")

	flags.String("server.address", ":8080", "listen address")
	flags.Duration("server.shutdown_timeout", 0, "graceful shutdown timeout (e.g. 10s)")

	flags.Bool("whoops.catch_errors", true, "register the process-wide trap while handlers run")
	flags.Bool("whoops.cli", false, "always render plain text reports")
	flags.Int("whoops.max_frames", 0, "maximum number of stack frames per report")
	flags.String("whoops.page_title", "", "title of the HTML error page")
	flags.StringSlice("whoops.skip_paths", nil, "path prefixes served without the error boundary")

	return flags
}

// loadConfig merges, by increasing priority, the config file, the
// environment (WHOOPSD_SERVER_ADDRESS, ...) and the command line flags.
func loadConfig(args []string) (config, error) {
	flags := newFlags()
	if err := flags.Parse(args); err != nil {
		return config{}, err
	}

	if envFile, _ := flags.GetString("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	v := viper.New()

	if file, _ := flags.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return config{}, fmt.Errorf("bind flags: %w", err)
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
