// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the geo-converter CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/geo-converter/internal/secrets"
	"github.com/pdiddy/geo-converter/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// appFs is the filesystem used for inputs, outputs and secrets.
var appFs afero.Fs = afero.NewOsFs()

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// logger writes diagnostics to stderr; configured in PersistentPreRunE.
var logger = zerolog.Nop()

// rootCmd is the base command for the geo-converter CLI.
var rootCmd = &cobra.Command{
	Use:   "geo-converter",
	Short: "Convert geospatial and tabular files",
	Long: `geo-converter turns KML, KMZ, GPX, GeoJSON, JSON, XLSX, PDF and free text
into CSV, and GeoJSON into CSV, GPX, KML or KMZ. It also converts coordinate
columns between decimal degrees, degrees-minutes-seconds and UTM.

Each input format is a subcommand. Several input files are converted as a
batch and bundled into converted_files.zip; a file that fails is reported
and skipped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(cmd.ErrOrStderr(), viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(appFs, ".secrets", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./geo-converter.yaml or ~/.config/geo-converter/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	viper.SetDefault("ai.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("ai.max_retries", 0)
	viper.SetDefault("ai.timeout", 2*time.Minute)
	viper.SetDefault("ai.pdf_backend", string(types.PDFBackendClaude))
	viper.SetDefault("batch.concurrency", 1)
	viper.SetDefault("output.dir", ".")
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "console")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("geo-converter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "geo-converter"))
		}
	}

	viper.SetEnvPrefix("GEO_CONVERTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the typed configuration from viper. An API key in
// .secrets/ is used when none is configured.
func loadConfig() types.Config {
	cfg := types.Config{
		AI: types.AIConfig{
			Model:      viper.GetString("ai.model"),
			APIKey:     viper.GetString("ai.api_key"),
			MaxRetries: viper.GetInt("ai.max_retries"),
			Timeout:    viper.GetDuration("ai.timeout"),
			PDFBackend: types.PDFBackend(viper.GetString("ai.pdf_backend")),
		},
		Batch:  types.BatchConfig{Concurrency: viper.GetInt("batch.concurrency")},
		Output: types.OutputConfig{Dir: viper.GetString("output.dir")},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = loadedSecrets.APIKey()
	}
	return cfg
}

// newLogger builds a zerolog logger writing to w in console or json format.
func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.WarnLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	switch strings.ToLower(format) {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q: use console or json", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
