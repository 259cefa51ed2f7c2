package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"github.com/tonimelisma/photosidecar/internal/fixdates"
	"github.com/tonimelisma/photosidecar/internal/photo"
	"github.com/tonimelisma/photosidecar/internal/store"
)

const envPrefix = "PHOTOSIDECAR_"

type extractCmd struct {
	Dir string `arg:"positional" help:"photo directory to scan"`
}

type summaryCmd struct {
	Dir string `arg:"positional" help:"directory holding the metadata document"`
}

type restoreCmd struct {
	Dir             string `arg:"positional" help:"directory holding the metadata document"`
	Target          string `arg:"positional" help:"directory to restore into (defaults to DIR)"`
	Yes             bool   `arg:"-y,--yes" help:"restore without asking for confirmation"`
	UseSavedBlock   bool   `arg:"--use-saved-block" help:"start from the saved EXIF block when a photo has none"`
	SetCreationTime bool   `arg:"--set-creation-time" help:"set file creation times where the platform allows it; on by default, pass =false to skip"`
	NoCreationTime  bool   `arg:"--no-creation-time" help:"leave file creation times alone"`
}

type fixDatesCmd struct {
	Document string `arg:"positional" help:"metadata document to correct"`
	Output   string `arg:"--output" help:"write the corrected document here instead of in place"`
	Sentinel string `arg:"--sentinel" help:"date value known to be wrong"`
}

type inspectCmd struct {
	Photo string `arg:"positional,required" help:"photo to examine"`
}

// cliArgs holds the command-line arguments
type cliArgs struct {
	Extract    *extractCmd  `arg:"subcommand:extract" help:"extract metadata from a photo directory and save it"`
	Summary    *summaryCmd  `arg:"subcommand:summary" help:"show the saved metadata of a photo directory"`
	Restore    *restoreCmd  `arg:"subcommand:restore" help:"write saved metadata back into photos"`
	FixDates   *fixDatesCmd `arg:"subcommand:fix-dates" help:"correct known-bad dates from file names"`
	Inspect    *inspectCmd  `arg:"subcommand:inspect" help:"extract one photo and check the save and load round trip"`
	ConfigFile string       `arg:"--config" help:"path to config file"`
	Verbose    bool         `arg:"-v,--verbose" help:"enable debug logging"`
	Document   string       `arg:"--document" help:"name of the metadata document inside the photo directory"`
}

func (cliArgs) Description() string {
	return "photosidecar keeps photo dates and GPS positions in a JSON side-car and restores them later.\n"
}

// config holds the application configuration
type config struct {
	DocumentName    string `yaml:"document_name"`
	SentinelDate    string `yaml:"sentinel_date"`
	Verbose         bool   `yaml:"verbose"`
	SetCreationTime bool   `yaml:"set_creation_time"`
	UseSavedBlock   bool   `yaml:"use_saved_block"`
	MapURL          string `yaml:"map_url"`
	ConfigFile      string `yaml:"-"`
}

// setDefaults initializes the config with default values
func setDefaults(cfg *config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	cfg.ConfigFile = filepath.Join(homeDir, ".photosidecarrc")
	cfg.DocumentName = store.DefaultName
	cfg.SentinelDate = fixdates.DefaultSentinel
	cfg.Verbose = false
	cfg.SetCreationTime = true
	cfg.UseSavedBlock = false
	cfg.MapURL = photo.DefaultMapLink
	return nil
}

// parseConfigFile reads and parses the YAML configuration file
func parseConfigFile(cfg *config) error {
	data, err := os.ReadFile(cfg.ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file doesn't exist, just return without an error
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// parseEnv applies PHOTOSIDECAR_* variables, after loading envFile into the
// environment when it exists. Variables already set take precedence over the
// file.
func parseEnv(cfg *config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	strs := map[string]*string{
		"DOCUMENT_NAME": &cfg.DocumentName,
		"SENTINEL_DATE": &cfg.SentinelDate,
		"MAP_URL":       &cfg.MapURL,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"VERBOSE":           &cfg.Verbose,
		"SET_CREATION_TIME": &cfg.SetCreationTime,
		"USE_SAVED_BLOCK":   &cfg.UseSavedBlock,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s%s: %w", v, envPrefix, key, err)
		}
		*dst = b
	}
	return nil
}

// applyArgs overrides the configuration with flags given on the command line
func applyArgs(cfg *config, a *cliArgs, argv []string) {
	if a.Document != "" {
		cfg.DocumentName = a.Document
	}
	if wasFlagProvided(argv, "-v") || wasFlagProvided(argv, "--verbose") {
		cfg.Verbose = a.Verbose
	}
	if a.Restore != nil {
		if wasFlagProvided(argv, "--use-saved-block") {
			cfg.UseSavedBlock = a.Restore.UseSavedBlock
		}
		if wasFlagProvided(argv, "--set-creation-time") {
			cfg.SetCreationTime = a.Restore.SetCreationTime
		}
		if a.Restore.NoCreationTime {
			cfg.SetCreationTime = false
		}
	}
	if a.FixDates != nil && a.FixDates.Sentinel != "" {
		cfg.SentinelDate = a.FixDates.Sentinel
	}
}

// validateConfig checks if the configuration is valid
func validateConfig(cfg *config) error {
	if cfg.DocumentName == "" {
		return fmt.Errorf("document name is not specified")
	}
	if filepath.Base(cfg.DocumentName) != cfg.DocumentName {
		return fmt.Errorf("document name must be a plain file name: %s", cfg.DocumentName)
	}
	if strings.TrimSpace(cfg.SentinelDate) == "" {
		return fmt.Errorf("sentinel date is not specified")
	}
	if n := strings.Count(cfg.MapURL, "%s"); n != 2 {
		return fmt.Errorf("map URL must contain two %%s placeholders, found %d: %s", n, cfg.MapURL)
	}
	return nil
}

// wasFlagProvided checks if a CLI flag was explicitly provided
func wasFlagProvided(argv []string, flagName string) bool {
	for _, a := range argv {
		if a == flagName || strings.HasPrefix(a, flagName+"=") {
			return true
		}
	}
	return false
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func newParser(a *cliArgs) (*arg.Parser, error) {
	return arg.NewParser(arg.Config{Program: "photosidecar"}, a)
}

func run() error {
	// Create an instance of the config struct
	cfg := config{}

	// Set default values first
	if err := setDefaults(&cfg); err != nil {
		return fmt.Errorf("setting defaults: %w", err)
	}

	// Parse command-line arguments
	var a cliArgs
	p, err := newParser(&a)
	if err != nil {
		return fmt.Errorf("building argument parser: %w", err)
	}
	p.MustParse(os.Args[1:])
	if p.Subcommand() == nil {
		p.Fail("missing subcommand")
	}

	// Apply config file path from command-line argument if provided
	if a.ConfigFile != "" {
		cfg.ConfigFile = a.ConfigFile
	}

	// Layer config file, then environment, then flags
	if err := parseConfigFile(&cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if err := parseEnv(&cfg, ".env"); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	applyArgs(&cfg, &a, os.Args[1:])

	// Validate the configuration
	if err := validateConfig(&cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := newLogger(cfg.Verbose)
	log.Debug().Interface("config", cfg).Msg("configuration loaded")

	app := &app{cfg: cfg, log: log, prompt: newPrompter(), out: os.Stdout}
	switch {
	case a.Extract != nil:
		return app.extract(a.Extract)
	case a.Summary != nil:
		return app.summary(a.Summary)
	case a.Restore != nil:
		return app.restore(a.Restore)
	case a.FixDates != nil:
		return app.fixDates(a.FixDates)
	case a.Inspect != nil:
		return app.inspect(a.Inspect)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
