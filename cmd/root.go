package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/lepinkainen/movierating/internal/cache"
	"github.com/lepinkainen/movierating/internal/config"
	"github.com/lepinkainen/movierating/internal/errors"
	"github.com/lepinkainen/movierating/internal/omdb"
	"github.com/spf13/viper"
)

const (
	exitOK      = 0
	exitFailure = 1
)

// CLI represents the complete command line of the movierating application
type CLI struct {
	Title  string `help:"Title of the movie to look up" required:""`
	Year   int    `help:"Release year, to narrow down the search"`
	APIKey string `name:"api-key" help:"OMDB API key (defaults to $OMDB_API_KEY)"`

	Config string `help:"Path to a YAML config file" type:"path"`

	// Cache flags
	Cache   bool   `help:"Cache OMDB responses in a local SQLite database"`
	CacheDB string `name:"cache-db" help:"Path to cache SQLite database file" type:"path"`
	Refresh bool   `help:"Ignore cached responses, but store fresh ones"`

	Debug bool `help:"Enable debug logging on stderr"`
}

// Execute runs the CLI against the process arguments and exits with its status
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run parses args, looks up the rating and writes it to stdout.
// Every failure is reported as one line on stderr; the return value is the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	var cli CLI

	exited := false
	exitCode := exitOK
	parser, err := kong.New(&cli,
		kong.Name("movierating"),
		kong.Description("Look up the Rotten Tomatoes rating of a movie in the OMDB API."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			exited = true
			exitCode = code
		}),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "movierating: error: %v\n", err)
		return exitFailure
	}

	_, err = parser.Parse(args)
	if exited {
		// --help has already been written
		return exitCode
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "movierating: error: %v\n", err)
		return exitFailure
	}

	initLogging(stderr, cli.Debug)

	rating, err := lookup(context.Background(), &cli)
	if err != nil {
		slog.Debug("Lookup failed", "error", err)
		_, _ = fmt.Fprintln(stderr, errors.Diagnostic(err))
		return exitFailure
	}

	_, _ = fmt.Fprintln(stdout, rating)
	return exitOK
}

func lookup(ctx context.Context, cli *CLI) (string, error) {
	if err := initConfig(cli.Config); err != nil {
		return "", err
	}
	updateGlobalConfig(cli)
	cfg := config.Load()

	apiKey, _, err := config.ResolveAPIKey(config.DefaultAPIKeySources(cli.APIKey))
	if err != nil {
		return "", err
	}

	opts := []omdb.Option{
		omdb.WithBaseURL(cfg.BaseURL),
		omdb.WithTimeout(cfg.Timeout),
	}
	if cfg.CacheEnabled {
		db, err := cache.Open(cfg.CacheDBFile)
		if err != nil {
			slog.Warn("Cache unavailable, continuing without it", "path", cfg.CacheDBFile, "error", err)
		} else {
			slog.Debug("Using response cache", "path", db.Path())
			defer func() {
				if err := db.Close(); err != nil {
					slog.Warn("Failed to close cache database", "error", err)
				}
			}()
			if _, err := db.ClearExpired(cache.OMDBTable); err != nil {
				slog.Warn("Failed to clear expired cache entries", "error", err)
			}
			opts = append(opts, omdb.WithCache(db, cfg.CacheTTL, cfg.NegativeCacheTTL, cfg.Refresh))
		}
	}

	client := omdb.NewClient(apiKey, opts...)
	return client.RottenTomatoesRating(ctx, omdb.LookupRequest{Title: cli.Title, Year: cli.Year})
}

// initConfig reads the config file at path, or searches the user config
// directory and the working directory when path is empty. A missing file is fine.
func initConfig(path string) error {
	config.SetDefaults()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, config.AppName))
		}
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stdErrors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults")
			return nil
		}
		return errors.NewConfigError("Sorry, the config file could not be read", err)
	}

	slog.Debug("Using config file", "path", viper.ConfigFileUsed())
	return nil
}

func updateGlobalConfig(cli *CLI) {
	// Flags only override the config file when given
	if cli.Cache {
		viper.Set("cache.enabled", true)
	}
	if cli.CacheDB != "" {
		viper.Set("cache.dbfile", cli.CacheDB)
	}
	viper.Set("cache.refresh", cli.Refresh)
}

func initLogging(w io.Writer, debug bool) {
	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}

	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
