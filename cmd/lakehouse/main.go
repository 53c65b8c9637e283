package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/lakehouselib/lakehouse/client"
	"github.com/lakehouselib/lakehouse/output"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	email      string
	password   string
	outputMode string
	jsonOutput bool
	quiet      bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "lakehouse",
	Version: version,
	Short:   "Client for the lakehouse catalog and storage API",
	Long: `lakehouse - client for the lakehouse catalog and storage API

Browse collections and files, search the catalog with query
expressions such as "file_size>=1024" or "file_name*sales", and move
files through signed URLs.

Connection settings come from the profile file (~/.lakehouse/config.yaml),
then LAKEHOUSE_* environment variables, then flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.lakehouse/config.yaml, env: LAKEHOUSE_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: LAKEHOUSE_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "API endpoint (default: http://localhost:8000, env: LAKEHOUSE_ENDPOINT)")
	rootCmd.PersistentFlags().StringVar(&email, "email", "", "login email (env: LAKEHOUSE_EMAIL)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "login password (env: LAKEHOUSE_PASSWORD)")
	rootCmd.PersistentFlags().StringVarP(&outputMode, "output", "o", "table", "listing format: table, json, raw, df")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and transfers")

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(bucketsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// errors already shown by a command are wrapped in reportedError
		var reported reportedError
		if !errors.As(err, &reported) {
			_ = getFormatter().FormatError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// reportedError marks an error the command has already written.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// handleError writes err with the active formatter and marks it reported.
func handleError(err error) error {
	_ = getFormatter().FormatError(os.Stderr, err)
	return reportedError{err: err}
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	})))
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := client.ConfigPathFromEnv(); p != "" {
		return p
	}
	return client.DefaultConfigPath()
}

// buildConfig merges config from the profile file, env vars, and flags
// (flags take precedence).
func buildConfig() (*client.Config, error) {
	var configs []*client.Config

	explicit := cfgFile != "" || client.ConfigPathFromEnv() != ""
	name := profile
	if name == "" {
		name = client.ProfileFromEnv()
	}

	if path := getConfigPath(); path != "" {
		file, err := client.LoadConfigFile(path)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(name)
			if profileErr != nil && (name != "" || !errors.Is(profileErr, client.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, client.ConfigFromProfile(p))
		case explicit || name != "":
			return nil, err
		}
	}

	configs = append(configs, client.ConfigFromEnv(), &client.Config{
		Endpoint: endpoint,
		Email:    email,
		Password: password,
	})

	return client.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() client.Formatter {
	return client.NewFormatter(jsonOutput, quiet)
}

// getMode returns the listing mode selected by --output. JSON output
// always lists raw records.
func getMode() (output.Mode, error) {
	if jsonOutput {
		return output.ModeRaw, nil
	}
	return output.ParseMode(outputMode)
}

// getClient returns a client with an authenticated session.
func getClient(ctx context.Context) (*client.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateWithAuth(); err != nil {
		return nil, fmt.Errorf("%w (set it in a profile, LAKEHOUSE_* or a flag)", err)
	}

	opts := []client.Option{client.WithLogger(slog.Default())}
	if !quiet && !jsonOutput {
		opts = append(opts, client.WithProgress(newTransferProgress(os.Stderr).Update))
	}

	c, err := client.NewFromConfig(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := c.Authenticate(ctx, cfg.Email, cfg.Password); err != nil {
		return nil, err
	}
	return c, nil
}
