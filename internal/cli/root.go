// Package cli implements samctl, an operator tool for poking the rating
// oracle the same way the server does: profile lookups and anonymous
// recommendations, with text or JSON output.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/sakif/practice-tracker/internal/config"
	"github.com/sakif/practice-tracker/internal/oracle"
	"github.com/sakif/practice-tracker/internal/service"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	OracleURL string
	Timeout   time.Duration
	Format    string // "json" | "text"
	Verbose   bool

	oracle config.Oracle
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Flag defaults come from the same
// ORACLE_* variables the server reads.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	if err := env.ParseWithOptions(&opts.oracle, env.Options{Prefix: "ORACLE_"}); err != nil {
		// Bad env values fall back to the built-in defaults below.
		opts.oracle = config.Oracle{}
	}
	if opts.oracle.BaseURL == "" {
		opts.oracle.BaseURL = "https://solved.ac/api/v3"
	}
	if opts.oracle.Timeout <= 0 {
		opts.oracle.Timeout = 10 * time.Second
	}

	cmd := &cobra.Command{
		Use:   "samctl",
		Short: "Query the rating oracle the way the practice tracker does",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Timeout <= 0 {
				return fmt.Errorf("timeout must be positive, got %s", opts.Timeout)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.OracleURL, "oracle-url", opts.oracle.BaseURL, "rating oracle base URL")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", opts.oracle.Timeout, "per-request timeout")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log oracle requests to stderr")

	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewRecommendCommand(opts))

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		}
		return 1
	}
	return 0
}

// recommender builds the anonymous half of the recommendation service.
// Neither profile lookups nor tier searches touch user storage.
func (o *RootOptions) recommender(cmd *cobra.Command) *service.RecommendService {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	client := oracle.NewClient(oracle.Config{
		BaseURL:           o.OracleURL,
		Timeout:           o.Timeout,
		MaxTier:           o.oracle.MaxTier,
		RequestsPerSecond: o.oracle.RequestsPerSecond,
		Burst:             o.oracle.Burst,
		Logger:            logger,
	})
	return service.NewRecommendService(nil, client, logger)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}
