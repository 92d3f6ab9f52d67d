package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/expatpedia/directory/internal/config"
	"github.com/expatpedia/directory/internal/directory"
	"github.com/expatpedia/directory/internal/log"
	"github.com/expatpedia/directory/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	flagLogLevel  string
	flagLogFormat string
	flagBaseURL   string
	flagToken     string
	flagMaxPages  int
	flagDebounce  string

	lambdaHandler func(ctx context.Context, event models.LambdaEvent) (*models.LambdaResponse, error)
	openDirectory func(ctx context.Context, cfg *config.Config) (*directory.Directory, error)
	emitStats     func(ctx context.Context, cfg *config.Config, listing string, stats models.FetchStats) error
)

// SetLambdaHandler registers the Lambda handler used in Lambda mode.
func SetLambdaHandler(handler func(ctx context.Context, event models.LambdaEvent) (*models.LambdaResponse, error)) {
	lambdaHandler = handler
}

// SetOpenDirectory registers the factory that wires a Directory from config.
func SetOpenDirectory(factory func(ctx context.Context, cfg *config.Config) (*directory.Directory, error)) {
	openDirectory = factory
}

// SetStatsEmitter registers the hook that publishes a run's fetch counters.
func SetStatsEmitter(emit func(ctx context.Context, cfg *config.Config, listing string, stats models.FetchStats) error) {
	emitStats = emit
}

var rootCmd = &cobra.Command{
	Use:           "directory",
	Short:         "Browse the Expatpedia member directory, events and blog",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI or Lambda handler depending on environment.
func Execute() {
	if isLambda() {
		if lambdaHandler == nil {
			logrus.Fatal("lambda handler is not configured")
		}
		lambda.Start(lambdaHandler)
		return
	}

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Backend API origin")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Backend bearer token")
	rootCmd.PersistentFlags().IntVar(&flagMaxPages, "max-pages", 0, "Ceiling on background pages per filter context")
	rootCmd.PersistentFlags().StringVar(&flagDebounce, "debounce", "", "Search debounce interval (e.g. 400ms)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: pretty, text or json")

	rootCmd.AddCommand(membersCmd, eventsCmd, blogCmd, galleryCmd, categoriesCmd, contactCmd, browseCmd)
}

func isLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// loadConfig reads configuration, applies flag overrides and configures logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := overrideConfigFromFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	log.ConfigureStandard(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

// setup loads configuration and opens the directory it describes.
func setup(cmd *cobra.Command) (*config.Config, *directory.Directory, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if openDirectory == nil {
		return nil, nil, fmt.Errorf("directory is not configured")
	}
	dir, err := openDirectory(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, dir, nil
}

// publish logs a run's counters and hands them to the metrics hook.
func publish(ctx context.Context, cfg *config.Config, listing string, stats models.FetchStats) {
	logrus.WithField("listing", listing).Info(stats.String())
	if emitStats == nil {
		return
	}
	if err := emitStats(ctx, cfg, listing, stats); err != nil {
		logrus.WithError(err).Warn("⚠ Failed to publish fetch metrics")
	}
}

func overrideConfigFromFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.Backend.BaseURL = flagBaseURL
	}
	if flags.Changed("token") {
		cfg.Backend.Token = flagToken
	}
	if flags.Changed("max-pages") {
		cfg.Directory.MaxPages = flagMaxPages
	}
	if flags.Changed("debounce") {
		d, err := time.ParseDuration(flagDebounce)
		if err != nil {
			return fmt.Errorf("invalid --debounce: %w", err)
		}
		cfg.Directory.Debounce = d
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = flagLogFormat
	}
	return nil
}
