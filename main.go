package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/expatpedia/directory/cmd"
	"github.com/expatpedia/directory/internal/api"
	"github.com/expatpedia/directory/internal/cache"
	"github.com/expatpedia/directory/internal/config"
	"github.com/expatpedia/directory/internal/directory"
	store "github.com/expatpedia/directory/internal/dynamodb"
	"github.com/expatpedia/directory/internal/interfaces"
	"github.com/expatpedia/directory/internal/metrics"
	"github.com/expatpedia/directory/internal/models"
	"github.com/expatpedia/directory/internal/secrets"
	"github.com/sirupsen/logrus"
)

func main() {
	cmd.SetLambdaHandler(HandleRequest)
	cmd.SetOpenDirectory(openDirectory)
	cmd.SetStatsEmitter(emitStats)
	cmd.Execute()
}

// HandleRequest is the AWS Lambda handler. It loads the requested member
// page, waits for the background fill unless the event skips it, and returns
// the rendered view.
func HandleRequest(ctx context.Context, event models.LambdaEvent) (*models.LambdaResponse, error) {
	if event.Source != "" || event.DetailType != "" {
		if !isScheduledEvent(event) {
			return models.NewErrorResponse(fmt.Errorf("unsupported event source")), nil
		}
	}
	cfg, err := config.Load("")
	if err != nil {
		return models.NewErrorResponse(err), nil
	}
	cfg.IsLambda = true
	if err := config.Validate(cfg); err != nil {
		return models.NewErrorResponse(err), nil
	}

	q, err := event.Query()
	if err != nil {
		return models.NewErrorResponse(err), nil
	}

	view, stats, err := runDirectory(ctx, cfg, q, event.SkipFill)
	if err != nil {
		return models.NewErrorResponse(err), nil
	}
	if err := emitStats(ctx, cfg, "members", *stats); err != nil {
		logrus.WithError(err).Warn("⚠ Failed to publish fetch metrics")
	}
	return models.NewSuccessResponse(view, stats), nil
}

func isScheduledEvent(event models.LambdaEvent) bool {
	return event.Source == "aws.events" && event.DetailType == "Scheduled Event"
}

var runDirectory = func(ctx context.Context, cfg *config.Config, q models.Query, skipFill bool) (*models.View[models.Member], *models.FetchStats, error) {
	dir, err := openDirectory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := dir.SessionOptions()
	opts.NoFill = skipFill
	page, err := dir.OpenMembers(ctx, q, opts, nil)
	if err != nil {
		return nil, nil, err
	}
	defer page.Session.Close()

	if err := page.Session.Wait(ctx); err != nil {
		return nil, nil, err
	}
	view := page.Session.View()
	stats := page.Session.Stats()
	return &view, &stats, nil
}

// openDirectory wires the API client, response cache and category store
// described by cfg.
func openDirectory(ctx context.Context, cfg *config.Config) (*directory.Directory, error) {
	token, err := secrets.ResolveBackendToken(cfg.Backend.Token, cfg.Backend.TokenSecret, cfg.Backend.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("backend token: %w", err)
	}

	client, err := api.NewClient(ctx, api.Options{
		BaseURL:    cfg.Backend.BaseURL,
		Token:      token,
		Timeout:    cfg.Backend.Timeout,
		MaxRetries: cfg.Backend.MaxRetries,
		Cache:      cache.New(cfg.Cache.TTL),
	})
	if err != nil {
		return nil, err
	}

	var categories interfaces.CategoryStore
	if cfg.DynamoDB.Enabled {
		dynamoStore, storeErr := store.NewStore(ctx, cfg.DynamoDB, cfg.Backend.BaseURL, cfg.Cache.CategoriesTTL)
		if storeErr != nil {
			logrus.WithError(storeErr).Warn("⚠ DynamoDB store init failed, categories cached in memory")
		} else {
			categories = dynamoStore
			logrus.WithFields(logrus.Fields{
				"table":    cfg.DynamoDB.TableName,
				"region":   cfg.DynamoDB.Region,
				"ttl_days": cfg.DynamoDB.TTLDays,
			}).Info("✅ Category cache enabled (DynamoDB)")
		}
	}
	if categories == nil {
		categories = directory.NewMemoryCategoryStore(cfg.Cache.CategoriesTTL)
	}

	return directory.New(client, categories, cfg.Directory), nil
}

// emitStats publishes a run's counters when metrics are enabled.
func emitStats(ctx context.Context, cfg *config.Config, listing string, stats models.FetchStats) error {
	if !cfg.Metrics.Enabled {
		return nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Metrics.Region))
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}
	var emitter interfaces.MetricsEmitter = metrics.NewEmitter(awsCfg, cfg.Metrics.Namespace)
	return emitter.EmitFetchStats(ctx, listing, stats)
}
