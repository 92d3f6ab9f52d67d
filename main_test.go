package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/expatpedia/directory/internal/config"
	"github.com/expatpedia/directory/internal/models"
)

func stubRunDirectory(t *testing.T, fn func(ctx context.Context, cfg *config.Config, q models.Query, skipFill bool) (*models.View[models.Member], *models.FetchStats, error)) {
	t.Helper()
	original := runDirectory
	t.Cleanup(func() { runDirectory = original })
	runDirectory = fn

	os.Setenv("BACKEND_URL", "https://backend.test")
	os.Unsetenv("METRICS_ENABLED")
	os.Unsetenv("DYNAMODB_ENABLED")
	os.Unsetenv("AWS_LAMBDA_FUNCTION_NAME")
	t.Cleanup(func() { os.Unsetenv("BACKEND_URL") })
}

func TestHandleRequest(t *testing.T) {
	var gotQuery models.Query
	var gotSkip bool
	stubRunDirectory(t, func(ctx context.Context, cfg *config.Config, q models.Query, skipFill bool) (*models.View[models.Member], *models.FetchStats, error) {
		if cfg.Backend.BaseURL != "https://backend.test" {
			t.Fatalf("unexpected base url %s", cfg.Backend.BaseURL)
		}
		gotQuery, gotSkip = q, skipFill
		return &models.View[models.Member]{
			Items:      []models.Member{{ID: "1", Name: "Aaron"}},
			Page:       2,
			TotalPages: 3,
			State:      models.StateComplete,
		}, &models.FetchStats{RecordsLoaded: 20}, nil
	})

	event := models.LambdaEvent{Letter: "a", Sort: "desc", Page: 2, SkipFill: true}
	resp, err := HandleRequest(context.Background(), event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected status 200, got %d (%s)", resp.StatusCode, resp.Message)
	}
	if gotQuery.Letter != "A" || gotQuery.Sort != models.SortDesc || gotQuery.Page != 2 || !gotSkip {
		t.Fatalf("unexpected query %+v (skip %v)", gotQuery, gotSkip)
	}
	if resp.Message != "Directory page 2 of 3: 1 members" || resp.Stats.RecordsLoaded != 20 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHandleRequestPartialMessage(t *testing.T) {
	stubRunDirectory(t, func(ctx context.Context, cfg *config.Config, q models.Query, skipFill bool) (*models.View[models.Member], *models.FetchStats, error) {
		return &models.View[models.Member]{Page: 1, TotalPages: 3, State: models.StateFirstPageReady}, &models.FetchStats{}, nil
	})

	resp, err := HandleRequest(context.Background(), models.LambdaEvent{SkipFill: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(resp.Message, "[first_page_ready]") {
		t.Fatalf("expected partial-load message, got %s", resp.Message)
	}
}

func TestHandleRequestScheduledEvent(t *testing.T) {
	called := false
	stubRunDirectory(t, func(ctx context.Context, cfg *config.Config, q models.Query, skipFill bool) (*models.View[models.Member], *models.FetchStats, error) {
		called = true
		if q != models.NewQuery() {
			t.Fatalf("expected default query, got %+v", q)
		}
		return &models.View[models.Member]{Page: 1, TotalPages: 1, State: models.StateComplete}, &models.FetchStats{}, nil
	})

	event := models.LambdaEvent{Source: "aws.events", DetailType: "Scheduled Event"}
	resp, err := HandleRequest(context.Background(), event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.StatusCode != 200 || !called {
		t.Fatalf("expected status 200, got %d (%s)", resp.StatusCode, resp.Message)
	}
}

func TestHandleRequestErrors(t *testing.T) {
	stubRunDirectory(t, func(ctx context.Context, cfg *config.Config, q models.Query, skipFill bool) (*models.View[models.Member], *models.FetchStats, error) {
		return nil, nil, errors.New("backend unavailable")
	})

	tests := []struct {
		name    string
		event   models.LambdaEvent
		message string
	}{
		{name: "unsupported source", event: models.LambdaEvent{Source: "aws.s3"}, message: "unsupported event source"},
		{name: "invalid sort", event: models.LambdaEvent{Sort: "sideways"}, message: "invalid sort order"},
		{name: "backend failure", event: models.LambdaEvent{}, message: "backend unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := HandleRequest(context.Background(), tt.event)
			if err != nil {
				t.Fatalf("expected error response, got %v", err)
			}
			if resp.StatusCode != 500 || !strings.Contains(resp.Message, tt.message) {
				t.Fatalf("expected 500 with %q, got %d (%s)", tt.message, resp.StatusCode, resp.Message)
			}
		})
	}
}
