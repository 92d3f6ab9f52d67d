package config

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures configuration is complete and well-formed.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	var errs []string

	requireNonEmpty := func(value string, field string) {
		if value == "" {
			errs = append(errs, fmt.Sprintf("%s is required", field))
		}
	}

	requirePositive := func(value int, field string) {
		if value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive", field))
		}
	}

	requireURL := func(value string, field string) {
		if value == "" {
			errs = append(errs, fmt.Sprintf("%s is required", field))
			return
		}
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("%s must be an absolute URL", field))
		}
	}

	requireURL(cfg.Backend.BaseURL, "backend.base_url")
	if cfg.Backend.MaxRetries < 0 {
		errs = append(errs, "backend.max_retries must not be negative")
	}
	if cfg.Cache.TTL <= 0 {
		errs = append(errs, "cache.ttl must be positive")
	}
	if cfg.Cache.CategoriesTTL < cfg.Cache.TTL {
		errs = append(errs, "cache.categories_ttl must not be shorter than cache.ttl")
	}

	requirePositive(cfg.Directory.MembersPageSize, "directory.members_page_size")
	requirePositive(cfg.Directory.EventsPageSize, "directory.events_page_size")
	requirePositive(cfg.Directory.BlogPageSize, "directory.blog_page_size")
	requirePositive(cfg.Directory.MaxPages, "directory.max_pages")
	if cfg.Directory.Debounce < 0 {
		errs = append(errs, "directory.debounce must not be negative")
	}
	if cfg.Directory.PaginationDelta < 1 || cfg.Directory.PaginationDelta > 2 {
		errs = append(errs, "directory.pagination_delta must be 1 or 2")
	}
	if _, err := language.Parse(cfg.Directory.Locale); err != nil {
		errs = append(errs, "directory.locale must be a BCP 47 tag")
	}

	if cfg.IsLambda && cfg.Backend.Token == "" && cfg.Backend.TokenFile != "" {
		errs = append(errs, "backend.token_file is not readable in lambda, use backend.token_secret")
	}

	if cfg.DynamoDB.Enabled {
		requireNonEmpty(cfg.DynamoDB.TableName, "dynamodb.table_name")
		requireNonEmpty(cfg.DynamoDB.Region, "dynamodb.region")
		if cfg.DynamoDB.TTLDays <= 0 {
			errs = append(errs, "dynamodb.ttl_days must be positive")
		}
	}

	if cfg.Metrics.Enabled {
		requireNonEmpty(cfg.Metrics.Namespace, "metrics.namespace")
		requireNonEmpty(cfg.Metrics.Region, "metrics.region")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
