package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the origin of the publication's REST API.
const DefaultBaseURL = "https://exaptpedia.onrender.com"

// DefaultPlaceholderImage is shown when a record has no usable image.
const DefaultPlaceholderImage = "https://via.placeholder.com/600x400?text=No+Image"

// Load reads configuration from .env, file, environment variables, and defaults.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("backend.base_url", DefaultBaseURL)
	v.SetDefault("backend.timeout", "30s")
	v.SetDefault("backend.max_retries", 3)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.categories_ttl", "24h")
	v.SetDefault("directory.members_page_size", 8)
	v.SetDefault("directory.events_page_size", 8)
	v.SetDefault("directory.blog_page_size", 4)
	v.SetDefault("directory.max_pages", 50)
	v.SetDefault("directory.debounce", "400ms")
	v.SetDefault("directory.pagination_delta", 2)
	v.SetDefault("directory.placeholder_image", DefaultPlaceholderImage)
	v.SetDefault("directory.locale", "en")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "pretty")
	v.SetDefault("dynamodb.enabled", false)
	v.SetDefault("dynamodb.table_name", "directory-cache")
	v.SetDefault("dynamodb.region", "eu-west-1")
	v.SetDefault("dynamodb.ttl_days", 7)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "Expatpedia/Directory")
	v.SetDefault("metrics.region", "eu-west-1")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("backend.base_url", "BACKEND_URL")
	_ = v.BindEnv("backend.timeout", "BACKEND_TIMEOUT")
	_ = v.BindEnv("backend.token", "BACKEND_TOKEN")
	_ = v.BindEnv("backend.token_secret", "BACKEND_TOKEN_SECRET")
	_ = v.BindEnv("backend.token_file", "BACKEND_TOKEN_FILE")
	_ = v.BindEnv("backend.max_retries", "BACKEND_MAX_RETRIES")
	_ = v.BindEnv("cache.ttl", "CACHE_TTL")
	_ = v.BindEnv("cache.categories_ttl", "CATEGORIES_CACHE_TTL")
	_ = v.BindEnv("directory.members_page_size", "MEMBERS_PAGE_SIZE")
	_ = v.BindEnv("directory.events_page_size", "EVENTS_PAGE_SIZE")
	_ = v.BindEnv("directory.blog_page_size", "BLOG_PAGE_SIZE")
	_ = v.BindEnv("directory.max_pages", "MAX_BACKGROUND_PAGES")
	_ = v.BindEnv("directory.debounce", "SEARCH_DEBOUNCE")
	_ = v.BindEnv("directory.pagination_delta", "PAGINATION_DELTA")
	_ = v.BindEnv("directory.placeholder_image", "PLACEHOLDER_IMAGE")
	_ = v.BindEnv("directory.locale", "DIRECTORY_LOCALE")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "LOG_FORMAT")
	_ = v.BindEnv("dynamodb.enabled", "DYNAMODB_ENABLED")
	_ = v.BindEnv("dynamodb.table_name", "DYNAMODB_TABLE_NAME")
	_ = v.BindEnv("dynamodb.region", "DYNAMODB_REGION")
	_ = v.BindEnv("dynamodb.endpoint", "DYNAMODB_ENDPOINT")
	_ = v.BindEnv("dynamodb.ttl_days", "DYNAMODB_TTL_DAYS")
	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	_ = v.BindEnv("metrics.namespace", "METRICS_NAMESPACE")
	_ = v.BindEnv("metrics.region", "METRICS_REGION")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("directory")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	// Map values explicitly; durations come through viper's string parsing.
	cfg.Backend.BaseURL = strings.TrimRight(v.GetString("backend.base_url"), "/")
	cfg.Backend.Timeout = v.GetDuration("backend.timeout")
	cfg.Backend.Token = v.GetString("backend.token")
	cfg.Backend.TokenSecret = v.GetString("backend.token_secret")
	cfg.Backend.TokenFile = v.GetString("backend.token_file")
	cfg.Backend.MaxRetries = v.GetInt("backend.max_retries")

	cfg.Cache.TTL = v.GetDuration("cache.ttl")
	cfg.Cache.CategoriesTTL = v.GetDuration("cache.categories_ttl")

	cfg.Directory.MembersPageSize = v.GetInt("directory.members_page_size")
	cfg.Directory.EventsPageSize = v.GetInt("directory.events_page_size")
	cfg.Directory.BlogPageSize = v.GetInt("directory.blog_page_size")
	cfg.Directory.MaxPages = v.GetInt("directory.max_pages")
	cfg.Directory.Debounce = v.GetDuration("directory.debounce")
	cfg.Directory.PaginationDelta = v.GetInt("directory.pagination_delta")
	cfg.Directory.PlaceholderImage = v.GetString("directory.placeholder_image")
	cfg.Directory.Locale = v.GetString("directory.locale")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	cfg.DynamoDB.Enabled = v.GetBool("dynamodb.enabled")
	cfg.DynamoDB.TableName = v.GetString("dynamodb.table_name")
	cfg.DynamoDB.Region = v.GetString("dynamodb.region")
	cfg.DynamoDB.Endpoint = v.GetString("dynamodb.endpoint")
	cfg.DynamoDB.TTLDays = v.GetInt("dynamodb.ttl_days")

	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	cfg.Metrics.Namespace = v.GetString("metrics.namespace")
	cfg.Metrics.Region = v.GetString("metrics.region")

	cfg.IsLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	return cfg, nil
}
