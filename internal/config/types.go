package config

import "time"

// Config holds all configuration for the directory client.
type Config struct {
	Backend   BackendConfig   `json:"backend"`
	Cache     CacheConfig     `json:"cache"`
	Directory DirectoryConfig `json:"directory"`
	Log       LogConfig       `json:"log"`
	DynamoDB  DynamoDBConfig  `json:"dynamodb"`
	Metrics   MetricsConfig   `json:"metrics"`
	IsLambda  bool            `json:"-"`
}

// BackendConfig holds settings for the remote REST API.
type BackendConfig struct {
	BaseURL     string        `json:"base_url"`
	Timeout     time.Duration `json:"timeout"`
	Token       string        `json:"-"`
	TokenSecret string        `json:"token_secret,omitempty"`
	TokenFile   string        `json:"token_file,omitempty"`
	MaxRetries  int           `json:"max_retries"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	TTL           time.Duration `json:"ttl"`
	CategoriesTTL time.Duration `json:"categories_ttl"`
}

// DirectoryConfig holds listing behaviour settings.
type DirectoryConfig struct {
	MembersPageSize  int           `json:"members_page_size"`
	EventsPageSize   int           `json:"events_page_size"`
	BlogPageSize     int           `json:"blog_page_size"`
	MaxPages         int           `json:"max_pages"`
	Debounce         time.Duration `json:"debounce"`
	PaginationDelta  int           `json:"pagination_delta"`
	PlaceholderImage string        `json:"placeholder_image"`
	Locale           string        `json:"locale"`
}

// DynamoDBConfig holds DynamoDB settings for the persistent category cache.
type DynamoDBConfig struct {
	TableName string `json:"table_name"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint,omitempty"`
	Enabled   bool   `json:"enabled"`
	TTLDays   int    `json:"ttl_days"`
}

// MetricsConfig holds CloudWatch settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace"`
	Region    string `json:"region"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}
