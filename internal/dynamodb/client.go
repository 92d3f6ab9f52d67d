package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/expatpedia/directory/internal/config"
	"github.com/expatpedia/directory/internal/models"
)

type itemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Store implements the CategoryStore interface using DynamoDB.
type Store struct {
	client    itemAPI
	tableName string
	ttlDays   int
	maxAge    time.Duration
	backend   string
	now       func() time.Time
}

// NewStore creates a new DynamoDB-backed CategoryStore for one backend origin.
// Snapshots older than maxAge are ignored on load.
func NewStore(ctx context.Context, cfg config.DynamoDBConfig, backend string, maxAge time.Duration) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.Endpoint != "" {
		// Local development: use static credentials and custom endpoint.
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return newStore(dynamodb.NewFromConfig(awsCfg, clientOpts...), cfg, backend, maxAge), nil
}

func newStore(client itemAPI, cfg config.DynamoDBConfig, backend string, maxAge time.Duration) *Store {
	ttlDays := cfg.TTLDays
	if ttlDays <= 0 {
		ttlDays = 7
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Store{
		client:    client,
		tableName: cfg.TableName,
		ttlDays:   ttlDays,
		maxAge:    maxAge,
		backend:   backend,
		now:       time.Now,
	}
}

// SaveCategories replaces the stored category snapshot.
func (s *Store) SaveCategories(ctx context.Context, categories []models.Category) error {
	snapshot := models.NewCategorySnapshot(s.backend, categories, s.ttlDays)
	item, err := attributevalue.MarshalMap(snapshot)
	if err != nil {
		return fmt.Errorf("marshaling categories: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("saving categories: %w", err)
	}

	return nil
}

// LoadCategories returns the stored categories, or nil when there is no
// snapshot or it is no longer fresh. DynamoDB deletes expired items lazily,
// so freshness is checked here as well.
func (s *Store) LoadCategories(ctx context.Context) ([]models.Category, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: models.CategorySnapshotPK},
			"sk": &types.AttributeValueMemberS{Value: models.CategorySnapshotSK(s.backend)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting categories: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var snapshot models.CategorySnapshot
	if err := attributevalue.UnmarshalMap(result.Item, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshaling categories: %w", err)
	}
	if !snapshot.Fresh(s.now().UTC(), s.maxAge) {
		return nil, nil
	}

	return snapshot.CategoryList(), nil
}
