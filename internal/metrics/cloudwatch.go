package metrics

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/expatpedia/directory/internal/models"
)

// CloudWatchAPI defines the CloudWatch client interface used for metrics.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Emitter sends fetch counters to CloudWatch.
type Emitter struct {
	client    CloudWatchAPI
	namespace string
}

// NewEmitter creates a CloudWatch metrics emitter.
func NewEmitter(cfg aws.Config, namespace string) *Emitter {
	return &Emitter{
		client:    cloudwatch.NewFromConfig(cfg),
		namespace: namespace,
	}
}

// EmitFetchStats publishes one run's counters. The Listing dimension
// (members, events, blog) keeps each listing's cache hit rate and
// background fill volume on its own graph.
func (e *Emitter) EmitFetchStats(ctx context.Context, listing string, stats models.FetchStats) error {
	dims := []types.Dimension{{Name: aws.String("Listing"), Value: aws.String(listing)}}
	metrics := []types.MetricDatum{
		metricDatum("CacheHits", stats.CacheHits, dims),
		metricDatum("NetworkFetches", stats.NetworkFetches, dims),
		metricDatum("Cancelled", stats.Cancelled, dims),
		metricDatum("Failures", stats.Failures, dims),
		metricDatum("PagesFilled", stats.PagesFilled, dims),
		metricDatum("RecordsLoaded", stats.RecordsLoaded, dims),
	}

	_, err := e.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(e.namespace),
		MetricData: metrics,
	})
	return err
}

func metricDatum(name string, value int, dims []types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dims,
		Unit:       types.StandardUnitCount,
		Value:      aws.Float64(float64(value)),
	}
}
