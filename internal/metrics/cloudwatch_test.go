package metrics

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/expatpedia/directory/internal/models"
)

type mockCloudWatch struct {
	input *cloudwatch.PutMetricDataInput
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.input = params
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestEmitFetchStats(t *testing.T) {
	client := &mockCloudWatch{}
	emitter := &Emitter{client: client, namespace: "TestNamespace"}

	stats := models.FetchStats{
		CacheHits:      4,
		NetworkFetches: 3,
		Cancelled:      1,
		PagesFilled:    2,
		RecordsLoaded:  20,
	}

	err := emitter.EmitFetchStats(context.Background(), "members", stats)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.input == nil {
		t.Fatalf("expected metric input to be sent")
	}
	if *client.input.Namespace != "TestNamespace" {
		t.Fatalf("expected namespace TestNamespace, got %s", aws.ToString(client.input.Namespace))
	}
	if len(client.input.MetricData) != 6 {
		t.Fatalf("expected 6 metrics, got %d", len(client.input.MetricData))
	}
	last := client.input.MetricData[5]
	if aws.ToString(last.MetricName) != "RecordsLoaded" || aws.ToFloat64(last.Value) != 20 {
		t.Fatalf("unexpected datum %s=%v", aws.ToString(last.MetricName), aws.ToFloat64(last.Value))
	}
	if aws.ToString(last.Dimensions[0].Value) != "members" {
		t.Fatalf("expected members dimension, got %s", aws.ToString(last.Dimensions[0].Value))
	}
}
