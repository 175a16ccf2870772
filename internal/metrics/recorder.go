// Package metrics publishes checkout counters to CloudWatch. Publication is
// best effort: failures are logged and never returned to the checkout.
package metrics

import (
	"context"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/aws"
)

const (
	MetricCheckoutAttempts = "CheckoutAttempts"
	MetricStockConflicts   = "StockConflicts"
	DimensionOutcome       = "Outcome"
)

// Recorder is safe for concurrent use.
type Recorder struct {
	client    aws.CloudWatchAPI
	namespace string
	logger    *zap.Logger
	nowFunc   func() time.Time
}

func NewRecorder(client aws.CloudWatchAPI, namespace string, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		client:    client,
		namespace: namespace,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// RecordCheckout counts one checkout attempt with its outcome
// (success, precondition, availability, ...).
func (r *Recorder) RecordCheckout(ctx context.Context, outcome string) {
	r.put(ctx, cwtypes.MetricDatum{
		MetricName: sdkaws.String(MetricCheckoutAttempts),
		Dimensions: []cwtypes.Dimension{
			{Name: sdkaws.String(DimensionOutcome), Value: sdkaws.String(outcome)},
		},
		Unit:      cwtypes.StandardUnitCount,
		Value:     sdkaws.Float64(1),
		Timestamp: sdkaws.Time(r.nowFunc()),
	})
}

// RecordStockConflict counts a conditional stock decrement that lost.
func (r *Recorder) RecordStockConflict(ctx context.Context, productID string) {
	r.logger.Info("stock conflict", zap.String("product_id", productID))
	r.put(ctx, cwtypes.MetricDatum{
		MetricName: sdkaws.String(MetricStockConflicts),
		Unit:       cwtypes.StandardUnitCount,
		Value:      sdkaws.Float64(1),
		Timestamp:  sdkaws.Time(r.nowFunc()),
	})
}

func (r *Recorder) put(ctx context.Context, datum cwtypes.MetricDatum) {
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(r.namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		r.logger.Warn("put metric data failed",
			zap.String("metric", sdkaws.ToString(datum.MetricName)),
			zap.Error(err))
	}
}
