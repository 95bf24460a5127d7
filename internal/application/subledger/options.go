package subledger

import (
	"github.com/erp/kernel/internal/domain/subledger"
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Option configures optional collaborators of the services in this package
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *telemetry.KernelMetrics
	buckets []subledger.BucketConfig
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the kernel metrics recorder
func WithMetrics(metrics *telemetry.KernelMetrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithDefaultBuckets sets the aging buckets used when a caller passes none
func WithDefaultBuckets(buckets []subledger.BucketConfig) Option {
	return func(o *options) {
		o.buckets = buckets
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if len(o.buckets) == 0 {
		o.buckets = subledger.DefaultBuckets()
	}
	return o
}
