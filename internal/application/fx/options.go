package fx

import (
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Option configures optional collaborators of the services in this package
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *telemetry.KernelMetrics
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

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
