package smfreader

import (
	"go.uber.org/zap"
)

// Settings used by a single decode call.
type decodeOptions struct {
	logger *zap.Logger
}

// Option modifies the settings of a decode call.
type Option func(*decodeOptions)

// WithLogger sets the logger that receives decoder warnings (at Warn level)
// and per-track summaries (at Debug level). Warnings are recorded in the
// returned SMFFile regardless of the logger.
func WithLogger(l *zap.Logger) Option {
	return func(opts *decodeOptions) {
		opts.logger = l
	}
}

// Applies the given options on top of the defaults.
func applyDefaultOptions(opts ...Option) decodeOptions {
	options := decodeOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = zap.NewNop()
	}
	return options
}
