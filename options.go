package cent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type Option func(*Options)

type Options struct {
	Logger     zerolog.Logger
	Registerer prometheus.Registerer
	Kinds      KindRegistry
}

func defaultOptions() Options {
	return Options{
		Logger: zerolog.Nop(),
		Kinds:  defaultKinds,
	}
}

func applyOptions(opts []Option) Options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithLogger sets logger for client and chain events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithRegisterer registers delivery metrics on r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *Options) {
		o.Registerer = r
	}
}

// WithKindRegistry overrides the registry used to classify server errors.
func WithKindRegistry(kinds KindRegistry) Option {
	return func(o *Options) {
		if kinds != nil {
			o.Kinds = kinds
		}
	}
}
