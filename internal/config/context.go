package config

import "context"

type contextKey struct{}

// FromContext returns the config stored in ctx, or Default.
func FromContext(ctx context.Context) *Config {
	if ctx == nil {
		return Default()
	}
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok && cfg != nil {
		return cfg
	}
	return Default()
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, cfg)
}
