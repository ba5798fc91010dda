package graph

import "github.com/zelalem61/personal-chat-bot/graph/emit"

// Option configures an Engine at construction time.
//
// Example:
//
//	engine := graph.NewEngine(compiled,
//	    graph.WithEmitter(emit.NewLogEmitter(logger)),
//	    graph.WithMaxSteps(50),
//	)
type Option func(*engineConfig)

type engineConfig struct {
	emitter  emit.Emitter
	metrics  *Metrics
	maxSteps int
}

// WithEmitter attaches an emitter that receives run and node lifecycle
// events. A nil emitter is ignored.
func WithEmitter(e emit.Emitter) Option {
	return func(cfg *engineConfig) {
		if e != nil {
			cfg.emitter = e
		}
	}
}

// WithMetrics attaches Prometheus metrics updated during execution.
func WithMetrics(m *Metrics) Option {
	return func(cfg *engineConfig) {
		cfg.metrics = m
	}
}

// WithMaxSteps overrides the engine's step budget. Values below one keep
// DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(cfg *engineConfig) {
		if n > 0 {
			cfg.maxSteps = n
		}
	}
}
