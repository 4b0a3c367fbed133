package graph

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/syssam/modelgraph"
)

// ReflectionPolicy decides what happens when the provider reports that a
// type has no reflection metadata.
type ReflectionPolicy uint

const (
	// Lenient treats the type as having no relationships (and no
	// ancestors) and continues.
	Lenient ReflectionPolicy = iota
	// Strict returns the provider error to the caller.
	Strict
)

// String returns the policy name.
func (p ReflectionPolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// Descent selects which links the extraction follows.
type Descent uint

const (
	// Relationships follows relationship targets and subtypes.
	Relationships Descent = iota
	// SubtypesOnly follows subtypes only and emits no relationship edges.
	SubtypesOnly
)

// Config holds the extraction settings.
type Config struct {
	// FQLabels labels vertices with qualified instead of simple names.
	FQLabels bool
	// Policy for types without reflection metadata.
	Policy ReflectionPolicy
	// Descent mode of the vertex pass.
	Descent Descent
	// Hasher derives vertex and edge ids.
	Hasher Hasher
	// Logger receives debug events. Never nil after NewConfig.
	Logger *zap.Logger
	// Workers bounds the parallelism of ExtractAll.
	Workers int
}

// Option configures extraction.
type Option func(*Config) error

// WithFQLabels enables fully-qualified vertex labels.
func WithFQLabels(on bool) Option {
	return func(c *Config) error {
		c.FQLabels = on
		return nil
	}
}

// WithReflectionPolicy sets the policy for unmapped types.
func WithReflectionPolicy(p ReflectionPolicy) Option {
	return func(c *Config) error {
		if p != Lenient && p != Strict {
			return modelgraph.NewConfigError("Policy", p, "unsupported reflection policy")
		}
		c.Policy = p
		return nil
	}
}

// WithDescent sets the vertex discovery mode.
func WithDescent(d Descent) Option {
	return func(c *Config) error {
		if d != Relationships && d != SubtypesOnly {
			return modelgraph.NewConfigError("Descent", d, "unsupported descent mode")
		}
		c.Descent = d
		return nil
	}
}

// WithHasher sets the id hasher.
func WithHasher(h Hasher) Option {
	return func(c *Config) error {
		if h == nil {
			return modelgraph.NewConfigError("Hasher", nil, "hasher cannot be nil")
		}
		c.Hasher = h
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return modelgraph.NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithWorkers sets the number of parallel extractions run by ExtractAll.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return modelgraph.NewConfigError("Workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// NewConfig creates a Config with defaults and the given options applied.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Hasher:  SHA1Hasher{},
		Logger:  zap.NewNop(),
		Workers: runtime.GOMAXPROCS(0),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
