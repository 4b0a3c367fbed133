package registry

import "github.com/syssam/modelgraph"

type config struct {
	universalBase string
	defaultModule string
}

// Option configures a Registry.
type Option func(*config) error

// WithUniversalBase appends name to the ancestor list of every type, the
// way every class ultimately derives from a language's root object.
func WithUniversalBase(name string) Option {
	return func(c *config) error {
		if name == "" {
			return modelgraph.NewConfigError("UniversalBase", nil, "name cannot be empty")
		}
		c.universalBase = name
		return nil
	}
}

// WithDefaultModule sets the module of descriptors that declare none.
func WithDefaultModule(module string) Option {
	return func(c *config) error {
		c.defaultModule = module
		return nil
	}
}
