package contracts

// ClientOptions defines the configuration for a Registry.
type ClientOptions struct {
	Logger     Logger   // Logger for lifecycle events and teardown failures.
	LogLevel   LogLevel // Level of logging to use.
	ClientName string   // Name the engine registers with the platform, where supported.
	Engine     Engine   // Explicit engine instance; overrides EngineName.
	EngineName string   // Named engine from the factory's initializer map.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the registry and its engine.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithClientName sets the name the engine registers with the platform.
func WithClientName(name string) Option {
	return func(opts *ClientOptions) {
		opts.ClientName = name
	}
}

// WithEngine supplies an engine instance directly, bypassing the
// initializer map. Used by tests and by callers embedding their own engine.
func WithEngine(e Engine) Option {
	return func(opts *ClientOptions) {
		opts.Engine = e
	}
}

// WithEngineName selects a registered engine implementation by name.
func WithEngineName(name string) Option {
	return func(opts *ClientOptions) {
		opts.EngineName = name
	}
}
