package fieldselector

import "go.uber.org/zap"

// Default wire settings, used when the corresponding option is not supplied.
const (
	DefaultQueryParam = "fields"
	DefaultHeaderName = "x-fields"
	DefaultSeparator  = ","
)

// config holds configuration set via functional options.
type config struct {
	queryParam string
	headerName string
	separator  string
	logger     *zap.Logger
	metrics    *Metrics
}

// Option configures a Selector during construction.
type Option func(*config)

// WithQueryParam sets the query-string key read for a raw selection string.
// An empty key is ignored and the default ("fields") is kept.
func WithQueryParam(key string) Option {
	return func(c *config) {
		if key != "" {
			c.queryParam = key
		}
	}
}

// WithHeaderName sets the header key read when the query key is absent.
// The key is matched in its canonical header form, so any casing works.
// An empty name is ignored and the default ("x-fields") is kept.
func WithHeaderName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.headerName = name
		}
	}
}

// WithSeparator sets the delimiter used to split a raw selection string
// into tokens. An empty separator is ignored and the default (",") is kept.
func WithSeparator(sep string) Option {
	return func(c *config) {
		if sep != "" {
			c.separator = sep
		}
	}
}

// WithLogger sets the logger used for selection diagnostics. Discarded
// tokens and default fallbacks are reported at debug level. The default is
// a no-op logger, so the zero configuration stays silent.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables Prometheus instrumentation of selection outcomes.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

func defaultConfig() config {
	return config{
		queryParam: DefaultQueryParam,
		headerName: DefaultHeaderName,
		separator:  DefaultSeparator,
		logger:     zap.NewNop(),
	}
}
