package whoops

type Config struct {
	// CatchErrors registers the run as the process-wide trap while the downstream handler runs.
	// Optional. Default value true.
	CatchErrors *bool `env:"CATCH_ERRORS" json:"catchErrors,omitempty" yaml:"catchErrors,omitempty" mapstructure:"catch_errors"`

	// CLI forces the plain text format whatever the Accept header says.
	CLI bool `env:"CLI" json:"cli,omitempty" yaml:"cli,omitempty" mapstructure:"cli"`

	// MaxFrames is the maximum number of stack frames attached to an event.
	// Optional. Default value 64.
	MaxFrames int `env:"MAX_FRAMES" json:"maxFrames,omitempty" yaml:"maxFrames,omitempty" mapstructure:"max_frames"`

	// PageTitle is the title of the pretty HTML page.
	PageTitle string `env:"PAGE_TITLE" json:"pageTitle,omitempty" yaml:"pageTitle,omitempty" mapstructure:"page_title"`

	// HideHeaders lists request headers masked on the pretty HTML page.
	// Optional. Default value DefaultHiddenHeaders.
	HideHeaders []string `env:"HIDE_HEADERS" json:"hideHeaders,omitempty" yaml:"hideHeaders,omitempty" mapstructure:"hide_headers"`

	// TrustedProxy selects the headers the client IP shown in reports is read from.
	TrustedProxy TrustedProxy `envPrefix:"TRUSTED_PROXY_" json:"trustedProxy,omitempty" yaml:"trustedProxy,omitempty" mapstructure:"trusted_proxy"`

	// SkipPaths lists path prefixes, optionally preceded by a method, that bypass the boundary.
	SkipPaths []string `env:"SKIP_PATHS" json:"skipPaths,omitempty" yaml:"skipPaths,omitempty" mapstructure:"skip_paths"`

	// SkipExpressions lists expr-lang expressions evaluated against RequestEnv,
	// a request matching any of them bypasses the boundary.
	SkipExpressions []string `env:"SKIP_EXPRESSIONS" json:"skipExpressions,omitempty" yaml:"skipExpressions,omitempty" mapstructure:"skip_expressions"`
}

func (c *Config) SetDefaults() {
	if c.CatchErrors == nil {
		catchErrors := true
		c.CatchErrors = &catchErrors
	}

	if c.MaxFrames <= 0 {
		c.MaxFrames = defaultMaxFrames
	}
}

func (c *Config) skippers() []Skipper {
	var skippers []Skipper

	if len(c.SkipPaths) > 0 {
		skippers = append(skippers, PrefixPathSkipper(c.SkipPaths...))
	}

	if len(c.SkipExpressions) > 0 {
		skippers = append(skippers, ExpressionSkipper(NewRequestEnv, c.SkipExpressions...))
	}

	return skippers
}
