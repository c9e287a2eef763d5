package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gowool/whoops"
)

const defaultMaxRequestIDLength = 128

// RequestIDConfig defines the config for RequestID middleware.
type RequestIDConfig struct {
	// Generator defines a function to generate an ID.
	// Optional. Default value uuid.NewString.
	Generator func() string `json:"-" yaml:"-"`

	// TargetHeader is the header the ID is read from and echoed on.
	// Optional. Default value whoops.HeaderXRequestID.
	TargetHeader string `env:"TARGET_HEADER" json:"targetHeader,omitempty" yaml:"targetHeader,omitempty" mapstructure:"target_header"`

	// MaxLength bounds an incoming ID, a longer one is replaced by a generated ID.
	// Optional. Default value 128.
	MaxLength int `env:"MAX_LENGTH" json:"maxLength,omitempty" yaml:"maxLength,omitempty" mapstructure:"max_length"`
}

func (c *RequestIDConfig) SetDefaults() {
	if c.Generator == nil {
		c.Generator = uuid.NewString
	}
	if c.TargetHeader == "" {
		c.TargetHeader = whoops.HeaderXRequestID
	}
	if c.MaxLength <= 0 {
		c.MaxLength = defaultMaxRequestIDLength
	}
}

// accepts reports whether an incoming ID may be reused. It ends up in error
// reports and log lines, so only bounded visible ASCII is kept.
func (c *RequestIDConfig) accepts(id string) bool {
	if id == "" || len(id) > c.MaxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '!' || id[i] > '~' {
			return false
		}
	}
	return true
}

// RequestID attaches an ID to every request. The ID is put in the request
// context with whoops.ContextWithRequestID, so error reports rendered by a
// boundary mounted further in show it, and echoed on the response.
//
// Mounted outside the boundary the header survives error responses, the
// boundary merges its headers into the ones already set on the writer.
func RequestID(cfg RequestIDConfig, skippers ...whoops.Skipper) func(whoops.Handler) whoops.Handler {
	cfg.SetDefaults()

	skip := whoops.ChainSkipper(skippers...)

	return func(next whoops.Handler) whoops.Handler {
		return whoops.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			if skip(r) {
				return next.ServeHTTP(w, r)
			}

			id := r.Header.Get(cfg.TargetHeader)
			if !cfg.accepts(id) {
				id = cfg.Generator()
			}

			w.Header().Set(cfg.TargetHeader, id)

			return next.ServeHTTP(w, r.WithContext(whoops.ContextWithRequestID(r.Context(), id)))
		})
	}
}
