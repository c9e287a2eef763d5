package server

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/validation"
)

const (
	defaultAddress         = ":8080"
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	// Address is the TCP address to listen on.
	// Optional. Default value ":8080".
	Address string `env:"ADDRESS" json:"address,omitempty" yaml:"address,omitempty" mapstructure:"address"`

	// ShutdownTimeout bounds the graceful shutdown of Run.
	// Optional. Default value 10s.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty" mapstructure:"shutdown_timeout"`

	TLS       *TLSConfig      `envPrefix:"TLS_" json:"tls,omitempty" yaml:"tls,omitempty" mapstructure:"tls"`
	HTTP2     *HTTP2Config    `envPrefix:"HTTP2_" json:"http2,omitempty" yaml:"http2,omitempty" mapstructure:"http2"`
	HTTP3     *HTTP3Config    `envPrefix:"HTTP3_" json:"http3,omitempty" yaml:"http3,omitempty" mapstructure:"http3"`
	Transport TransportConfig `envPrefix:"TRANSPORT_" json:"transport,omitempty" yaml:"transport,omitempty" mapstructure:"transport"`
}

func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = defaultAddress
	}

	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}

	if c.HTTP2 == nil {
		c.HTTP2 = &HTTP2Config{}
	}
	c.HTTP2.SetDefaults()

	c.Transport.SetDefaults()
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Address, validation.Required),
		validation.Field(&c.TLS, validation.When(c.HTTP3 != nil, validation.Required.Error("is required by http3"))),
	)
}

type TLSConfig struct {
	Certificates []CertificateConfig `json:"certificates,omitempty" yaml:"certificates,omitempty" mapstructure:"certificates"`
}

func (c TLSConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Certificates, validation.Required),
	)
}

func (c *TLSConfig) tls() (*tls.Config, error) {
	certificates := make([]tls.Certificate, 0, len(c.Certificates))
	for i, cc := range c.Certificates {
		certificate, err := cc.load()
		if err != nil {
			return nil, fmt.Errorf("server: certificate %d: %w", i, err)
		}
		certificates = append(certificates, certificate)
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: certificates,
		NextProtos:   []string{"h2", "http/1.1"},
	}, nil
}

// CertificateConfig holds a certificate and its key, either as PEM blocks or as file paths.
type CertificateConfig struct {
	CertFile string `json:"certFile,omitempty" yaml:"certFile,omitempty" mapstructure:"cert_file"`
	KeyFile  string `json:"keyFile,omitempty" yaml:"keyFile,omitempty" mapstructure:"key_file"`
}

func (c CertificateConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CertFile, validation.Required),
		validation.Field(&c.KeyFile, validation.Required),
	)
}

func (c CertificateConfig) load() (tls.Certificate, error) {
	if isPEM(c.CertFile) && isPEM(c.KeyFile) {
		return tls.X509KeyPair([]byte(c.CertFile), []byte(c.KeyFile))
	}
	return tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
}

func isPEM(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "-----BEGIN")
}

type HTTP2Config struct {
	MaxConcurrentStreams uint32        `json:"maxConcurrentStreams,omitempty" yaml:"maxConcurrentStreams,omitempty" mapstructure:"max_concurrent_streams"`
	MaxReadFrameSize     uint32        `json:"maxReadFrameSize,omitempty" yaml:"maxReadFrameSize,omitempty" mapstructure:"max_read_frame_size"`
	IdleTimeout          time.Duration `json:"idleTimeout,omitempty" yaml:"idleTimeout,omitempty" mapstructure:"idle_timeout"`
	ReadIdleTimeout      time.Duration `json:"readIdleTimeout,omitempty" yaml:"readIdleTimeout,omitempty" mapstructure:"read_idle_timeout"`
	PingTimeout          time.Duration `json:"pingTimeout,omitempty" yaml:"pingTimeout,omitempty" mapstructure:"ping_timeout"`
	WriteByteTimeout     time.Duration `json:"writeByteTimeout,omitempty" yaml:"writeByteTimeout,omitempty" mapstructure:"write_byte_timeout"`
}

func (c *HTTP2Config) SetDefaults() {
	if c.MaxConcurrentStreams == 0 {
		c.MaxConcurrentStreams = 250
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 15 * time.Second
	}
}

type HTTP3Config struct {
	// AdvertisedPort is the UDP port announced in the Alt-Svc header.
	// Optional. Default value the port of Config.Address.
	AdvertisedPort uint16 `json:"advertisedPort,omitempty" yaml:"advertisedPort,omitempty" mapstructure:"advertised_port"`
}

type TransportConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty" mapstructure:"read_timeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout,omitempty" yaml:"readHeaderTimeout,omitempty" mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty" mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `json:"idleTimeout,omitempty" yaml:"idleTimeout,omitempty" mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `json:"maxHeaderBytes,omitempty" yaml:"maxHeaderBytes,omitempty" mapstructure:"max_header_bytes"`
}

func (c *TransportConfig) SetDefaults() {
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.MaxHeaderBytes == 0 {
		c.MaxHeaderBytes = 1 << 20
	}
}
