package nodemcu

import (
	"log/slog"
	"time"
)

const (
	// DefaultBaudRate is the speed a NodeMCU board boots its UART at. The
	// handshake always starts here; a different configured rate is
	// negotiated afterwards, and Close restores it.
	DefaultBaudRate = 9600

	// DefaultTimeout bounds every expect operation unless overridden.
	DefaultTimeout = 5 * time.Second
)

// Config carries the settings for one Uploader session.
type Config struct {
	// Dialer opens the transport. Required.
	Dialer Dialer
	// BaudRate to negotiate after the handshake. Zero means stay at
	// DefaultBaudRate.
	BaudRate int
	// Timeout is the session-wide response deadline.
	Timeout time.Duration
	// Logger receives protocol traces (Debug) and operation progress
	// (Info). Nil means slog.Default().
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// ConfigBuilder assembles a Config fluently.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithBaudRate(baud int) *ConfigBuilder {
	b.config.BaudRate = baud
	return b
}

func (b *ConfigBuilder) WithTimeout(d time.Duration) *ConfigBuilder {
	b.config.Timeout = d
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

// Build applies defaults and validates the configuration.
func (b *ConfigBuilder) Build() (Config, error) {
	config := b.config
	config.setDefaults()
	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
