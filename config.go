package main

import (
	"flag"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/cheloftus/nodemcu-uploader/nodemcu"
)

// Config holds the application configuration
type Config struct {
	// SerialPort is the path to the device's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string
	// BaudRate is the speed negotiated for the transfer (e.g. 115200)
	BaudRate int
	// Timeout is the response deadline for every device exchange
	Timeout time.Duration
	// Verify selects the post-upload check ("none", "standard", "sha1")
	Verify string
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// DefaultSerialPort resolves the conventional device path for a platform.
func DefaultSerialPort(goos string) string {
	switch goos {
	case "windows":
		return "COM1"
	case "darwin":
		return "/dev/tty.SLAB_USBtoUART"
	default:
		return "/dev/ttyUSB0"
	}
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.SerialPort = DefaultSerialPort(runtime.GOOS)
		c.BaudRate = nodemcu.DefaultBaudRate
		c.Timeout = nodemcu.DefaultTimeout
		c.Verify = "none"
		c.LogLevel = "info"
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if port := os.Getenv("SERIAL_PORT"); port != "" {
			c.SerialPort = port
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if timeout := os.Getenv("RESPONSE_TIMEOUT"); timeout != "" {
			if d, err := time.ParseDuration(timeout); err == nil {
				c.Timeout = d
			}
		}

		if verify := os.Getenv("VERIFY"); verify != "" {
			c.Verify = verify
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "port":
				c.SerialPort = f.Value.String()
			case "baud":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "timeout":
				if d, err := time.ParseDuration(f.Value.String()); err == nil {
					c.Timeout = d
				}
			case "verify":
				c.Verify = f.Value.String()
			case "log-level":
				c.LogLevel = f.Value.String()
			}

		})
		return nil
	}

}
