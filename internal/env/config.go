package env

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// Device is the serial port the device is attached to
	Device string `env:"BOINGSCOPE_DEVICE"`
	Baud   int    `env:"BOINGSCOPE_BAUD,default=115200"`

	// Addr is a TCP serial bridge, used when Device is empty
	Addr string `env:"BOINGSCOPE_ADDR"`

	HTTPAddr  string `env:"BOINGSCOPE_HTTP_ADDR,default=127.0.0.1:7362"`
	DebugHTTP bool   `env:"BOINGSCOPE_DEBUG_HTTP"`

	LogLevel string `env:"BOINGSCOPE_LOG_LEVEL,default=info"`
}

// LoadConfig reads .env.local, if there is one, then the environment.
func LoadConfig(ctx context.Context) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
