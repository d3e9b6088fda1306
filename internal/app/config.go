package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ShowPath string // hcl file or directory of hcl files

	FeedURL       string // socket.io bridge; empty disables the feed
	FeedNamespace string
	FeedInsecure  bool

	LogFormat  string
	LogLevel   string
	StatusPort int
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ShowPath == "" {
		return nil, errors.New("ShowPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
