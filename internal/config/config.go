// Package config holds process configuration, read once at startup.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config carries everything the submitter needs from the environment.
// MEDIACONVERT_ROLE is the IAM role MediaConvert assumes to read the
// source and write the HLS output; AWS_DEFAULT_REGION is the deployment
// region used for endpoint discovery.
type Config struct {
	HTTPPort         string        `envconfig:"HTTP_PORT" default:"8080"`
	Region           string        `envconfig:"AWS_DEFAULT_REGION" required:"true"`
	MediaConvertRole string        `envconfig:"MEDIACONVERT_ROLE" required:"true"`
	TemplatePath     string        `envconfig:"JOB_TEMPLATE_PATH" default:"job.json"`
	RequestTimeout   time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string        `envconfig:"LOG_FORMAT" default:"json"`
}

// Load populates Config from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
