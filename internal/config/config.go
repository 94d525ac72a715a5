// Package config defines and loads the runtime configuration for both
// binaries: object-store credentials from the rot.json config file, and the
// flag-driven settings of a standalone codec run.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds the object-store credentials and endpoint. Loaded from the
// JSON config file, with ROT_-prefixed environment variables taking
// precedence (e.g. ROT_ACCESS_KEY_ID).
type Config struct {
	AccessKeyID     string `json:"access_key_id"     mapstructure:"access_key_id"     validate:"required"`
	SecretAccessKey string `json:"secret_access_key" mapstructure:"secret_access_key" validate:"required"`
	Region          string `json:"region"            mapstructure:"region"            validate:"required"`
	EndpointURL     string `json:"endpoint_url"      mapstructure:"endpoint_url"      validate:"required,url"`
	Bucket          string `json:"bucket"            mapstructure:"bucket"            validate:"required"`
}

// Validate validates the configuration against the struct tags.
func (c Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}

// Codec holds the runtime configuration for a standalone codec run.
type Codec struct {
	// Common flags
	Password           string `validate:"required"`
	Output             string
	Parallel           int    `validate:"min=1"`
	Quiet              bool
	Delete             bool
	Stats              bool
	PreserveTimestamps bool   `mapstructure:"preserve-timestamps"`

	// Command-specific flags
	Decrypt bool

	// Positional arguments
	Files []string `validate:"min=1"`
}

// Validate validates the configuration against the struct tags.
func (c Codec) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	// An explicit output path cannot fan out over several inputs.
	if c.Output != "" && len(c.Files) > 1 {
		return errors.New("--output requires exactly one input file")
	}

	return nil
}

// Upload holds the runtime configuration for the upload command.
type Upload struct {
	Prefix   string
	Password string
	Expires  int64  `validate:"min=0"`
	Quiet    bool

	// Positional arguments
	Files []string `validate:"min=1"`
}

// Validate validates the configuration against the struct tags.
func (u Upload) Validate() error {
	validate := validator.New()

	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}

// Download holds the runtime configuration for the download command.
type Download struct {
	Output   string
	Password string
	Quiet    bool

	// Positional arguments
	Keys []string `validate:"min=1"`
}

// Validate validates the configuration against the struct tags.
func (d Download) Validate() error {
	validate := validator.New()

	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}

// List holds the runtime configuration for the list command.
type List struct {
	Prefix string
	Max    int64  `validate:"min=0"`
	Quiet  bool
}

// Validate validates the configuration against the struct tags.
func (l List) Validate() error {
	validate := validator.New()

	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}
