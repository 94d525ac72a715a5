package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
)

// skeleton is written on first run so users have a template to fill in. The
// shape is part of the tool's contract: exactly these five keys, all empty.
const skeleton = `{"access_key_id":"","secret_access_key":"","region":"","endpoint_url":"","bucket":""}`

// keys lists the config file keys, doubling as the set of environment
// overrides (ROT_ACCESS_KEY_ID and so on).
//
//nolint:gochecknoglobals
var keys = []string{"access_key_id", "secret_access_key", "region", "endpoint_url", "bucket"}

// DefaultPath returns the default config file location,
// <user-config-dir>/rot/rot.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}

	return filepath.Join(dir, "rot", "rot.json"), nil
}

// Load reads the config file at path and applies environment overrides. On
// first run the file is created as an empty skeleton. Comments in the file
// are tolerated. The result is not validated; call Validate before use.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file

	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := bootstrap(path); err != nil {
			return nil, err
		}

		data = []byte(skeleton)
	case err != nil:
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("ROT")
	v.AutomaticEnv()

	for _, key := range keys {
		v.SetDefault(key, "")
	}

	if err := v.ReadConfig(bytes.NewReader(jsonc.ToJSONInPlace(data))); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// bootstrap writes the skeleton config file.
func bootstrap(path string) error {
	const (
		dirPerm  = 0o700
		filePerm = 0o600
	)

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(skeleton), filePerm); err != nil {
		return fmt.Errorf("writing skeleton config %q: %w", path, err)
	}

	return nil
}
