package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
)

// Load reads path over the defaults. A missing file is only an error when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfigReadFailed, path, err)
	}

	if err := decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfigParseFailed, path, err)
	}
	return cfg, nil
}

// decode rejects unknown keys so typos surface before any network activity.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if cfg.Credentials == nil {
		cfg.Credentials = map[string]valueobject.SecretRef{}
	}
	return nil
}
