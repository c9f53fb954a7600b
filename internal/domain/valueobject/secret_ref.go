package valueobject

import (
	"fmt"
	"os"

	"github.com/lite-lake/peerdns/internal/domain"
)

// SecretRef is a credential given either inline or as the name of an environment variable.
//
//	api_token: abc123
//	api_token: {env: CF_API_TOKEN}
type SecretRef struct {
	Plain string `yaml:"plain,omitempty"`
	Env   string `yaml:"env,omitempty"`
}

func (s *SecretRef) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var plain string
	if err := unmarshal(&plain); err == nil {
		s.Plain = plain
		return nil
	}

	type alias SecretRef
	var ref alias
	if err := unmarshal(&ref); err != nil {
		return err
	}
	s.Plain = ref.Plain
	s.Env = ref.Env
	return nil
}

func (s SecretRef) MarshalYAML() (interface{}, error) {
	if s.Env != "" {
		return map[string]string{"env": s.Env}, nil
	}
	return "<redacted>", nil
}

// Resolve returns the credential value. lookup defaults to os.LookupEnv.
func (s *SecretRef) Resolve(lookup func(string) (string, bool)) (string, error) {
	if s.Env != "" {
		if lookup == nil {
			lookup = os.LookupEnv
		}
		val, ok := lookup(s.Env)
		if !ok || val == "" {
			return "", fmt.Errorf("%w: environment variable %s", domain.ErrMissingSecret, s.Env)
		}
		return val, nil
	}
	return s.Plain, nil
}

func (s *SecretRef) Validate() error {
	if s.Plain == "" && s.Env == "" {
		return domain.ErrEmptyValue
	}
	return nil
}

func (s SecretRef) String() string {
	if s.Env != "" {
		return "env:" + s.Env
	}
	return "***"
}

// MarshalJSON keeps inline credentials out of structured logs.
func (s SecretRef) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}
