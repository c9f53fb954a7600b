package dns

import (
	"fmt"
	"sort"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/contract"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
	"github.com/lite-lake/peerdns/internal/infrastructure/secrets"
)

// Credentials maps a provider credential key (api_token, secret_id, ...) to its source.
type Credentials map[string]valueobject.SecretRef

type CreatorFunc func(creds Credentials, opts Options) (contract.RecordStore, error)

type Factory struct {
	creators map[string]CreatorFunc
	secrets  *secrets.Resolver
}

func NewFactory() *Factory {
	f := &Factory{secrets: secrets.NewResolver(nil)}
	f.creators = map[string]CreatorFunc{
		"cloudflare": f.createCloudflare,
		"aliyun":     f.createAliyun,
		"tencent":    f.createTencent,
		"memory":     createMemory,
	}
	return f
}

// WithLookup replaces the environment lookup used to resolve {env: VAR} credentials.
func (f *Factory) WithLookup(lookup func(string) (string, bool)) *Factory {
	f.secrets = secrets.NewResolver(lookup)
	return f
}

func (f *Factory) Create(provider string, creds Credentials, opts Options) (contract.RecordStore, error) {
	creator, ok := f.creators[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, provider)
	}
	return creator(creds, opts)
}

func (f *Factory) Register(provider string, creator CreatorFunc) {
	f.creators[provider] = creator
}

func (f *Factory) Providers() []string {
	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *Factory) resolve(creds Credentials, key string) (string, error) {
	return f.secrets.Require(creds, key)
}

func (f *Factory) createCloudflare(creds Credentials, opts Options) (contract.RecordStore, error) {
	apiToken, err := f.resolve(creds, "api_token")
	if err != nil {
		return nil, err
	}
	return NewCloudflareProvider(apiToken, opts), nil
}

func (f *Factory) createAliyun(creds Credentials, opts Options) (contract.RecordStore, error) {
	accessKeyID, err := f.resolve(creds, "access_key_id")
	if err != nil {
		return nil, err
	}
	accessKeySecret, err := f.resolve(creds, "access_key_secret")
	if err != nil {
		return nil, err
	}
	return NewAliyunProvider(accessKeyID, accessKeySecret, opts)
}

func (f *Factory) createTencent(creds Credentials, opts Options) (contract.RecordStore, error) {
	secretID, err := f.resolve(creds, "secret_id")
	if err != nil {
		return nil, err
	}
	secretKey, err := f.resolve(creds, "secret_key")
	if err != nil {
		return nil, err
	}
	return NewTencentProvider(secretID, secretKey, opts)
}

func createMemory(Credentials, Options) (contract.RecordStore, error) {
	return NewMemoryStore(), nil
}
