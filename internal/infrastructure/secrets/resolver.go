package secrets

import (
	"fmt"
	"os"
	"sync"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
)

// Resolver turns credential references into values. Environment variables are read once.
type Resolver struct {
	lookup func(string) (string, bool)

	mu             sync.Mutex
	resolvedValues map[string]string
}

// NewResolver uses os.LookupEnv when lookup is nil.
func NewResolver(lookup func(string) (string, bool)) *Resolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Resolver{
		lookup:         lookup,
		resolvedValues: make(map[string]string),
	}
}

func (r *Resolver) Resolve(ref valueobject.SecretRef) (string, error) {
	if ref.Env == "" {
		return ref.Plain, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if val, ok := r.resolvedValues[ref.Env]; ok {
		return val, nil
	}
	val, err := ref.Resolve(r.lookup)
	if err != nil {
		return "", err
	}
	r.resolvedValues[ref.Env] = val
	return val, nil
}

// Require resolves creds[key] and fails when the key is absent or resolves empty.
func (r *Resolver) Require(creds map[string]valueobject.SecretRef, key string) (string, error) {
	ref, ok := creds[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingCredential, key)
	}
	val, err := r.Resolve(ref)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", key, err)
	}
	if val == "" {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrMissingCredential, key)
	}
	return val, nil
}
