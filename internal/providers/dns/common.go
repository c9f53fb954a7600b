package dns

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/lite-lake/peerdns/internal/constants"
	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/domain/retry"
)

// Options tune how adapters retry transport failures.
type Options struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts: constants.DefaultRetries,
		RetryDelay:  500 * time.Millisecond,
	}
}

func (o Options) retryOptions() []retry.Option {
	return []retry.Option{
		retry.WithMaxAttempts(o.MaxAttempts),
		retry.WithInitialDelay(o.RetryDelay),
		retry.WithIsRetryable(IsRetryableStoreError),
	}
}

// rejectionFunc extracts the provider's own explanation from an SDK error.
// transport is true when the provider signalled a condition worth retrying.
type rejectionFunc func(err error) (reason string, transport bool, ok bool)

func GetFullDomain(subDomain, domain string) string {
	if subDomain == "@" || subDomain == "" {
		return domain
	}
	return strings.Join([]string{subDomain, domain}, ".")
}

func GetSubDomain(fullDomain, domain string) string {
	fullDomain = strings.TrimSuffix(fullDomain, ".")
	if strings.EqualFold(fullDomain, domain) {
		return "@"
	}
	suffix := "." + domain
	if len(fullDomain) > len(suffix) && strings.EqualFold(fullDomain[len(fullDomain)-len(suffix):], suffix) {
		return fullDomain[:len(fullDomain)-len(suffix)]
	}
	return fullDomain
}

func IsRetryableStoreError(err error) bool {
	return domain.IsTransportError(err)
}

func classify(op string, err error, rejection rejectionFunc) error {
	if err == nil {
		return nil
	}

	var se *domain.StoreError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTransportError(op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.NewTransportError(op, err)
	}

	if rejection != nil {
		if reason, transport, ok := rejection(err); ok {
			if transport {
				return domain.NewTransportError(op, err)
			}
			return domain.NewRejectedError(op, reason, err)
		}
	}
	return domain.NewRejectedError(op, err.Error(), err)
}

// invoke runs one provider call with classification and transport retries.
// Whatever comes back is a *domain.StoreError.
func invoke[T any](ctx context.Context, opts Options, op string, rejection rejectionFunc, fn func() (T, error)) (T, error) {
	res, err := retry.DoWithResult(ctx, func() (T, error) {
		v, err := fn()
		return v, classify(op, err, rejection)
	}, opts.retryOptions()...)
	if err != nil && !errors.As(err, new(*domain.StoreError)) {
		err = domain.NewTransportError(op, err)
	}
	return res, err
}

func filterRecords(records []entity.DNSRecord, filter entity.RecordFilter) []entity.DNSRecord {
	out := make([]entity.DNSRecord, 0, len(records))
	for _, r := range records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func unquoteTXT(value string) string {
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return value[1 : len(value)-1]
	}
	return value
}
