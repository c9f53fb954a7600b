package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidIP       = errors.New("invalid IP address")
	ErrInvalidPort     = errors.New("invalid port")
	ErrInvalidDomain   = errors.New("invalid domain")
	ErrInvalidTTL      = errors.New("invalid TTL")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidType     = errors.New("invalid type")
	ErrInvalidStrategy = errors.New("invalid record strategy")
	ErrInvalidValue    = errors.New("invalid value")
	ErrEmptyValue      = errors.New("empty value")
	ErrRequired        = errors.New("required field missing")

	ErrInvalidPeer      = errors.New("invalid peer")
	ErrNoPeers          = errors.New("no candidate peers")
	ErrNoReachablePeers = errors.New("no reachable peers")

	ErrConfigReadFailed  = errors.New("config read failed")
	ErrConfigParseFailed = errors.New("config parse failed")
	ErrMissingSecret     = errors.New("missing secret reference")

	ErrUnsupportedProvider = errors.New("unsupported DNS provider")
	ErrMissingCredential   = errors.New("missing credential")

	ErrStoreRead             = errors.New("DNS store read failed")
	ErrStoreWrite            = errors.New("DNS store write failed")
	ErrDNSZoneNotFound       = errors.New("DNS zone not found")
	ErrDNSRecordNotFound     = errors.New("DNS record not found")
	ErrUnsupportedRecordType = errors.New("unsupported record type")

	ErrBackupFailed     = errors.New("backup failed")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

func RequiredField(field string) error {
	return fmt.Errorf("%w: %s", ErrRequired, field)
}

func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func WrapEntity(entity, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s[%s]: %w", entity, name, err)
}

type OpError struct {
	Op    string
	Cause error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *OpError) Unwrap() error {
	return e.Cause
}

func NewOpError(op string, cause error) error {
	return &OpError{Op: op, Cause: cause}
}

type StoreErrorKind int

const (
	// StoreErrorTransport means the request never got a usable answer.
	StoreErrorTransport StoreErrorKind = iota
	// StoreErrorRejected means the provider answered and refused the request.
	StoreErrorRejected
)

func (k StoreErrorKind) String() string {
	switch k {
	case StoreErrorTransport:
		return "transport"
	case StoreErrorRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// StoreError is returned by every DNS store operation that fails.
type StoreError struct {
	Op     string
	Kind   StoreErrorKind
	Reason string
	Cause  error
}

func (e *StoreError) Error() string {
	if e.Kind == StoreErrorRejected && e.Reason != "" {
		return fmt.Sprintf("%s: rejected by provider: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

func NewTransportError(op string, cause error) error {
	return &StoreError{Op: op, Kind: StoreErrorTransport, Cause: cause}
}

func NewRejectedError(op, reason string, cause error) error {
	if cause == nil {
		cause = errors.New(reason)
	}
	return &StoreError{Op: op, Kind: StoreErrorRejected, Reason: reason, Cause: cause}
}

func IsTransportError(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == StoreErrorTransport
}

func IsRejectedError(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == StoreErrorRejected
}
