package valueobject

import (
	"fmt"

	"github.com/lite-lake/peerdns/internal/domain/entity"
)

type ChangeType int

const (
	ChangeTypeNoop ChangeType = iota
	ChangeTypeCreate
	ChangeTypeUpdate
	ChangeTypeDelete
)

func (ct ChangeType) String() string {
	switch ct {
	case ChangeTypeNoop:
		return "NOOP"
	case ChangeTypeCreate:
		return "CREATE"
	case ChangeTypeUpdate:
		return "UPDATE"
	case ChangeTypeDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Change is one record mutation attempted by the reconciler, with its outcome.
type Change struct {
	changeType ChangeType
	oldState   *entity.DNSRecord
	newState   *entity.DNSRecord
	err        error
}

func NewChange(changeType ChangeType, oldState, newState *entity.DNSRecord, err error) *Change {
	return &Change{
		changeType: changeType,
		oldState:   copyRecord(oldState),
		newState:   copyRecord(newState),
		err:        err,
	}
}

func (c *Change) Type() ChangeType            { return c.changeType }
func (c *Change) OldState() *entity.DNSRecord { return c.oldState }
func (c *Change) NewState() *entity.DNSRecord { return c.newState }
func (c *Change) Err() error                  { return c.err }
func (c *Change) Failed() bool                { return c.err != nil }

// Record returns the record the change is about, preferring the new state.
func (c *Change) Record() *entity.DNSRecord {
	if c.newState != nil {
		return c.newState
	}
	return c.oldState
}

func (c *Change) String() string {
	rec := c.Record()
	if rec == nil {
		return c.changeType.String()
	}
	s := fmt.Sprintf("%s %s %s %s", c.changeType, rec.Type, rec.Name, rec.Value)
	if c.err != nil {
		s += fmt.Sprintf(" (failed: %v)", c.err)
	}
	return s
}

func copyRecord(r *entity.DNSRecord) *entity.DNSRecord {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
