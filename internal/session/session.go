// Package session holds the immutable configuration of one sweep: where
// probes originate, which block is swept and how it is batched.
package session

import (
	"net/netip"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/network"
)

// DefaultBatchSize is used when no batch size is configured.
const DefaultBatchSize = 5

var validate = validator.New()

// Session is created once at startup and only read afterwards.
type Session struct {
	id        uuid.UUID
	source    netip.Addr
	block     network.Block
	batchSize int
}

// New validates its arguments and returns a Session with a fresh ID.
func New(source netip.Addr, block network.Block, batchSize int) (*Session, error) {
	if !source.IsValid() {
		return nil, errors.ErrConfigMissing("source_ip")
	}
	if err := validate.Var(batchSize, "min=1"); err != nil {
		return nil, &errors.InputError{
			Code:  errors.CodeValidation,
			Field: "batch size",
			Input: strconv.Itoa(batchSize),
			Cause: err,
		}
	}

	return &Session{
		id:        uuid.New(),
		source:    source.Unmap(),
		block:     block,
		batchSize: batchSize,
	}, nil
}

// ID returns the identifier used to correlate log lines of this session.
func (s *Session) ID() uuid.UUID { return s.id }

// Source returns the address probes are sent from.
func (s *Session) Source() netip.Addr { return s.source }

// Block returns the target address block.
func (s *Session) Block() network.Block { return s.block }

// BatchSize returns the number of addresses per discovery batch.
func (s *Session) BatchSize() int { return s.batchSize }
