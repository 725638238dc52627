// Package domain defines the work order contract, its persisted record form
// and the kind registry used to rebuild orders from saved colony state.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is the persisted tag identifying a work order variant.
type Kind string

// Worker is the read-only view of a colony citizen that work orders inspect
// when looking for someone to claim them.
type Worker interface {
	ID() uuid.UUID
	Job() string
	SkillLevel() int
	Idle() bool
}

// Colony supplies the worker pool searched by AttemptToFulfill.
type Colony interface {
	Workers() []Worker
}

// WorkOrder is a claimable unit of deferred work owned by a colony.
//
// Variants embed Base, implement Kind, and override WriteFields, ReadFields
// and AttemptToFulfill as needed.
type WorkOrder interface {
	Kind() Kind
	ID() uuid.UUID
	ClaimedBy() (uuid.UUID, bool)
	IsClaimed() bool
	IsClaimedBy(Worker) bool
	Claim(Worker)
	Unclaim()

	// WriteFields appends variant specific fields to rec.
	WriteFields(rec Record)
	// ReadFields restores variant specific fields from rec.
	ReadFields(rec Record) error
	// AttemptToFulfill looks for an eligible worker and claims it. It must
	// not claim anything when no candidate exists and is called every tick.
	AttemptToFulfill(colony Colony)

	base() *Base
}

// Validator is implemented by variants whose fields carry constraints beyond
// their record types. Colonies only accept orders that pass Validate; Decode
// does not call it, so every state a variant can write reads back.
type Validator interface {
	Validate() error
}

// Validate checks order against its variant constraints. Orders that do not
// implement Validator are always valid.
func Validate(order WorkOrder) error {
	v, ok := order.(Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return InvalidOrderError{Kind: order.Kind(), Variant: variantName(order), Err: err}
	}
	return nil
}

// Base carries the identity and claim state shared by every work order.
type Base struct {
	id        uuid.UUID
	claimedBy uuid.NullUUID
}

// NewBase returns a Base with a freshly generated id.
func NewBase() Base {
	return Base{id: uuid.New()}
}

// ID returns the stable identifier of the order.
func (b *Base) ID() uuid.UUID { return b.id }

// ClaimedBy returns the id of the claiming worker, if any.
func (b *Base) ClaimedBy() (uuid.UUID, bool) {
	return b.claimedBy.UUID, b.claimedBy.Valid
}

// IsClaimed reports whether a worker holds the order.
func (b *Base) IsClaimed() bool { return b.claimedBy.Valid }

// IsClaimedBy reports whether the order is claimed by w.
func (b *Base) IsClaimedBy(w Worker) bool {
	if w == nil || !b.claimedBy.Valid {
		return false
	}
	return w.ID() == b.claimedBy.UUID
}

// Claim records w as the claiming worker, replacing any previous claim.
// Exclusivity across orders is the colony's job. A nil worker clears the claim.
func (b *Base) Claim(w Worker) {
	if w == nil {
		b.Unclaim()
		return
	}
	b.claimedBy = uuid.NullUUID{UUID: w.ID(), Valid: true}
}

// Unclaim clears the claim.
func (b *Base) Unclaim() {
	b.claimedBy = uuid.NullUUID{}
}

// WriteFields is the default no-op for variants without extra state.
func (b *Base) WriteFields(Record) {}

// ReadFields is the default no-op for variants without extra state.
func (b *Base) ReadFields(Record) error { return nil }

// AttemptToFulfill does nothing by default.
func (b *Base) AttemptToFulfill(Colony) {}

func (b *Base) base() *Base { return b }

func (b *Base) writeRecord(rec Record) {
	rec.SetString(FieldID, b.id.String())
	if b.claimedBy.Valid {
		rec.SetString(FieldClaimedBy, b.claimedBy.UUID.String())
	}
}

func (b *Base) readRecord(rec Record) error {
	raw, err := rec.RequireString(FieldID)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("field %q: %w", FieldID, err)
	}
	claimed := uuid.NullUUID{}
	if rec.Has(FieldClaimedBy) {
		raw, err := rec.RequireString(FieldClaimedBy)
		if err != nil {
			return err
		}
		worker, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("field %q: %w", FieldClaimedBy, err)
		}
		claimed = uuid.NullUUID{UUID: worker, Valid: true}
	}
	b.id = id
	b.claimedBy = claimed
	return nil
}
