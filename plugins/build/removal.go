package build

import (
	"fmt"

	"colonywork/pkg/domain"
)

// RemovalOrder asks a builder to take down a structure.
type RemovalOrder struct {
	domain.Base
	Structure string
	Location  Location
}

// NewRemovalOrder returns an unclaimed removal order with a fresh id.
func NewRemovalOrder(structure string, loc Location) *RemovalOrder {
	return &RemovalOrder{Base: domain.NewBase(), Structure: structure, Location: loc}
}

// Kind implements domain.WorkOrder.
func (*RemovalOrder) Kind() domain.Kind { return KindRemoval }

// WriteFields implements domain.WorkOrder.
func (o *RemovalOrder) WriteFields(rec domain.Record) {
	rec.SetString("structure", o.Structure)
	o.Location.write(rec)
}

// ReadFields implements domain.WorkOrder.
func (o *RemovalOrder) ReadFields(rec domain.Record) error {
	structure, err := rec.RequireString("structure")
	if err != nil {
		return err
	}
	loc, err := readLocation(rec)
	if err != nil {
		return err
	}
	o.Structure = structure
	o.Location = loc
	return nil
}

// Validate implements domain.Validator.
func (o *RemovalOrder) Validate() error {
	if o.Structure == "" {
		return fmt.Errorf("structure is empty")
	}
	return nil
}

// AttemptToFulfill claims the first idle builder.
func (o *RemovalOrder) AttemptToFulfill(colony domain.Colony) {
	if o.IsClaimed() {
		return
	}
	if w := firstIdleBuilder(colony, 0); w != nil {
		o.Claim(w)
	}
}
