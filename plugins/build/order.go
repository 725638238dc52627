package build

import (
	"fmt"

	"colonywork/pkg/domain"
)

// MaxLevel is the highest level a structure can be built to.
const MaxLevel = 5

// BuildOrder asks a builder to construct a structure or upgrade it to Level.
type BuildOrder struct {
	domain.Base
	Structure string
	Level     int
	Location  Location
	Rotation  int
	Mirrored  bool
	Cleared   bool
}

// NewBuildOrder returns an unclaimed build order with a fresh id.
func NewBuildOrder(structure string, level int, loc Location) *BuildOrder {
	return &BuildOrder{
		Base:      domain.NewBase(),
		Structure: structure,
		Level:     level,
		Location:  loc,
	}
}

// Kind implements domain.WorkOrder.
func (*BuildOrder) Kind() domain.Kind { return KindBuild }

// WriteFields implements domain.WorkOrder.
func (o *BuildOrder) WriteFields(rec domain.Record) {
	rec.SetString("structure", o.Structure)
	rec.SetInt("level", o.Level)
	o.Location.write(rec)
	rec.SetInt("rotation", o.Rotation)
	rec.SetBool("mirrored", o.Mirrored)
	rec.SetBool("cleared", o.Cleared)
}

// ReadFields implements domain.WorkOrder.
func (o *BuildOrder) ReadFields(rec domain.Record) error {
	structure, err := rec.RequireString("structure")
	if err != nil {
		return err
	}
	level, err := rec.Int("level")
	if err != nil {
		return err
	}
	loc, err := readLocation(rec)
	if err != nil {
		return err
	}
	rotation, err := rec.IntOr("rotation", 0)
	if err != nil {
		return err
	}
	mirrored, err := rec.Bool("mirrored")
	if err != nil {
		return err
	}
	cleared, err := rec.Bool("cleared")
	if err != nil {
		return err
	}
	o.Structure = structure
	o.Level = level
	o.Location = loc
	o.Rotation = rotation
	o.Mirrored = mirrored
	o.Cleared = cleared
	return nil
}

// Validate implements domain.Validator.
func (o *BuildOrder) Validate() error {
	if o.Structure == "" {
		return fmt.Errorf("structure is empty")
	}
	if o.Level < 1 || o.Level > MaxLevel {
		return fmt.Errorf("level %d outside 1..%d", o.Level, MaxLevel)
	}
	if o.Rotation < 0 || o.Rotation > 3 {
		return fmt.Errorf("rotation %d outside 0..3", o.Rotation)
	}
	return nil
}

// AttemptToFulfill claims the first idle builder skilled enough for Level.
func (o *BuildOrder) AttemptToFulfill(colony domain.Colony) {
	if o.IsClaimed() {
		return
	}
	if w := firstIdleBuilder(colony, o.Level); w != nil {
		o.Claim(w)
	}
}
