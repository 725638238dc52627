package build

import (
	"fmt"

	"colonywork/pkg/domain"
)

// Location is a block position in the colony.
type Location struct {
	X, Y, Z int
}

func (l Location) String() string {
	return fmt.Sprintf("%d,%d,%d", l.X, l.Y, l.Z)
}

func (l Location) write(rec domain.Record) {
	rec.SetInt("x", l.X)
	rec.SetInt("y", l.Y)
	rec.SetInt("z", l.Z)
}

func readLocation(rec domain.Record) (Location, error) {
	var (
		loc Location
		err error
	)
	if loc.X, err = rec.Int("x"); err != nil {
		return Location{}, err
	}
	if loc.Y, err = rec.Int("y"); err != nil {
		return Location{}, err
	}
	if loc.Z, err = rec.Int("z"); err != nil {
		return Location{}, err
	}
	return loc, nil
}
