package core

import (
	"github.com/google/uuid"

	"colonywork/pkg/domain"
)

var _ domain.Worker = (*Citizen)(nil)

// Citizen is a colony worker. A citizen holding a work order, or marked busy
// with other duties, is not idle and is never offered to another order.
type Citizen struct {
	id    uuid.UUID
	name  string
	job   string
	level int
	busy  bool
	task  uuid.NullUUID
}

// NewCitizen constructs an idle citizen.
func NewCitizen(id uuid.UUID, name, job string, level int) *Citizen {
	return &Citizen{id: id, name: name, job: job, level: level}
}

// ID returns the citizen's stable identifier.
func (c *Citizen) ID() uuid.UUID { return c.id }

// Name returns the display name.
func (c *Citizen) Name() string { return c.name }

// Job returns the job name work orders match against, such as "builder".
func (c *Citizen) Job() string { return c.job }

// SkillLevel returns the level of the citizen's job skill.
func (c *Citizen) SkillLevel() int { return c.level }

// Idle reports whether the citizen is free to claim a work order.
func (c *Citizen) Idle() bool { return !c.busy && !c.task.Valid }

// SetBusy marks the citizen as occupied outside the work order system.
func (c *Citizen) SetBusy(busy bool) { c.busy = busy }

// Task returns the id of the work order the citizen holds, if any.
func (c *Citizen) Task() (uuid.UUID, bool) { return c.task.UUID, c.task.Valid }

// clone copies the citizen without its current task.
func (c *Citizen) clone() *Citizen {
	if c == nil {
		return nil
	}
	cp := *c
	cp.task = uuid.NullUUID{}
	return &cp
}
