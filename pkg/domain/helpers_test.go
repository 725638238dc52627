package domain_test

import (
	"errors"

	"colonywork/pkg/domain"

	"github.com/google/uuid"
)

const (
	kindNote  domain.Kind = "note"
	kindCrate domain.Kind = "crate"
)

type stubWorker struct {
	id    uuid.UUID
	job   string
	level int
	idle  bool
}

func newStubWorker() *stubWorker {
	return &stubWorker{id: uuid.New(), job: "builder", level: 1, idle: true}
}

func (w *stubWorker) ID() uuid.UUID   { return w.id }
func (w *stubWorker) Job() string     { return w.job }
func (w *stubWorker) SkillLevel() int { return w.level }
func (w *stubWorker) Idle() bool      { return w.idle }

// noteOrder carries a single string field.
type noteOrder struct {
	domain.Base
	Text string
}

func newNoteOrder() domain.WorkOrder { return &noteOrder{Base: domain.NewBase()} }

func (*noteOrder) Kind() domain.Kind { return kindNote }

func (o *noteOrder) WriteFields(rec domain.Record) { rec.SetString("text", o.Text) }

func (o *noteOrder) ReadFields(rec domain.Record) error {
	text, err := rec.RequireString("text")
	if err != nil {
		return err
	}
	o.Text = text
	return nil
}

// crateOrder exercises integer and boolean fields plus failure modes.
type crateOrder struct {
	domain.Base
	Count  int
	Sealed bool
}

func newCrateOrder() domain.WorkOrder { return &crateOrder{Base: domain.NewBase()} }

func (*crateOrder) Kind() domain.Kind { return kindCrate }

func (o *crateOrder) WriteFields(rec domain.Record) {
	rec.SetInt("count", o.Count)
	rec.SetBool("sealed", o.Sealed)
}

func (o *crateOrder) ReadFields(rec domain.Record) error {
	if rec.Has("explode") {
		panic("crate exploded")
	}
	count, err := rec.Int("count")
	if err != nil {
		return err
	}
	if count < 0 {
		return errors.New("negative count")
	}
	sealed, err := rec.Bool("sealed")
	if err != nil {
		return err
	}
	o.Count = count
	o.Sealed = sealed
	return nil
}

// strayOrder is never registered.
type strayOrder struct {
	domain.Base
}

func (*strayOrder) Kind() domain.Kind { return "stray" }

func newTestRegistry() *domain.Registry {
	reg := domain.NewRegistry()
	reg.MustRegister(kindNote, newNoteOrder)
	reg.MustRegister(kindCrate, newCrateOrder)
	reg.Seal()
	return reg
}
