package core

import (
	"context"
	"errors"
	"fmt"

	"colonywork/pkg/domain"
)

// DroppedRecord describes a persisted record discarded during load.
type DroppedRecord struct {
	Index  int
	Kind   domain.Kind
	Reason string
	Err    error
}

// LoadReport summarises restoring a colony's orders from records.
type LoadReport struct {
	ColonyID string
	Loaded   int
	// Released counts restored claims dropped because the worker is missing
	// or already holds another order.
	Released int
	Dropped  []DroppedRecord
}

// errNotObject marks a persisted element that did not decode to a record.
var errNotObject = errors.New("record is not a JSON object")

// orderLoader restores orders into a colony, reporting each outcome to its
// logger and metrics.
type orderLoader struct {
	registry *domain.Registry
	logger   Logger
	metrics  MetricsRecorder
}

func (s *Service) loader() orderLoader {
	return orderLoader{registry: s.registry, logger: s.logger, metrics: s.metrics}
}

// dryRunLoader decodes exactly like loader but records nothing.
func (s *Service) dryRunLoader() orderLoader {
	return orderLoader{registry: s.registry, logger: noopLogger{}, metrics: noopMetricsRecorder{}}
}

// loadInto replaces the colony's orders with those decoded from records. A
// bad record is logged, counted and skipped; the rest keep their order.
func (l orderLoader) loadInto(colony *Colony, records []domain.Record) LoadReport {
	report := LoadReport{ColonyID: colony.ID()}
	colony.clearOrders()
	for i, rec := range records {
		if rec == nil {
			report.Dropped = append(report.Dropped, l.drop(colony.ID(), i, errNotObject))
			continue
		}
		order, err := domain.Decode(l.registry, rec)
		if err != nil {
			report.Dropped = append(report.Dropped, l.drop(colony.ID(), i, err))
			continue
		}
		released, err := colony.AddOrder(order)
		var invalid domain.InvalidOrderError
		switch {
		case errors.As(err, &invalid):
			report.Dropped = append(report.Dropped, l.drop(colony.ID(), i,
				domain.CorruptRecordError{Kind: invalid.Kind, Variant: invalid.Variant, Err: invalid.Err}))
			continue
		case err != nil:
			l.logger.Warn("duplicate work order id, discarding", "colony", colony.ID(), "index", i, "kind", order.Kind(), "id", order.ID())
			l.metrics.WorkOrderDropped(order.Kind(), DropDuplicateID)
			report.Dropped = append(report.Dropped, DroppedRecord{Index: i, Kind: order.Kind(), Reason: DropDuplicateID, Err: err})
			continue
		}
		if released {
			l.logger.Info("released stale claim", "colony", colony.ID(), "kind", order.Kind(), "id", order.ID())
			report.Released++
		}
		l.metrics.WorkOrderLoaded(order.Kind())
		report.Loaded++
	}
	return report
}

func (l orderLoader) drop(colonyID string, index int, err error) DroppedRecord {
	var unknown domain.UnknownKindError
	if errors.As(err, &unknown) {
		l.logger.Warn("unknown work order type", "colony", colonyID, "index", index, "kind", unknown.Kind)
		l.metrics.WorkOrderDropped(unknown.Kind, DropUnknownKind)
		return DroppedRecord{Index: index, Kind: unknown.Kind, Reason: DropUnknownKind, Err: err}
	}
	var corrupt domain.CorruptRecordError
	if errors.As(err, &corrupt) {
		l.logger.Error("corrupt work order state, discarding", "colony", colonyID, "index", index,
			"kind", corrupt.Kind, "variant", corrupt.Variant, "error", corrupt.Err)
		l.metrics.WorkOrderDropped(corrupt.Kind, DropCorrupt)
		return DroppedRecord{Index: index, Kind: corrupt.Kind, Reason: DropCorrupt, Err: err}
	}
	l.logger.Error("work order decode failed", "colony", colonyID, "index", index, "error", err)
	l.metrics.WorkOrderDropped("", DropCorrupt)
	return DroppedRecord{Index: index, Reason: DropCorrupt, Err: err}
}

// CheckColony decodes a colony's saved records against the registry without
// opening the colony or changing the store. Claims are checked against
// citizens the same way OpenColony binds them. Outcomes appear only in the
// returned report; the load metrics and log stay untouched.
func (s *Service) CheckColony(ctx context.Context, id string, citizens ...*Citizen) (LoadReport, error) {
	var report LoadReport
	err := s.run(ctx, "check_colony", func() error {
		if err := checkColonyID(id); err != nil {
			return err
		}
		s.registry.Seal()
		records, err := s.store.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("load colony %s: %w", id, err)
		}
		scratch := NewColony(id)
		for _, citizen := range citizens {
			if err := scratch.AddWorker(citizen.clone()); err != nil {
				return err
			}
		}
		report = s.dryRunLoader().loadInto(scratch, records)
		return nil
	})
	return report, err
}
