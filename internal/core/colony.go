package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"colonywork/pkg/domain"
)

var (
	// ErrOrderNotFound is returned when no order with the given id exists.
	ErrOrderNotFound = errors.New("work order not found")
	// ErrWorkerNotFound is returned when no citizen with the given id exists.
	ErrWorkerNotFound = errors.New("worker not found")
	// ErrNotClaimed is returned when completing an order nobody holds.
	ErrNotClaimed = errors.New("work order not claimed")
	// ErrWorkerBusy is returned when claiming for a citizen that is not idle.
	ErrWorkerBusy = errors.New("worker not idle")
	// ErrInvalidOrder is returned when an order breaks its variant constraints.
	ErrInvalidOrder = errors.New("invalid work order")
	// ErrDuplicateOrder is returned when an order id is already in the colony.
	ErrDuplicateOrder = errors.New("duplicate work order")
)

var _ domain.Colony = (*Colony)(nil)

// Claim reports a worker taking an order during a tick.
type Claim struct {
	ColonyID string
	OrderID  uuid.UUID
	WorkerID uuid.UUID
	Kind     domain.Kind
}

// Colony owns an ordered work order collection and the citizen roster that
// claims from it. It is not safe for concurrent use; a single tick goroutine
// drives it.
type Colony struct {
	id       string
	citizens []*Citizen
	orders   []domain.WorkOrder
}

// NewColony returns an empty colony.
func NewColony(id string) *Colony {
	return &Colony{id: id}
}

// ID returns the colony identifier.
func (c *Colony) ID() string { return c.id }

// Workers implements domain.Colony in roster order.
func (c *Colony) Workers() []domain.Worker {
	out := make([]domain.Worker, len(c.citizens))
	for i, citizen := range c.citizens {
		out[i] = citizen
	}
	return out
}

// Citizens returns the roster.
func (c *Colony) Citizens() []*Citizen {
	out := make([]*Citizen, len(c.citizens))
	copy(out, c.citizens)
	return out
}

// Citizen looks up a roster entry.
func (c *Colony) Citizen(id uuid.UUID) (*Citizen, bool) {
	for _, citizen := range c.citizens {
		if citizen.id == id {
			return citizen, true
		}
	}
	return nil, false
}

// AddWorker appends a citizen to the roster.
func (c *Colony) AddWorker(citizen *Citizen) error {
	if citizen == nil {
		return fmt.Errorf("citizen cannot be nil")
	}
	if _, exists := c.Citizen(citizen.id); exists {
		return fmt.Errorf("citizen %s already in colony %s", citizen.id, c.id)
	}
	c.citizens = append(c.citizens, citizen)
	return nil
}

// RemoveWorker drops a citizen and unclaims every order it held.
func (c *Colony) RemoveWorker(id uuid.UUID) error {
	idx := -1
	for i, citizen := range c.citizens {
		if citizen.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrWorkerNotFound, id)
	}
	for _, order := range c.orders {
		if claimed, ok := order.ClaimedBy(); ok && claimed == id {
			order.Unclaim()
		}
	}
	c.citizens = append(c.citizens[:idx], c.citizens[idx+1:]...)
	return nil
}

// AddOrder appends order to the collection. Orders failing domain.Validate
// are rejected so nothing is saved that a later load would discard. A claimed
// order is bound to its worker when that worker is present and free;
// otherwise the claim is released. The boolean reports such a release.
func (c *Colony) AddOrder(order domain.WorkOrder) (bool, error) {
	if order == nil {
		return false, fmt.Errorf("work order cannot be nil")
	}
	if err := domain.Validate(order); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}
	if _, _, exists := c.find(order.ID()); exists {
		return false, fmt.Errorf("%w: %s already in colony %s", ErrDuplicateOrder, order.ID(), c.id)
	}
	released := !c.bind(order)
	c.orders = append(c.orders, order)
	return released, nil
}

// bind records a loaded claim on the claiming citizen. It returns false and
// unclaims the order when the claim cannot be honoured.
func (c *Colony) bind(order domain.WorkOrder) bool {
	workerID, ok := order.ClaimedBy()
	if !ok {
		return true
	}
	citizen, found := c.Citizen(workerID)
	if !found || citizen.task.Valid {
		order.Unclaim()
		return false
	}
	citizen.task = uuid.NullUUID{UUID: order.ID(), Valid: true}
	return true
}

func (c *Colony) release(order domain.WorkOrder) {
	workerID, ok := order.ClaimedBy()
	if !ok {
		return
	}
	if citizen, found := c.Citizen(workerID); found && citizen.task.UUID == order.ID() {
		citizen.task = uuid.NullUUID{}
	}
}

func (c *Colony) find(id uuid.UUID) (int, domain.WorkOrder, bool) {
	for i, order := range c.orders {
		if order.ID() == id {
			return i, order, true
		}
	}
	return -1, nil, false
}

// Order looks up a work order by id.
func (c *Colony) Order(id uuid.UUID) (domain.WorkOrder, bool) {
	_, order, ok := c.find(id)
	return order, ok
}

// Orders returns the collection in insertion order.
func (c *Colony) Orders() []domain.WorkOrder {
	out := make([]domain.WorkOrder, len(c.orders))
	copy(out, c.orders)
	return out
}

// Unclaimed returns the orders no worker holds, in insertion order.
func (c *Colony) Unclaimed() []domain.WorkOrder {
	var out []domain.WorkOrder
	for _, order := range c.orders {
		if !order.IsClaimed() {
			out = append(out, order)
		}
	}
	return out
}

// OrderClaimedBy returns the order held by worker.
func (c *Colony) OrderClaimedBy(workerID uuid.UUID) (domain.WorkOrder, bool) {
	for _, order := range c.orders {
		if claimed, ok := order.ClaimedBy(); ok && claimed == workerID {
			return order, true
		}
	}
	return nil, false
}

// ClaimOrder assigns order to an idle worker, replacing any previous claim.
func (c *Colony) ClaimOrder(orderID, workerID uuid.UUID) error {
	_, order, ok := c.find(orderID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	citizen, found := c.Citizen(workerID)
	if !found {
		return fmt.Errorf("%w: %s", ErrWorkerNotFound, workerID)
	}
	if order.IsClaimedBy(citizen) {
		return nil
	}
	if !citizen.Idle() {
		return fmt.Errorf("%w: %s", ErrWorkerBusy, workerID)
	}
	c.release(order)
	order.Claim(citizen)
	citizen.task = uuid.NullUUID{UUID: order.ID(), Valid: true}
	return nil
}

// UnclaimOrder clears the claim on order and frees its worker.
func (c *Colony) UnclaimOrder(orderID uuid.UUID) error {
	_, order, ok := c.find(orderID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	c.release(order)
	order.Unclaim()
	return nil
}

// CompleteOrder removes a claimed order and frees its worker.
func (c *Colony) CompleteOrder(orderID uuid.UUID) (domain.WorkOrder, error) {
	idx, order, ok := c.find(orderID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if !order.IsClaimed() {
		return nil, fmt.Errorf("%w: %s", ErrNotClaimed, orderID)
	}
	c.release(order)
	c.orders = append(c.orders[:idx], c.orders[idx+1:]...)
	return order, nil
}

// CancelOrder removes an order in any state.
func (c *Colony) CancelOrder(orderID uuid.UUID) (domain.WorkOrder, error) {
	idx, order, ok := c.find(orderID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	c.release(order)
	c.orders = append(c.orders[:idx], c.orders[idx+1:]...)
	return order, nil
}

// Tick gives every unclaimed order, in collection order, one chance to claim
// an idle worker. A worker claimed by one order is no longer idle, so later
// orders in the same tick cannot take it.
func (c *Colony) Tick() []Claim {
	var claims []Claim
	for _, order := range c.orders {
		if order.IsClaimed() {
			continue
		}
		order.AttemptToFulfill(c)
		workerID, ok := order.ClaimedBy()
		if !ok {
			continue
		}
		citizen, found := c.Citizen(workerID)
		if !found || !citizen.Idle() {
			order.Unclaim()
			continue
		}
		citizen.task = uuid.NullUUID{UUID: order.ID(), Valid: true}
		claims = append(claims, Claim{ColonyID: c.id, OrderID: order.ID(), WorkerID: workerID, Kind: order.Kind()})
	}
	return claims
}

// Records encodes the collection in order.
func (c *Colony) Records(reg *domain.Registry) []domain.Record {
	out := make([]domain.Record, 0, len(c.orders))
	for _, order := range c.orders {
		out = append(out, domain.Encode(reg, order))
	}
	return out
}

// clearOrders empties the collection and frees every citizen's task.
func (c *Colony) clearOrders() {
	for _, citizen := range c.citizens {
		citizen.task = uuid.NullUUID{}
	}
	c.orders = nil
}
