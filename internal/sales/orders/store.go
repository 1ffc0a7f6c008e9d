package orders

import (
	"context"
	"fmt"

	"github.com/fabrica-erp/panel/internal/gateway"
)

// Store persists orders. Creating an order posts the header and then one
// request per line; the sequence is not atomic.
type Store struct {
	orders *gateway.Resource[Order]
	lines  *gateway.Resource[Line]
}

// NewStore binds the order and line collections to gw.
func NewStore(gw *gateway.Gateway) *Store {
	return &Store{
		orders: gateway.NewResource[Order](gw, gateway.Pedidos),
		lines:  gateway.NewResource[Line](gw, gateway.LineasPedido),
	}
}

func (s *Store) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

func (s *Store) Get(ctx context.Context, id int64) (Order, error) {
	return s.orders.Get(ctx, id)
}

// Create posts the header, then every line with the new order id. A failed
// line stops the sequence; the order and earlier lines stay persisted.
func (s *Store) Create(ctx context.Context, payload any) (Order, error) {
	sub, err := submission(payload)
	if err != nil {
		return Order{}, err
	}
	created, err := s.orders.Create(ctx, sub.Order)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	for i, line := range sub.Lines {
		line.Pedido = created.ID
		if _, err := s.lines.Create(ctx, line); err != nil {
			return created, fmt.Errorf("create line %d of order %d: %w", i+1, created.ID, err)
		}
	}
	return created, nil
}

// Update sends the header only, with the recomputed total.
func (s *Store) Update(ctx context.Context, id int64, payload any) (Order, error) {
	sub, err := submission(payload)
	if err != nil {
		return Order{}, err
	}
	return s.orders.Update(ctx, id, sub.Order)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}

// ChangeStatus fetches the order and writes it back with a new status.
func (s *Store) ChangeStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown order status %q", status)
	}
	current, err := s.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	header := HeaderOf(current)
	header.Estado = status
	_, err = s.orders.Update(ctx, id, header)
	return err
}

// ByStatus lists the orders in one status through por_estado.
func (s *Store) ByStatus(ctx context.Context, status Status) ([]Order, error) {
	return s.orders.Action(ctx, "por_estado", map[string]string{"estado": string(status)})
}

func submission(payload any) (Submission, error) {
	switch p := payload.(type) {
	case Submission:
		return p, nil
	case *Submission:
		return *p, nil
	}
	return Submission{}, fmt.Errorf("orders: unexpected payload %T", payload)
}
