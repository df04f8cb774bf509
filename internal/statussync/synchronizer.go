// Package statussync keeps order status consistent in three places at once:
// the order record, the order_sync projection, and the vendor_balance ledger,
// while propagating status changes down to sub-orders and aggregating child
// completion back up to the root.
//
// All status writes must go through Synchronizer.UpdateStatus; writing the
// order record directly lets the three copies diverge.
package statussync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/marketplace-orders/internal/order"
)

// balanceTrnType is the ledger transaction type for order status rows.
const balanceTrnType = "order"

// completionNote is attached to the root when the last child completes.
const completionNote = "Mark parent order completed when all child orders are completed."

// Source identifies the channel a status change came through. Only admin
// edits of an unsplit root re-trigger the split.
type Source string

const (
	SourceHost  Source = "host"
	SourceAdmin Source = "admin"
)

// Synchronizer is the bidirectional status state machine.
type Synchronizer struct {
	orders   order.Store
	syncs    SyncStore
	balances BalanceStore
	splitter Splitter

	// inflight holds order ids whose split is currently running, so the
	// split's own status writes cannot re-enter the split path. The
	// request-scoped replacement for detaching and reattaching a handler.
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewSynchronizer(orders order.Store, syncs SyncStore, balances BalanceStore, splitter Splitter) *Synchronizer {
	return &Synchronizer{
		orders:   orders,
		syncs:    syncs,
		balances: balances,
		splitter: splitter,
		inflight: make(map[string]struct{}),
	}
}

// UpdateStatus transitions one order to newStatus and runs both propagation
// rules. It is the single status write path.
//
// A transition to the order's current status is a no-op: no save, no note,
// no propagation. That short-circuit is what terminates the propagation
// cycle (root pushes to children, each child re-checks siblings, the parent
// would otherwise be completed again, and so on).
func (s *Synchronizer) UpdateStatus(ctx context.Context, orderID string, newStatus order.Status, note string, src Source) (err error) {
	ctx, span := otel.Tracer("statussync").Start(ctx, "order.status.update",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("order.status", string(order.Normalize(newStatus))),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}

	if order.Is(o.Status, newStatus) {
		return nil
	}

	normalized := order.Normalize(newStatus)
	o.Status = normalized
	if note != "" {
		o.AddNote(note)
	}
	o.UpdatedAt = time.Now().UTC()
	if err := s.orders.Save(ctx, o); err != nil {
		return fmt.Errorf("save order %s: %w", orderID, err)
	}

	slog.InfoContext(ctx, "order status changed",
		"order_id", o.ID, "status", string(normalized), "source", string(src))

	if err := s.propagateDown(ctx, o, normalized, src); err != nil {
		return err
	}
	return s.aggregateUp(ctx, o)
}

// propagateDown is the parent-to-children rule. It runs for every order: the
// projection and ledger rows track all orders, only the split re-run and the
// child push are root-specific.
func (s *Synchronizer) propagateDown(ctx context.Context, o *order.Order, status order.Status, src Source) error {
	// An unsplit root edited through the admin path is split first, under
	// the reentrancy guard.
	if o.IsRoot() && !o.Meta.HasSubOrder && src == SourceAdmin && s.splitter != nil {
		if s.begin(o.ID) {
			err := s.splitter.Split(ctx, o.ID)
			s.end(o.ID)
			if err != nil {
				return fmt.Errorf("re-split order %s: %w", o.ID, err)
			}
		}
	}

	if err := s.syncs.UpsertStatus(ctx, o.ID, status); err != nil {
		return fmt.Errorf("upsert sync row for %s: %w", o.ID, err)
	}

	children, err := s.orders.Children(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("list children of %s: %w", o.ID, err)
	}
	for _, child := range children {
		if err := s.UpdateStatus(ctx, child.ID, status, "", src); err != nil {
			return err
		}
	}

	if err := s.balances.UpdateStatus(ctx, o.ID, balanceTrnType, status); err != nil {
		return fmt.Errorf("update balance row for %s: %w", o.ID, err)
	}
	return nil
}

// aggregateUp is the children-to-parent rule: when the last sibling reaches
// completed, the parent completes too. Sibling statuses are always read
// fresh, so the rule is idempotent and insensitive to delivery order.
func (s *Synchronizer) aggregateUp(ctx context.Context, o *order.Order) error {
	if o.IsRoot() {
		return nil
	}

	siblings, err := s.orders.Children(ctx, o.ParentID)
	if err != nil {
		return fmt.Errorf("list siblings of %s: %w", o.ID, err)
	}

	for _, sib := range siblings {
		if !isTerminal(sib.Status) {
			return nil
		}
	}

	return s.UpdateStatus(ctx, o.ParentID, order.StatusCompleted, completionNote, SourceHost)
}

// isTerminal reports whether a child status counts toward "all children
// done". Only completed counts; refunded or cancelled children keep the
// parent open.
func isTerminal(s order.Status) bool {
	return order.Is(s, order.StatusCompleted)
}

func (s *Synchronizer) begin(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.inflight[orderID]; running {
		return false
	}
	s.inflight[orderID] = struct{}{}
	return true
}

func (s *Synchronizer) end(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, orderID)
}
